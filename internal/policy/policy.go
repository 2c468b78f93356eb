// Package policy decides whether an actor may perform an action on a resource.
package policy

import (
	"fmt"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
)

type Actor struct {
	ID   uint
	Role models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type Action string

const (
	ViewBooking      Action = "booking:view"
	ApproveBooking   Action = "booking:approve"
	RejectBooking    Action = "booking:reject"
	CancelBooking    Action = "booking:cancel"
	ConfirmBooking   Action = "booking:confirm"
	CompleteBooking  Action = "booking:complete"
	DeleteBooking    Action = "booking:delete"
	PayBooking       Action = "booking:pay"
	ReviewBooking    Action = "booking:review"
	ReportEmergency  Action = "booking:emergency"
	MessageBooking   Action = "booking:message"
	RequestExtension Action = "booking:extend"
	ViewExtensions   Action = "booking:extensions"

	RespondExtension Action = "extension:respond"

	ViewCar   Action = "car:view"
	ManageCar Action = "car:manage"

	ManageNotification Action = "notification:manage"
	RespondViaNotice   Action = "notification:respond"

	DeleteReview Action = "review:delete"

	UpdateEmergency Action = "emergency:update"
)

type rule func(actor Actor, resource any) bool

var rules = map[Action]rule{
	ViewBooking:      booking(func(a Actor, b *models.Booking) bool { return isCustomer(a, b) || isOwner(a, b) || a.IsAdmin() }),
	ApproveBooking:   booking(func(a Actor, b *models.Booking) bool { return isOwner(a, b) || a.IsAdmin() }),
	RejectBooking:    booking(func(a Actor, b *models.Booking) bool { return isOwner(a, b) || a.IsAdmin() }),
	CancelBooking:    booking(func(a Actor, b *models.Booking) bool { return isCustomer(a, b) || isOwner(a, b) || a.IsAdmin() }),
	ConfirmBooking:   booking(isCustomer),
	CompleteBooking:  booking(func(a Actor, b *models.Booking) bool { return isOwner(a, b) || a.IsAdmin() }),
	DeleteBooking:    booking(isCustomer),
	PayBooking:       booking(isCustomer),
	ReviewBooking:    booking(isCustomer),
	ReportEmergency:  booking(isCustomer),
	MessageBooking:   booking(func(a Actor, b *models.Booking) bool { return isCustomer(a, b) || isOwner(a, b) }),
	RequestExtension: booking(isCustomer),
	ViewExtensions:   booking(func(a Actor, b *models.Booking) bool { return isCustomer(a, b) || isOwner(a, b) || a.IsAdmin() }),

	RespondExtension: func(a Actor, resource any) bool {
		ext, ok := resource.(*models.ExtensionRequest)
		return ok && (ext.OwnerID == a.ID || a.IsAdmin())
	},

	ViewCar: func(a Actor, resource any) bool {
		car, ok := resource.(*models.Car)
		return ok && (car.Approved || car.OwnerID == a.ID || a.IsAdmin())
	},
	ManageCar: func(a Actor, resource any) bool {
		car, ok := resource.(*models.Car)
		return ok && car.OwnerID == a.ID
	},

	ManageNotification: func(a Actor, resource any) bool {
		n, ok := resource.(*models.Notification)
		return ok && n.UserID == a.ID
	},
	// Admins may answer an extension through any owner's notification.
	RespondViaNotice: func(a Actor, resource any) bool {
		n, ok := resource.(*models.Notification)
		return ok && (n.UserID == a.ID || a.IsAdmin())
	},

	DeleteReview: func(a Actor, resource any) bool {
		r, ok := resource.(*models.Review)
		return ok && (r.CustomerID == a.ID || a.IsAdmin())
	},

	UpdateEmergency: func(a Actor, resource any) bool {
		e, ok := resource.(*models.Emergency)
		return ok && (e.OwnerID == a.ID || a.IsAdmin())
	},
}

var messages = map[Action]string{
	ViewBooking:        "Not authorized to view this booking",
	ApproveBooking:     "Not authorized to approve this booking",
	RejectBooking:      "Not authorized to reject this booking",
	CancelBooking:      "Not authorized to cancel this booking",
	ConfirmBooking:     "Not authorized to confirm this booking",
	CompleteBooking:    "Not authorized to complete this booking",
	DeleteBooking:      "Not authorized to delete this booking",
	PayBooking:         "Not authorized to pay for this booking",
	ReviewBooking:      "Not authorized to review this booking",
	ReportEmergency:    "Not authorized to report an emergency for this booking",
	MessageBooking:     "Not authorized to message about this booking",
	RequestExtension:   "Not authorized to extend this booking",
	ViewExtensions:     "Not authorized to view extensions for this booking",
	RespondExtension:   "Not authorized to respond to this extension request",
	ViewCar:            "Not authorized to view this car",
	ManageCar:          "Not authorized to manage this car",
	ManageNotification: "Not authorized to access this notification",
	RespondViaNotice:   "Not authorized to respond to this extension request",
	DeleteReview:       "Not authorized to delete this review",
	UpdateEmergency:    "Not authorized to update this emergency",
}

// Authorize returns nil when allowed and an Unauthorized error otherwise.
// Unknown actions are always denied.
func Authorize(actor Actor, resource any, action Action) error {
	check, ok := rules[action]
	if !ok {
		return apperrors.Unauthorized(fmt.Sprintf("Unknown action %q", action))
	}

	if actor.ID == 0 || !actor.Role.Valid() || !check(actor, resource) {
		return apperrors.Unauthorized(messages[action])
	}

	return nil
}

func booking(fn func(Actor, *models.Booking) bool) rule {
	return func(a Actor, resource any) bool {
		b, ok := resource.(*models.Booking)
		return ok && fn(a, b)
	}
}

func isCustomer(a Actor, b *models.Booking) bool {
	return b.CustomerID == a.ID
}

func isOwner(a Actor, b *models.Booking) bool {
	return b.OwnerID == a.ID
}
