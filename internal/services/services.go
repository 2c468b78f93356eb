// Package services holds the marketplace business rules. Handlers call into it with an
// authenticated policy.Actor and map the returned apperrors to HTTP responses.
package services

import (
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/mq"
)

type Services struct {
	Users         *UserService
	Cars          *CarService
	Bookings      *BookingService
	Extensions    *ExtensionService
	Notifications *NotificationService
	Reviews       *ReviewService
	Favorites     *FavoriteService
	Messages      *MessageService
	Payments      *PaymentService
	Emergencies   *EmergencyService
	Dashboards    *DashboardService
}

func New(db *gorm.DB, hub Pusher, events mq.Publisher, alerter Alerter) *Services {
	notifications := NewNotificationService(db, hub, events)

	return &Services{
		Users:         NewUserService(db),
		Cars:          NewCarService(db, notifications),
		Bookings:      NewBookingService(db, notifications),
		Extensions:    NewExtensionService(db, notifications),
		Notifications: notifications,
		Reviews:       NewReviewService(db, notifications),
		Favorites:     NewFavoriteService(db),
		Messages:      NewMessageService(db, notifications),
		Payments:      NewPaymentService(db, notifications),
		Emergencies:   NewEmergencyService(db, notifications, alerter),
		Dashboards:    NewDashboardService(db),
	}
}
