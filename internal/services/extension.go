package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
)

// ExtensionService runs the request/approve/reject handshake that lengthens a
// confirmed booking.
type ExtensionService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewExtensionService(db *gorm.DB, notifications *NotificationService) *ExtensionService {
	return &ExtensionService{db: db, notifications: notifications}
}

const (
	msgAlreadyProcessed = "Extension request has already been processed"
	msgPaidBooking      = "Paid bookings cannot be extended"
)

type ExtensionDecision struct {
	Extension *models.ExtensionRequest `json:"extension"`
	Booking   *models.Booking          `json:"booking"`
}

// Request records an extension for the owner to answer. The booking itself is not
// changed until the owner approves.
func (s *ExtensionService) Request(ctx context.Context, actor policy.Actor, bookingID uint, extraDays int) (*models.ExtensionRequest, *models.Notification, error) {
	if extraDays < models.MinExtensionDays || extraDays > models.MaxExtensionDays {
		return nil, nil, apperrors.Validation(fmt.Sprintf("Extra days must be between %d and %d", models.MinExtensionDays, models.MaxExtensionDays))
	}

	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Car").First(&booking, bookingID).Error; err != nil {
		return nil, nil, apperrors.FromLookup(err, "Booking not found")
	}
	if err := policy.Authorize(actor, &booking, policy.RequestExtension); err != nil {
		return nil, nil, err
	}
	if booking.Status != models.BookingConfirmed {
		return nil, nil, apperrors.Validation("Only confirmed bookings can be extended")
	}
	if err := ensureUnpaid(s.db.WithContext(ctx), booking.ID); err != nil {
		return nil, nil, err
	}

	pricePerDay := 0.0
	if booking.Car != nil {
		pricePerDay = booking.Car.PricePerDay
	}

	ext := models.ExtensionRequest{
		BookingID:       booking.ID,
		CustomerID:      booking.CustomerID,
		OwnerID:         booking.OwnerID,
		CarID:           booking.CarID,
		ExtraDays:       extraDays,
		PreviousEndDate: booking.EndDate,
		NewEndDate:      booking.EndDate.AddDate(0, 0, extraDays),
		AdditionalPrice: float64(extraDays) * pricePerDay,
		Status:          models.ExtensionRequested,
	}

	var notice models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		err := tx.Model(&models.ExtensionRequest{}).
			Where("booking_id = ? AND status = ?", booking.ID, models.ExtensionRequested).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return apperrors.Conflict("An extension request is already pending for this booking")
		}

		if err := tx.Create(&ext).Error; err != nil {
			return err
		}

		status := models.ExtensionRequested.NotificationStatus()
		notice = models.Notification{
			UserID:             booking.OwnerID,
			Type:               models.NotificationExtensionRequested,
			Title:              "Booking extension requested",
			Message:            fmt.Sprintf("The customer wants to extend the booking for %s by %d day(s) until %s.", carName(&booking), extraDays, day(ext.NewEndDate)),
			BookingID:          &booking.ID,
			CarID:              &booking.CarID,
			ExtensionRequestID: &ext.ID,
			ExtraDays:          &ext.ExtraDays,
			NewEndDate:         &ext.NewEndDate,
			ExtensionStatus:    &status,
		}
		return s.notifications.Insert(tx, &notice)
	})
	if err != nil {
		return nil, nil, wrap(err)
	}

	s.notifications.Dispatch(ctx, &notice)

	return &ext, &notice, nil
}

func (s *ExtensionService) Approve(ctx context.Context, actor policy.Actor, extensionID uint) (*ExtensionDecision, error) {
	return s.respond(ctx, actor, extensionID, models.ExtensionApproved)
}

func (s *ExtensionService) Reject(ctx context.Context, actor policy.Actor, extensionID uint) (*ExtensionDecision, error) {
	return s.respond(ctx, actor, extensionID, models.ExtensionRejected)
}

// ApproveByNotification answers the extension referenced by the owner's notification.
func (s *ExtensionService) ApproveByNotification(ctx context.Context, actor policy.Actor, notificationID uint) (*ExtensionDecision, error) {
	extensionID, err := s.fromNotification(ctx, actor, notificationID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, actor, extensionID, models.ExtensionApproved)
}

func (s *ExtensionService) RejectByNotification(ctx context.Context, actor policy.Actor, notificationID uint) (*ExtensionDecision, error) {
	extensionID, err := s.fromNotification(ctx, actor, notificationID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, actor, extensionID, models.ExtensionRejected)
}

func (s *ExtensionService) fromNotification(ctx context.Context, actor policy.Actor, notificationID uint) (uint, error) {
	var notice models.Notification
	if err := s.db.WithContext(ctx).First(&notice, notificationID).Error; err != nil {
		return 0, apperrors.FromLookup(err, "Notification not found")
	}
	if notice.Type != models.NotificationExtensionRequested || notice.ExtensionRequestID == nil {
		return 0, apperrors.Validation("Notification is not an extension request")
	}
	if err := policy.Authorize(actor, &notice, policy.RespondViaNotice); err != nil {
		return 0, err
	}
	if notice.ExtensionStatus != nil && *notice.ExtensionStatus != models.ExtensionRequested.NotificationStatus() {
		return 0, apperrors.Conflict(msgAlreadyProcessed)
	}
	return *notice.ExtensionRequestID, nil
}

// respond closes an extension request. The Requested -> decision step is a conditional
// update, so of two concurrent responses only one takes effect and the other gets a
// Conflict without touching the booking.
func (s *ExtensionService) respond(ctx context.Context, actor policy.Actor, extensionID uint, decision models.ExtensionStatus) (*ExtensionDecision, error) {
	var ext models.ExtensionRequest
	if err := s.db.WithContext(ctx).First(&ext, extensionID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Extension request not found")
	}
	if err := policy.Authorize(actor, &ext, policy.RespondExtension); err != nil {
		return nil, err
	}
	if ext.Status != models.ExtensionRequested {
		return nil, apperrors.Conflict(msgAlreadyProcessed)
	}

	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       decision,
			"responded_by": actor.ID,
			"responded_at": now,
		}

		var increment float64
		if decision == models.ExtensionApproved {
			if err := ensureUnpaid(tx, ext.BookingID); err != nil {
				return err
			}
			if err := ensureNoConfirmedOverlap(tx, ext.CarID, ext.BookingID, ext.PreviousEndDate, ext.NewEndDate); err != nil {
				return err
			}

			var car models.Car
			if err := tx.Select("id", "price_per_day").First(&car, ext.CarID).Error; err != nil {
				return apperrors.FromLookup(err, "Car not found")
			}
			increment = float64(ext.ExtraDays) * car.PricePerDay
			updates["additional_price"] = increment
		}

		result := tx.Model(&models.ExtensionRequest{}).
			Where("id = ? AND status = ?", ext.ID, models.ExtensionRequested).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict(msgAlreadyProcessed)
		}

		if decision == models.ExtensionApproved {
			result := tx.Model(&models.Booking{}).
				Where("id = ? AND status = ?", ext.BookingID, models.BookingConfirmed).
				Updates(map[string]interface{}{
					"end_date":    ext.NewEndDate,
					"total_price": gorm.Expr("total_price + ?", increment),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return apperrors.Validation("Only confirmed bookings can be extended")
			}
		}

		return tx.Model(&models.Notification{}).
			Where("extension_request_id = ? AND type = ?", ext.ID, models.NotificationExtensionRequested).
			Updates(map[string]interface{}{
				"extension_status": decision.NotificationStatus(),
				"is_read":          true,
				"read_at":          now,
			}).Error
	})
	if err != nil {
		return nil, wrap(err)
	}

	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Car").First(&booking, ext.BookingID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Booking not found")
	}
	if err := s.db.WithContext(ctx).First(&ext, ext.ID).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	s.notifyCustomer(ctx, &ext, &booking, decision)

	return &ExtensionDecision{Extension: &ext, Booking: &booking}, nil
}

// notifyCustomer runs after commit. A failure here never undoes the decision.
func (s *ExtensionService) notifyCustomer(ctx context.Context, ext *models.ExtensionRequest, booking *models.Booking, decision models.ExtensionStatus) {
	n := &models.Notification{
		UserID:             ext.CustomerID,
		BookingID:          &ext.BookingID,
		CarID:              &ext.CarID,
		ExtensionRequestID: &ext.ID,
	}

	switch decision {
	case models.ExtensionApproved:
		n.Type = models.NotificationExtensionApproved
		n.Title = "Booking extension approved"
		n.Message = fmt.Sprintf("Your booking for %s now ends on %s. New total: %.2f.", carName(booking), day(booking.EndDate), booking.TotalPrice)
	default:
		n.Type = models.NotificationExtensionRejected
		n.Title = "Booking extension rejected"
		n.Message = fmt.Sprintf("Your request to extend the booking for %s was declined.", carName(booking))
	}

	s.notifications.NotifyBestEffort(ctx, n)
}

func (s *ExtensionService) ListForBooking(ctx context.Context, actor policy.Actor, bookingID uint) ([]models.ExtensionRequest, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, bookingID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Booking not found")
	}
	if err := policy.Authorize(actor, &booking, policy.ViewExtensions); err != nil {
		return nil, err
	}

	var extensions []models.ExtensionRequest
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").Order("id DESC").
		Find(&extensions).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return extensions, nil
}

func (s *ExtensionService) ListPendingForOwner(ctx context.Context, ownerID uint) ([]models.ExtensionRequest, error) {
	var extensions []models.ExtensionRequest
	err := s.db.WithContext(ctx).
		Preload("Booking").
		Where("owner_id = ? AND status = ?", ownerID, models.ExtensionRequested).
		Order("created_at ASC").
		Find(&extensions).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return extensions, nil
}
