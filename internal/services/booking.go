package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
)

type BookingService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewBookingService(db *gorm.DB, notifications *NotificationService) *BookingService {
	return &BookingService{db: db, notifications: notifications}
}

const msgDatesTaken = "Car is already booked for the selected dates"

type CreateBookingInput struct {
	CarID          uint
	StartDate      time.Time
	EndDate        time.Time
	PickupLocation string
	Notes          string
}

func (s *BookingService) Create(ctx context.Context, actor policy.Actor, in CreateBookingInput) (*models.Booking, error) {
	if in.CarID == 0 {
		return nil, apperrors.Validation("Car ID is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, apperrors.Validation("Start date and end date are required")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, apperrors.Validation("End date must be after start date")
	}

	var car models.Car
	if err := s.db.WithContext(ctx).First(&car, in.CarID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Car not found")
	}
	if !car.Bookable() {
		return nil, apperrors.Validation("Car is not available for booking")
	}
	if car.OwnerID == actor.ID {
		return nil, apperrors.Validation("You cannot book your own car")
	}

	booking := models.Booking{
		CustomerID:     actor.ID,
		CarID:          car.ID,
		OwnerID:        car.OwnerID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		TotalPrice:     models.RentalPrice(in.StartDate, in.EndDate, car.PricePerDay),
		Status:         models.BookingPending,
		PickupLocation: in.PickupLocation,
		Notes:          in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNoConfirmedOverlap(tx, car.ID, 0, in.StartDate, in.EndDate); err != nil {
			return err
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, wrap(err)
	}

	booking.Car = &car

	s.notifications.NotifyBestEffort(ctx, &models.Notification{
		UserID:    car.OwnerID,
		Type:      models.NotificationBookingCreated,
		Title:     "New booking request",
		Message:   fmt.Sprintf("Your %s %s has been requested from %s to %s.", car.Brand, car.Model, day(in.StartDate), day(in.EndDate)),
		BookingID: &booking.ID,
		CarID:     &car.ID,
	})

	return &booking, nil
}

// Get loads a booking with its car and customer, checking the actor may see it.
func (s *BookingService) Get(ctx context.Context, actor policy.Actor, id uint) (*models.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, booking, policy.ViewBooking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) load(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Car").
		Preload("Customer").
		First(&booking, id).Error
	if err != nil {
		return nil, apperrors.FromLookup(err, "Booking not found")
	}
	return &booking, nil
}

func (s *BookingService) Approve(ctx context.Context, actor policy.Actor, id uint) (*models.Booking, error) {
	booking, err := s.transition(ctx, actor, id, statusChange{
		action:  policy.ApproveBooking,
		from:    []models.BookingStatus{models.BookingPending},
		to:      models.BookingConfirmed,
		invalid: "Only pending bookings can be approved",
		guard:   guardConfirmedOverlap,
	})
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, booking, models.NotificationBookingApproved, "Booking approved",
		fmt.Sprintf("Your booking for %s has been approved.", carName(booking)))
	return booking, nil
}

func (s *BookingService) Reject(ctx context.Context, actor policy.Actor, id uint) (*models.Booking, error) {
	booking, err := s.transition(ctx, actor, id, statusChange{
		action:  policy.RejectBooking,
		from:    []models.BookingStatus{models.BookingPending, models.BookingConfirmed},
		to:      models.BookingRejected,
		invalid: "Only pending or confirmed bookings can be rejected",
	})
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, booking, models.NotificationBookingRejected, "Booking rejected",
		fmt.Sprintf("Your booking for %s has been rejected.", carName(booking)))
	return booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, actor policy.Actor, id uint) (*models.Booking, error) {
	now := time.Now()
	booking, err := s.transition(ctx, actor, id, statusChange{
		action:  policy.CancelBooking,
		from:    []models.BookingStatus{models.BookingPending, models.BookingConfirmed},
		to:      models.BookingCancelled,
		invalid: "Booking can no longer be cancelled",
		extra:   map[string]interface{}{"cancelled_by": actor.ID, "cancelled_at": now},
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("The booking for %s from %s to %s has been cancelled.",
		carName(booking), day(booking.StartDate), day(booking.EndDate))
	for _, userID := range []uint{booking.CustomerID, booking.OwnerID} {
		if userID == actor.ID {
			continue
		}
		s.notifications.NotifyBestEffort(ctx, &models.Notification{
			UserID:    userID,
			Type:      models.NotificationBookingCancelled,
			Title:     "Booking cancelled",
			Message:   message,
			BookingID: &booking.ID,
			CarID:     &booking.CarID,
		})
	}

	return booking, nil
}

// Confirm lets the customer confirm their own booking.
func (s *BookingService) Confirm(ctx context.Context, actor policy.Actor, id uint) (*models.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, booking, policy.ConfirmBooking); err != nil {
		return nil, err
	}

	// NOTE: stored statuses are capitalized, so this only matches legacy lowercase rows.
	// Pending bookings are confirmed through Approve.
	const legacyPending models.BookingStatus = "pending"
	if booking.Status != legacyPending {
		return nil, apperrors.Validation("Only pending bookings can be confirmed")
	}

	return s.transition(ctx, actor, id, statusChange{
		action:  policy.ConfirmBooking,
		from:    []models.BookingStatus{legacyPending},
		to:      models.BookingConfirmed,
		invalid: "Only pending bookings can be confirmed",
		guard:   guardConfirmedOverlap,
	})
}

func (s *BookingService) Complete(ctx context.Context, actor policy.Actor, id uint) (*models.Booking, error) {
	booking, err := s.transition(ctx, actor, id, statusChange{
		action:  policy.CompleteBooking,
		from:    []models.BookingStatus{models.BookingConfirmed},
		to:      models.BookingCompleted,
		invalid: "Only confirmed bookings can be completed",
	})
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, booking, models.NotificationBookingCompleted, "Booking completed",
		fmt.Sprintf("Your trip with %s is complete. You can now leave a review.", carName(booking)))
	return booking, nil
}

// Delete permanently removes a finished booking and its extension requests. Payments
// and reviews are kept, detached from the booking.
func (s *BookingService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	booking, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, booking, policy.DeleteBooking); err != nil {
		return err
	}
	if !booking.Status.Terminal() {
		return apperrors.Validation("Only completed, cancelled or rejected bookings can be deleted")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.ExtensionRequest{}).Error; err != nil {
			return err
		}
		for _, kept := range []interface{}{&models.Payment{}, &models.Review{}} {
			if err := tx.Model(kept).Where("booking_id = ?", booking.ID).Update("booking_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Booking{}, booking.ID).Error
	})
	return wrap(err)
}

type BookingFilter struct {
	Status string
}

func (f BookingFilter) apply(query *gorm.DB) (*gorm.DB, error) {
	if f.Status == "" {
		return query, nil
	}
	status := models.BookingStatus(f.Status)
	if !status.Valid() {
		return nil, apperrors.Validation("Invalid booking status")
	}
	return query.Where("status = ?", status), nil
}

func (s *BookingService) ListForCustomer(ctx context.Context, customerID uint, filter BookingFilter) ([]models.Booking, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("customer_id = ?", customerID), filter)
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID uint, filter BookingFilter) ([]models.Booking, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Preload("Customer"), filter)
}

func (s *BookingService) ListAll(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	return s.list(ctx, s.db.WithContext(ctx).Preload("Customer"), filter)
}

func (s *BookingService) list(ctx context.Context, query *gorm.DB, filter BookingFilter) ([]models.Booking, error) {
	query, err := filter.apply(query)
	if err != nil {
		return nil, err
	}

	var bookings []models.Booking
	if err := query.Preload("Car").Order("created_at DESC").Order("id DESC").Find(&bookings).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return bookings, nil
}

type statusChange struct {
	action  policy.Action
	from    []models.BookingStatus
	to      models.BookingStatus
	invalid string
	extra   map[string]interface{}
	// guard runs in the update transaction before the status changes.
	guard func(tx *gorm.DB, booking *models.Booking) error
}

// ensureNoConfirmedOverlap fails with a Conflict when another Confirmed booking of the
// car intersects [start, end). Back-to-back ranges do not intersect. The car row is
// locked so concurrent checks for the same car run one at a time.
func ensureNoConfirmedOverlap(tx *gorm.DB, carID, excludeBookingID uint, start, end time.Time) error {
	var car models.Car
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&car, carID).Error; err != nil {
		return apperrors.FromLookup(err, "Car not found")
	}

	var overlapping int64
	err := tx.Model(&models.Booking{}).
		Where("car_id = ? AND status = ? AND start_date < ? AND end_date > ? AND id <> ?",
			carID, models.BookingConfirmed, end, start, excludeBookingID).
		Count(&overlapping).Error
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return apperrors.Conflict(msgDatesTaken)
	}
	return nil
}

func guardConfirmedOverlap(tx *gorm.DB, booking *models.Booking) error {
	return ensureNoConfirmedOverlap(tx, booking.CarID, booking.ID, booking.StartDate, booking.EndDate)
}

// transition moves a booking between statuses with a conditional update so a concurrent
// change is reported as a conflict instead of being overwritten.
func (s *BookingService) transition(ctx context.Context, actor policy.Actor, id uint, change statusChange) (*models.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, booking, change.action); err != nil {
		return nil, err
	}
	if !hasStatus(change.from, booking.Status) {
		return nil, apperrors.Validation(change.invalid)
	}

	updates := map[string]interface{}{"status": change.to}
	for k, v := range change.extra {
		updates[k] = v
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if change.guard != nil {
			if err := change.guard(tx, booking); err != nil {
				return err
			}
		}

		result := tx.Model(&models.Booking{}).
			Where("id = ? AND status IN ?", booking.ID, change.from).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict("Booking was modified by another request")
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}

	return s.load(ctx, id)
}

func (s *BookingService) notifyCustomer(ctx context.Context, booking *models.Booking, kind models.NotificationType, title, message string) {
	s.notifications.NotifyBestEffort(ctx, &models.Notification{
		UserID:    booking.CustomerID,
		Type:      kind,
		Title:     title,
		Message:   message,
		BookingID: &booking.ID,
		CarID:     &booking.CarID,
	})
}

func hasStatus(statuses []models.BookingStatus, status models.BookingStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
