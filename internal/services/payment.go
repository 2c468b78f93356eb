package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
)

const msgAlreadyPaid = "Booking has already been paid"

type PaymentService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewPaymentService(db *gorm.DB, notifications *NotificationService) *PaymentService {
	return &PaymentService{db: db, notifications: notifications}
}

func newTransactionRef() string {
	return "PAY-" + uuid.NewString()
}

// Pay records a payment of the booking's current total.
func (s *PaymentService) Pay(ctx context.Context, actor policy.Actor, bookingID uint, method models.PaymentMethod) (*models.Payment, error) {
	if !method.Valid() {
		return nil, apperrors.Validation("Invalid payment method")
	}

	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Car").First(&booking, bookingID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Booking not found")
	}
	if err := policy.Authorize(actor, &booking, policy.PayBooking); err != nil {
		return nil, err
	}
	if booking.Status != models.BookingConfirmed && booking.Status != models.BookingCompleted {
		return nil, apperrors.Validation("Only confirmed or completed bookings can be paid")
	}

	payment := models.Payment{
		BookingID:      &booking.ID,
		CustomerID:     booking.CustomerID,
		OwnerID:        booking.OwnerID,
		Amount:         booking.TotalPrice,
		Method:         method,
		Status:         models.PaymentCompleted,
		TransactionRef: newTransactionRef(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paid, err := bookingPaid(tx, booking.ID)
		if err != nil {
			return err
		}
		if paid {
			return apperrors.Conflict(msgAlreadyPaid)
		}

		var open int64
		err = tx.Model(&models.ExtensionRequest{}).
			Where("booking_id = ? AND status = ?", booking.ID, models.ExtensionRequested).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return apperrors.Conflict("Booking has a pending extension request")
		}

		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, wrapUnique(err, msgAlreadyPaid)
	}

	s.notifications.NotifyBestEffort(ctx, &models.Notification{
		UserID:    booking.OwnerID,
		Type:      models.NotificationPaymentReceived,
		Title:     "Payment received",
		Message:   fmt.Sprintf("Payment of %.2f received for %s (%s).", payment.Amount, carName(&booking), payment.TransactionRef),
		BookingID: &booking.ID,
		CarID:     &booking.CarID,
	})

	return &payment, nil
}

func bookingPaid(tx *gorm.DB, bookingID uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Payment{}).Where("booking_id = ?", bookingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ensureUnpaid rejects changes to the price of a booking that has been paid.
func ensureUnpaid(tx *gorm.DB, bookingID uint) error {
	paid, err := bookingPaid(tx, bookingID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if paid {
		return apperrors.Conflict(msgPaidBooking)
	}
	return nil
}

func (s *PaymentService) ListForCustomer(ctx context.Context, customerID uint) ([]models.Payment, error) {
	return s.list(s.db.WithContext(ctx).Where("customer_id = ?", customerID))
}

func (s *PaymentService) ListForOwner(ctx context.Context, ownerID uint) ([]models.Payment, error) {
	return s.list(s.db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

func (s *PaymentService) ListAll(ctx context.Context, method string) ([]models.Payment, error) {
	query := s.db.WithContext(ctx)
	if method != "" {
		if !models.PaymentMethod(method).Valid() {
			return nil, apperrors.Validation("Invalid payment method")
		}
		query = query.Where("method = ?", method)
	}
	return s.list(query)
}

func (s *PaymentService) list(query *gorm.DB) ([]models.Payment, error) {
	var payments []models.Payment
	if err := query.Preload("Booking").Order("created_at DESC").Order("id DESC").Find(&payments).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return payments, nil
}
