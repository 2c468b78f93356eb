package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
)

const msgAlreadyReviewed = "You have already reviewed this booking"

type ReviewService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewReviewService(db *gorm.DB, notifications *NotificationService) *ReviewService {
	return &ReviewService{db: db, notifications: notifications}
}

// Create reviews a completed booking. Each booking can be reviewed once.
func (s *ReviewService) Create(ctx context.Context, actor policy.Actor, bookingID uint, rating int, comment string) (*models.Review, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, apperrors.Validation(fmt.Sprintf("Rating must be between %d and %d", models.MinRating, models.MaxRating))
	}

	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Car").First(&booking, bookingID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Booking not found")
	}
	if err := policy.Authorize(actor, &booking, policy.ReviewBooking); err != nil {
		return nil, err
	}
	if booking.Status != models.BookingCompleted {
		return nil, apperrors.Validation("Only completed bookings can be reviewed")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&existing).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing > 0 {
		return nil, apperrors.Conflict(msgAlreadyReviewed)
	}

	review := models.Review{
		BookingID:  &booking.ID,
		CarID:      booking.CarID,
		CustomerID: actor.ID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, wrapUnique(err, msgAlreadyReviewed)
	}

	s.notifications.NotifyBestEffort(ctx, &models.Notification{
		UserID:    booking.OwnerID,
		Type:      models.NotificationReviewReceived,
		Title:     "New review",
		Message:   fmt.Sprintf("Your %s received a %d-star review.", carName(&booking), rating),
		BookingID: &booking.ID,
		CarID:     &booking.CarID,
	})

	return &review, nil
}

func (s *ReviewService) ListForCar(ctx context.Context, carID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Where("car_id = ?", carID).
		Order("created_at DESC").Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return reviews, nil
}

func (s *ReviewService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return apperrors.FromLookup(err, "Review not found")
	}
	if err := policy.Authorize(actor, &review, policy.DeleteReview); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&review).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
