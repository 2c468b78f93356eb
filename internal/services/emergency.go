package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/logger"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
)

type EmergencyService struct {
	db            *gorm.DB
	notifications *NotificationService
	alerter       Alerter
}

func NewEmergencyService(db *gorm.DB, notifications *NotificationService, alerter Alerter) *EmergencyService {
	return &EmergencyService{db: db, notifications: notifications, alerter: alerter}
}

type EmergencyInput struct {
	BookingID   uint
	Type        models.EmergencyType
	Description string
	Location    string
	Latitude    *float64
	Longitude   *float64
}

// Raise records an emergency on an active booking and alerts the owner, every admin
// and the configured webhooks.
func (s *EmergencyService) Raise(ctx context.Context, actor policy.Actor, in EmergencyInput) (*models.Emergency, error) {
	if !in.Type.Valid() {
		return nil, apperrors.Validation("Invalid emergency type")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apperrors.Validation("Latitude and longitude must be provided together")
	}

	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Car").First(&booking, in.BookingID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Booking not found")
	}
	if err := policy.Authorize(actor, &booking, policy.ReportEmergency); err != nil {
		return nil, err
	}
	if booking.Status != models.BookingConfirmed {
		return nil, apperrors.Validation("Emergencies can only be reported for confirmed bookings")
	}

	emergency := models.Emergency{
		BookingID:   booking.ID,
		CarID:       booking.CarID,
		ReporterID:  actor.ID,
		OwnerID:     booking.OwnerID,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Status:      models.EmergencyOpen,
	}
	if err := s.db.WithContext(ctx).Create(&emergency).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	recipients := []uint{booking.OwnerID}
	var adminIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ? AND active = ?", models.RoleAdmin, true).Pluck("id", &adminIDs).Error; err != nil {
		logger.Error("emergency_raise", "failed to load admins for emergency alert", err, "emergency_id", emergency.ID)
	}
	recipients = append(recipients, adminIDs...)

	for _, userID := range recipients {
		s.notifications.NotifyBestEffort(ctx, &models.Notification{
			UserID:    userID,
			Type:      models.NotificationEmergencyAlert,
			Title:     "Emergency reported",
			Message:   fmt.Sprintf("A %s was reported for %s on booking #%d.", emergency.Type, carName(&booking), booking.ID),
			BookingID: &booking.ID,
			CarID:     &booking.CarID,
		})
	}

	if s.alerter != nil {
		if err := s.alerter.EmergencyRaised(ctx, emergency, booking); err != nil {
			logger.Error("emergency_webhook", "failed to send emergency webhook", err, "emergency_id", emergency.ID)
		}
	}

	return &emergency, nil
}

// UpdateStatus moves an emergency forward. Resolved emergencies are final.
func (s *EmergencyService) UpdateStatus(ctx context.Context, actor policy.Actor, id uint, status models.EmergencyStatus) (*models.Emergency, error) {
	if !status.Valid() || status == models.EmergencyOpen {
		return nil, apperrors.Validation("Status must be acknowledged or resolved")
	}

	var emergency models.Emergency
	if err := s.db.WithContext(ctx).First(&emergency, id).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Emergency not found")
	}
	if err := policy.Authorize(actor, &emergency, policy.UpdateEmergency); err != nil {
		return nil, err
	}
	if emergency.Status == models.EmergencyResolved {
		return nil, apperrors.Conflict("Emergency has already been resolved")
	}
	if emergency.Status == status {
		return &emergency, nil
	}

	updates := map[string]interface{}{"status": status}
	if status == models.EmergencyResolved {
		now := time.Now()
		updates["resolved_by"] = actor.ID
		updates["resolved_at"] = now
	}

	result := s.db.WithContext(ctx).Model(&models.Emergency{}).
		Where("id = ? AND status = ?", emergency.ID, emergency.Status).
		Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Conflict("Emergency was modified by another request")
	}

	if err := s.db.WithContext(ctx).First(&emergency, id).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	s.notifications.NotifyBestEffort(ctx, &models.Notification{
		UserID:    emergency.ReporterID,
		Type:      models.NotificationEmergencyStatusChanged,
		Title:     "Emergency update",
		Message:   fmt.Sprintf("Your %s report is now %s.", emergency.Type, emergency.Status),
		BookingID: &emergency.BookingID,
		CarID:     &emergency.CarID,
	})

	if s.alerter != nil {
		if err := s.alerter.EmergencyUpdated(ctx, emergency); err != nil {
			logger.Error("emergency_webhook", "failed to send emergency status webhook", err, "emergency_id", emergency.ID)
		}
	}

	return &emergency, nil
}

func (s *EmergencyService) ListForReporter(ctx context.Context, reporterID uint) ([]models.Emergency, error) {
	return s.list(s.db.WithContext(ctx).Where("reporter_id = ?", reporterID))
}

func (s *EmergencyService) ListForOwner(ctx context.Context, ownerID uint) ([]models.Emergency, error) {
	return s.list(s.db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

func (s *EmergencyService) ListAll(ctx context.Context, status string) ([]models.Emergency, error) {
	query := s.db.WithContext(ctx)
	if status != "" {
		if !models.EmergencyStatus(status).Valid() {
			return nil, apperrors.Validation("Invalid emergency status")
		}
		query = query.Where("status = ?", status)
	}
	return s.list(query)
}

func (s *EmergencyService) list(query *gorm.DB) ([]models.Emergency, error) {
	var emergencies []models.Emergency
	if err := query.Order("created_at DESC").Order("id DESC").Find(&emergencies).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return emergencies, nil
}
