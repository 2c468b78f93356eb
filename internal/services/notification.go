package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/logger"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/mq"
	"github.com/drivelane/drivelane/internal/policy"
)

// Pusher delivers a message to a user's live connections.
type Pusher interface {
	Push(userID uint, message interface{})
}

type noopPusher struct{}

func (noopPusher) Push(uint, interface{}) {}

type NotificationService struct {
	db     *gorm.DB
	hub    Pusher
	events mq.Publisher
}

func NewNotificationService(db *gorm.DB, hub Pusher, events mq.Publisher) *NotificationService {
	if hub == nil {
		hub = noopPusher{}
	}
	if events == nil {
		events = mq.Noop{}
	}
	return &NotificationService{db: db, hub: hub, events: events}
}

// Insert writes n using tx. Call Dispatch once tx has committed.
func (s *NotificationService) Insert(tx *gorm.DB, n *models.Notification) error {
	if n.UserID == 0 {
		return fmt.Errorf("notification has no recipient")
	}
	return tx.Create(n).Error
}

// Dispatch pushes a stored notification to live clients and the event bus.
func (s *NotificationService) Dispatch(ctx context.Context, n *models.Notification) {
	s.hub.Push(n.UserID, map[string]interface{}{"type": "notification", "notification": n})

	if err := s.events.Publish(ctx, "notification."+string(n.Type), n); err != nil {
		logger.Warn("notification_publish", "failed to publish notification event", err,
			"notification_id", n.ID, "user_id", n.UserID)
	}
}

func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.Insert(s.db.WithContext(ctx), n); err != nil {
		return err
	}
	s.Dispatch(ctx, n)
	return nil
}

// NotifyBestEffort never fails the caller. A notification that cannot be written is
// queued as a PendingNotification for the retry loop.
func (s *NotificationService) NotifyBestEffort(ctx context.Context, n *models.Notification) {
	err := s.Notify(ctx, n)
	if err == nil {
		return
	}

	logger.Error("notification_create", "failed to create notification, queueing for retry", err,
		"user_id", n.UserID, "type", string(n.Type))

	if qErr := s.enqueue(ctx, n, err); qErr != nil {
		logger.Error("notification_enqueue", "failed to queue notification for retry", qErr,
			"user_id", n.UserID, "type", string(n.Type))
	}
}

func (s *NotificationService) enqueue(ctx context.Context, n *models.Notification, cause error) error {
	queued := *n
	queued.ID = 0
	queued.CreatedAt = time.Time{}
	queued.UpdatedAt = time.Time{}

	payload, err := json.Marshal(queued)
	if err != nil {
		return err
	}

	pending := models.PendingNotification{
		UserID:        n.UserID,
		Payload:       datatypes.JSON(payload),
		LastError:     cause.Error(),
		NextAttemptAt: time.Now(),
	}

	return s.db.WithContext(ctx).Create(&pending).Error
}

// Deliver writes a queued notification. The caller records the attempt.
func (s *NotificationService) Deliver(ctx context.Context, pending *models.PendingNotification) error {
	var n models.Notification
	if err := json.Unmarshal(pending.Payload, &n); err != nil {
		return fmt.Errorf("invalid pending notification payload: %w", err)
	}
	n.ID = 0
	n.UserID = pending.UserID

	return s.Notify(ctx, &n)
}

func (s *NotificationService) ListMine(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return count, nil
}

func (s *NotificationService) Get(ctx context.Context, actor policy.Actor, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Notification not found")
	}
	if err := policy.Authorize(actor, &n, policy.ManageNotification); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor policy.Actor, id uint) (*models.Notification, error) {
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(n).Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	n.Read = true
	n.ReadAt = &now

	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	if result.Error != nil {
		return 0, apperrors.Internal(result.Error)
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(n).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
