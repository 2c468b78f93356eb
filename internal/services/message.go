package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
)

const maxMessageLength = 2000

type MessageService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewMessageService(db *gorm.DB, notifications *NotificationService) *MessageService {
	return &MessageService{db: db, notifications: notifications}
}

type SendMessageInput struct {
	ReceiverID uint
	BookingID  *uint
	Content    string
}

// Conversation is the latest message exchanged with one counterpart.
type Conversation struct {
	User        *models.User   `json:"user"`
	LastMessage models.Message `json:"last_message"`
	UnreadCount int            `json:"unread_count"`
}

func (s *MessageService) Send(ctx context.Context, actor policy.Actor, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperrors.Validation("Message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, apperrors.Validation(fmt.Sprintf("Message cannot exceed %d characters", maxMessageLength))
	}
	if in.ReceiverID == actor.ID {
		return nil, apperrors.Validation("You cannot message yourself")
	}

	var receiver models.User
	if err := s.db.WithContext(ctx).First(&receiver, in.ReceiverID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Receiver not found")
	}

	if in.BookingID != nil {
		var booking models.Booking
		if err := s.db.WithContext(ctx).First(&booking, *in.BookingID).Error; err != nil {
			return nil, apperrors.FromLookup(err, "Booking not found")
		}
		if err := policy.Authorize(actor, &booking, policy.MessageBooking); err != nil {
			return nil, err
		}
		if receiver.ID != booking.CustomerID && receiver.ID != booking.OwnerID {
			return nil, apperrors.Validation("Receiver is not part of this booking")
		}
	}

	message := models.Message{
		SenderID:   actor.ID,
		ReceiverID: receiver.ID,
		BookingID:  in.BookingID,
		Content:    content,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	preview := content
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	s.notifications.NotifyBestEffort(ctx, &models.Notification{
		UserID:    receiver.ID,
		Type:      models.NotificationNewMessage,
		Title:     "New message",
		Message:   preview,
		BookingID: in.BookingID,
	})

	return &message, nil
}

// Conversation returns messages with otherUserID, oldest first, and marks the
// received ones as read.
func (s *MessageService) Conversation(ctx context.Context, userID, otherUserID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherUserID, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	for i := range messages {
		if messages[i].ReceiverID == userID && !messages[i].Read {
			messages[i].Read = true
			messages[i].ReadAt = &now
		}
	}

	return messages, nil
}

// Inbox lists one entry per counterpart, most recent first.
func (s *MessageService) Inbox(ctx context.Context, userID uint) ([]Conversation, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	byUser := make(map[uint]*Conversation)
	var order []uint

	for _, m := range messages {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}

		conv, ok := byUser[other]
		if !ok {
			conv = &Conversation{LastMessage: m}
			byUser[other] = conv
			order = append(order, other)
		}
		if m.ReceiverID == userID && !m.Read {
			conv.UnreadCount++
		}
	}

	if len(order) > 0 {
		var users []models.User
		if err := s.db.WithContext(ctx).Where("id IN ?", order).Find(&users).Error; err != nil {
			return nil, apperrors.Internal(err)
		}
		for i := range users {
			if conv, ok := byUser[users[i].ID]; ok {
				conv.User = &users[i]
			}
		}
	}

	inbox := make([]Conversation, 0, len(order))
	for _, id := range order {
		inbox = append(inbox, *byUser[id])
	}

	return inbox, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return count, nil
}
