package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationBookingCreated         NotificationType = "booking_created"
	NotificationBookingApproved        NotificationType = "booking_approved"
	NotificationBookingRejected        NotificationType = "booking_rejected"
	NotificationBookingCancelled       NotificationType = "booking_cancelled"
	NotificationBookingCompleted       NotificationType = "booking_completed"
	NotificationExtensionRequested     NotificationType = "booking_extension_requested"
	NotificationExtensionApproved      NotificationType = "booking_extension_approved"
	NotificationExtensionRejected      NotificationType = "booking_extension_rejected"
	NotificationCarApproved            NotificationType = "car_approved"
	NotificationCarRejected            NotificationType = "car_rejected"
	NotificationReviewReceived         NotificationType = "review_received"
	NotificationNewMessage             NotificationType = "new_message"
	NotificationPaymentReceived        NotificationType = "payment_received"
	NotificationEmergencyAlert         NotificationType = "emergency_alert"
	NotificationEmergencyStatusChanged NotificationType = "emergency_status_changed"
)

type Notification struct {
	BaseModel

	UserID  uint             `gorm:"not null;index" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	Read    bool             `gorm:"column:is_read;not null;default:false" json:"read"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`
	Data    datatypes.JSON   `json:"data,omitempty"`

	BookingID          *uint `gorm:"index" json:"booking_id,omitempty"`
	CarID              *uint `json:"car_id,omitempty"`
	ExtensionRequestID *uint `gorm:"index" json:"extension_request_id,omitempty"`

	// Set on booking_extension_requested notifications only.
	ExtraDays       *int       `json:"extra_days,omitempty"`
	NewEndDate      *time.Time `json:"new_end_date,omitempty"`
	ExtensionStatus *string    `gorm:"type:varchar(20)" json:"extension_status,omitempty"`
}

// PendingNotification holds a notification whose write failed, for the retry loop.
type PendingNotification struct {
	BaseModel

	UserID        uint           `gorm:"not null;index" json:"user_id"`
	Payload       datatypes.JSON `gorm:"not null" json:"payload"`
	Attempts      int            `gorm:"not null;default:0" json:"attempts"`
	LastError     string         `gorm:"type:text" json:"last_error"`
	NextAttemptAt time.Time      `gorm:"not null;index" json:"next_attempt_at"`
	DeliveredAt   *time.Time     `gorm:"index" json:"delivered_at,omitempty"`
}
