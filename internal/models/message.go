package models

import "time"

type Message struct {
	BaseModel

	SenderID   uint       `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint       `gorm:"not null;index" json:"receiver_id"`
	BookingID  *uint      `gorm:"index" json:"booking_id,omitempty"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Read       bool       `gorm:"column:is_read;not null;default:false" json:"read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}
