package models

import "time"

type ExtensionStatus string

const (
	ExtensionRequested ExtensionStatus = "Requested"
	ExtensionApproved  ExtensionStatus = "Approved"
	ExtensionRejected  ExtensionStatus = "Rejected"
)

const (
	MinExtensionDays = 1
	MaxExtensionDays = 7
)

// NotificationStatus is the lowercase value mirrored onto the owner's notification.
func (s ExtensionStatus) NotificationStatus() string {
	switch s {
	case ExtensionApproved:
		return "approved"
	case ExtensionRejected:
		return "rejected"
	default:
		return "pending"
	}
}

type ExtensionRequest struct {
	BaseModel

	BookingID       uint            `gorm:"not null;index" json:"booking_id"`
	CustomerID      uint            `gorm:"not null;index" json:"customer_id"`
	OwnerID         uint            `gorm:"not null;index" json:"owner_id"`
	CarID           uint            `gorm:"not null" json:"car_id"`
	ExtraDays       int             `gorm:"not null" json:"extra_days"`
	PreviousEndDate time.Time       `gorm:"not null" json:"previous_end_date"`
	NewEndDate      time.Time       `gorm:"not null" json:"new_end_date"`
	AdditionalPrice float64         `gorm:"type:decimal(12,2)" json:"additional_price"`
	Status          ExtensionStatus `gorm:"type:varchar(20);not null;default:Requested;index" json:"status"`
	RespondedBy     *uint           `json:"responded_by,omitempty"`
	RespondedAt     *time.Time      `json:"responded_at,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}
