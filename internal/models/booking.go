package models

import (
	"math"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
	BookingRejected  BookingStatus = "Rejected"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled, BookingRejected:
		return true
	}
	return false
}

// Terminal statuses only allow permanent deletion.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingRejected || s == BookingCompleted
}

type Booking struct {
	BaseModel

	CustomerID     uint          `gorm:"not null;index" json:"customer_id"`
	CarID          uint          `gorm:"not null;index" json:"car_id"`
	OwnerID        uint          `gorm:"not null;index" json:"owner_id"`
	StartDate      time.Time     `gorm:"not null" json:"start_date"`
	EndDate        time.Time     `gorm:"not null" json:"end_date"`
	TotalPrice     float64       `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Status         BookingStatus `gorm:"type:varchar(20);not null;default:Pending;index" json:"status"`
	PickupLocation string        `json:"pickup_location"`
	Notes          string        `gorm:"type:text" json:"notes"`
	CancelledBy    *uint         `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`

	// Relationships
	Customer   *User              `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Car        *Car               `gorm:"foreignKey:CarID" json:"car,omitempty"`
	Extensions []ExtensionRequest `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// RentalDays counts started 24h periods in [start, end).
func RentalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// RentalPrice is ceil(days) × pricePerDay.
func RentalPrice(start, end time.Time, pricePerDay float64) float64 {
	return float64(RentalDays(start, end)) * pricePerDay
}
