package models

import "time"

type EmergencyType string

const (
	EmergencyAccident  EmergencyType = "accident"
	EmergencyBreakdown EmergencyType = "breakdown"
	EmergencyMedical   EmergencyType = "medical"
	EmergencyTheft     EmergencyType = "theft"
	EmergencyOther     EmergencyType = "other"
)

func (t EmergencyType) Valid() bool {
	switch t {
	case EmergencyAccident, EmergencyBreakdown, EmergencyMedical, EmergencyTheft, EmergencyOther:
		return true
	}
	return false
}

type EmergencyStatus string

const (
	EmergencyOpen         EmergencyStatus = "open"
	EmergencyAcknowledged EmergencyStatus = "acknowledged"
	EmergencyResolved     EmergencyStatus = "resolved"
)

func (s EmergencyStatus) Valid() bool {
	switch s {
	case EmergencyOpen, EmergencyAcknowledged, EmergencyResolved:
		return true
	}
	return false
}

type Emergency struct {
	BaseModel

	BookingID   uint            `gorm:"not null;index" json:"booking_id"`
	CarID       uint            `gorm:"not null" json:"car_id"`
	ReporterID  uint            `gorm:"not null;index" json:"reporter_id"`
	OwnerID     uint            `gorm:"not null;index" json:"owner_id"`
	Type        EmergencyType   `gorm:"type:varchar(20);not null" json:"type"`
	Description string          `gorm:"type:text" json:"description"`
	Location    string          `json:"location"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Status      EmergencyStatus `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	ResolvedBy  *uint           `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
