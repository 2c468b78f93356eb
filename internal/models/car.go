package models

import (
	"gorm.io/datatypes"
)

type Car struct {
	BaseModel

	OwnerID      uint           `gorm:"not null;index" json:"owner_id"`
	Brand        string         `gorm:"not null;index" json:"brand"`
	Model        string         `gorm:"not null" json:"model"`
	Year         int            `json:"year"`
	Category     string         `gorm:"index" json:"category"` // "suv", "sedan", "hatchback", ...
	Transmission string         `json:"transmission"`
	FuelType     string         `json:"fuel_type"`
	Seats        int            `json:"seats"`
	Location     string         `gorm:"index" json:"location"`
	Description  string         `gorm:"type:text" json:"description"`
	PricePerDay  float64        `gorm:"type:decimal(10,2);not null" json:"price_per_day"`
	Images       datatypes.JSON `json:"images"`
	Approved     bool           `gorm:"not null;default:false;index" json:"approved"`
	Available    bool           `gorm:"not null;default:true" json:"available"`

	// Relationships
	Owner    *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Bookings []Booking `gorm:"foreignKey:CarID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Reviews  []Review  `gorm:"foreignKey:CarID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Bookable reports whether customers may currently reserve the car.
func (c Car) Bookable() bool {
	return c.Approved && c.Available
}
