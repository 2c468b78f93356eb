package models

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	BaseModel

	BookingID  *uint  `gorm:"uniqueIndex" json:"booking_id"`
	CarID      uint   `gorm:"not null;index" json:"car_id"`
	CustomerID uint   `gorm:"not null;index" json:"customer_id"`
	Rating     int    `gorm:"not null" json:"rating"`
	Comment    string `gorm:"type:text" json:"comment"`

	Customer *User    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Booking  *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}
