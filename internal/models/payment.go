package models

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCash   PaymentMethod = "cash"
	PaymentWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentCash, PaymentWallet:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment.BookingID is cleared when the booking is deleted; the payment itself is kept.
type Payment struct {
	BaseModel

	BookingID      *uint         `gorm:"uniqueIndex" json:"booking_id"`
	CustomerID     uint          `gorm:"not null;index" json:"customer_id"`
	OwnerID        uint          `gorm:"not null;index" json:"owner_id"`
	Amount         float64       `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method         PaymentMethod `gorm:"type:varchar(20);not null;index" json:"method"`
	Status         PaymentStatus `gorm:"type:varchar(20);not null;default:completed" json:"status"`
	TransactionRef string        `gorm:"uniqueIndex;not null" json:"transaction_ref"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"booking,omitempty"`
}
