package models

import "time"

type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Car{},
		&Booking{},
		&ExtensionRequest{},
		&Notification{},
		&PendingNotification{},
		&Payment{},
		&Review{},
		&Favorite{},
		&Message{},
		&Emergency{},
	}
}
