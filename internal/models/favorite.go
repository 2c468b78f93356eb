package models

type Favorite struct {
	BaseModel

	UserID uint `gorm:"not null;uniqueIndex:idx_user_car" json:"user_id"`
	CarID  uint `gorm:"not null;uniqueIndex:idx_user_car" json:"car_id"`

	Car *Car `gorm:"foreignKey:CarID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"car,omitempty"`
}
