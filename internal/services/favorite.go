package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
)

const msgAlreadyFavorite = "Car is already in favorites"

type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

func (s *FavoriteService) Add(ctx context.Context, userID, carID uint) (*models.Favorite, error) {
	var car models.Car
	if err := s.db.WithContext(ctx).First(&car, carID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Car not found")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ? AND car_id = ?", userID, carID).Count(&existing).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing > 0 {
		return nil, apperrors.Conflict(msgAlreadyFavorite)
	}

	favorite := models.Favorite{UserID: userID, CarID: carID}
	if err := s.db.WithContext(ctx).Create(&favorite).Error; err != nil {
		return nil, wrapUnique(err, msgAlreadyFavorite)
	}
	favorite.Car = &car

	return &favorite, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, carID uint) error {
	result := s.db.WithContext(ctx).Where("user_id = ? AND car_id = ?", userID, carID).Delete(&models.Favorite{})
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Favorite not found")
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := s.db.WithContext(ctx).
		Preload("Car").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return favorites, nil
}
