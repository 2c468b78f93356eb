package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
)

type CarService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewCarService(db *gorm.DB, notifications *NotificationService) *CarService {
	return &CarService{db: db, notifications: notifications}
}

type CarInput struct {
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Category     string   `json:"category"`
	Transmission string   `json:"transmission"`
	FuelType     string   `json:"fuel_type"`
	Seats        int      `json:"seats"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	PricePerDay  float64  `json:"price_per_day"`
	Images       []string `json:"images"`
}

func (in CarInput) validate() error {
	if strings.TrimSpace(in.Brand) == "" || strings.TrimSpace(in.Model) == "" {
		return apperrors.Validation("Brand and model are required")
	}
	if in.PricePerDay <= 0 {
		return apperrors.Validation("Price per day must be greater than zero")
	}
	if in.Seats < 0 || in.Year < 0 {
		return apperrors.Validation("Seats and year cannot be negative")
	}
	return nil
}

type CarFilter struct {
	Brand     string
	Location  string
	Category  string
	MinPrice  float64
	MaxPrice  float64
	Available *bool
}

// CarDetails is a car with its review summary.
type CarDetails struct {
	models.Car
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

func encodeImages(images []string) (datatypes.JSON, error) {
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// Create lists a new car for the owner. New cars wait for admin approval.
func (s *CarService) Create(ctx context.Context, actor policy.Actor, in CarInput) (*models.Car, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	images, err := encodeImages(in.Images)
	if err != nil {
		return nil, apperrors.Validation("Invalid images")
	}

	car := models.Car{
		OwnerID:      actor.ID,
		Brand:        strings.TrimSpace(in.Brand),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		Category:     strings.ToLower(strings.TrimSpace(in.Category)),
		Transmission: in.Transmission,
		FuelType:     in.FuelType,
		Seats:        in.Seats,
		Location:     strings.TrimSpace(in.Location),
		Description:  in.Description,
		PricePerDay:  in.PricePerDay,
		Images:       images,
		Approved:     false,
		Available:    true,
	}

	if err := s.db.WithContext(ctx).Create(&car).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &car, nil
}

func (s *CarService) load(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	if err := s.db.WithContext(ctx).First(&car, id).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Car not found")
	}
	return &car, nil
}

// Update replaces the listing details. Approval status is kept.
func (s *CarService) Update(ctx context.Context, actor policy.Actor, id uint, in CarInput) (*models.Car, error) {
	car, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, car, policy.ManageCar); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	images, err := encodeImages(in.Images)
	if err != nil {
		return nil, apperrors.Validation("Invalid images")
	}

	updates := map[string]interface{}{
		"brand":         strings.TrimSpace(in.Brand),
		"model":         strings.TrimSpace(in.Model),
		"year":          in.Year,
		"category":      strings.ToLower(strings.TrimSpace(in.Category)),
		"transmission":  in.Transmission,
		"fuel_type":     in.FuelType,
		"seats":         in.Seats,
		"location":      strings.TrimSpace(in.Location),
		"description":   in.Description,
		"price_per_day": in.PricePerDay,
		"images":        images,
	}

	if err := s.db.WithContext(ctx).Model(car).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.load(ctx, id)
}

func (s *CarService) SetAvailability(ctx context.Context, actor policy.Actor, id uint, available bool) (*models.Car, error) {
	car, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, car, policy.ManageCar); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(car).Update("available", available).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	car.Available = available

	return car, nil
}

// Delete removes a car that has no pending or confirmed bookings.
func (s *CarService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	car, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, car, policy.ManageCar); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&models.Booking{}).
			Where("car_id = ? AND status IN ?", car.ID, []models.BookingStatus{models.BookingPending, models.BookingConfirmed}).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return apperrors.Conflict("Car has active bookings and cannot be deleted")
		}

		if err := tx.Where("car_id = ?", car.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Car{}, car.ID).Error
	})
	return wrap(err)
}

func (s *CarService) ListMine(ctx context.Context, ownerID uint) ([]models.Car, error) {
	var cars []models.Car
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Order("id DESC").Find(&cars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return cars, nil
}

// List returns approved cars matching filter.
func (s *CarService) List(ctx context.Context, filter CarFilter) ([]models.Car, error) {
	query := s.db.WithContext(ctx).Where("approved = ?", true)

	if filter.Brand != "" {
		query = query.Where("LOWER(brand) LIKE ?", "%"+strings.ToLower(filter.Brand)+"%")
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", strings.ToLower(filter.Category))
	}
	if filter.MinPrice > 0 {
		query = query.Where("price_per_day >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		if filter.MinPrice > filter.MaxPrice {
			return nil, apperrors.Validation("Minimum price cannot exceed maximum price")
		}
		query = query.Where("price_per_day <= ?", filter.MaxPrice)
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}

	var cars []models.Car
	if err := query.Order("created_at DESC").Order("id DESC").Find(&cars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return cars, nil
}

// Get returns a car with its rating. Unapproved cars are visible to their owner and admins only.
func (s *CarService) Get(ctx context.Context, actor policy.Actor, id uint) (*CarDetails, error) {
	var car models.Car
	if err := s.db.WithContext(ctx).Preload("Owner").First(&car, id).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Car not found")
	}

	if !car.Approved {
		// Hidden cars look missing to everyone else.
		if err := policy.Authorize(actor, &car, policy.ViewCar); err != nil {
			return nil, apperrors.NotFound("Car not found")
		}
	}

	var summary struct {
		Average float64
		Count   int64
	}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("car_id = ?", car.ID).
		Scan(&summary).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &CarDetails{Car: car, AverageRating: summary.Average, ReviewCount: summary.Count}, nil
}

func (s *CarService) ListPending(ctx context.Context) ([]models.Car, error) {
	var cars []models.Car
	if err := s.db.WithContext(ctx).Preload("Owner").Where("approved = ?", false).Order("created_at ASC").Find(&cars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return cars, nil
}

// SetApproval records the admin's moderation decision and tells the owner.
func (s *CarService) SetApproval(ctx context.Context, actor policy.Actor, id uint, approved bool) (*models.Car, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Unauthorized("Admin access required")
	}

	car, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(car).Update("approved", approved).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	car.Approved = approved

	n := &models.Notification{
		UserID: car.OwnerID,
		CarID:  &car.ID,
	}
	if approved {
		n.Type = models.NotificationCarApproved
		n.Title = "Car approved"
		n.Message = fmt.Sprintf("Your %s %s is now listed.", car.Brand, car.Model)
	} else {
		n.Type = models.NotificationCarRejected
		n.Title = "Car not approved"
		n.Message = fmt.Sprintf("Your %s %s was not approved for listing.", car.Brand, car.Model)
	}
	s.notifications.NotifyBestEffort(ctx, n)

	return car, nil
}
