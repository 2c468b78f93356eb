package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/auth"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
)

const MinPasswordLength = 8

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     models.Role
}

type UpdateProfileInput struct {
	Name            string
	Phone           string
	CurrentPassword string
	NewPassword     string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer or owner account and returns it with a session token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if in.Name == "" || in.Email == "" {
		return nil, "", apperrors.Validation("Name and email are required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, "", apperrors.Validation("Password must be at least 8 characters")
	}
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}
	if !in.Role.Valid() {
		return nil, "", apperrors.Validation("Invalid role")
	}
	if in.Role == models.RoleAdmin {
		return nil, "", apperrors.Validation("Admin accounts cannot be registered")
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, "", apperrors.Conflict("Email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.Internal(err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(passwordHash),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         in.Role,
		Active:       true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, "", wrapUnique(err, "Email already exists")
	}

	token, err := auth.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	return &user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.Validation("Invalid email or password")
		}
		return nil, "", apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.Validation("Invalid email or password")
	}

	if !user.Active {
		return nil, "", apperrors.Unauthorized("Account has been deactivated")
	}

	token, err := auth.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	return &user, token, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, apperrors.FromLookup(err, "User not found")
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if name := strings.TrimSpace(in.Name); name != "" {
		updates["name"] = name
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		updates["phone"] = phone
	}

	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return nil, apperrors.Validation("Current password is required to change password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return nil, apperrors.Validation("Current password is incorrect")
		}
		if len(in.NewPassword) < MinPasswordLength {
			return nil, apperrors.Validation("Password must be at least 8 characters")
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		return nil, apperrors.Validation("No valid fields to update")
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return s.Get(ctx, userID)
}

func (s *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	query := s.db.WithContext(ctx)
	if role != "" {
		if !models.Role(role).Valid() {
			return nil, apperrors.Validation("Invalid role")
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

// SetActive enables or disables an account. Admins cannot disable themselves.
func (s *UserService) SetActive(ctx context.Context, actor policy.Actor, id uint, active bool) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Unauthorized("Admin access required")
	}
	if actor.ID == id && !active {
		return nil, apperrors.Validation("You cannot deactivate your own account")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("active", active).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	user.Active = active

	return user, nil
}

// CreateAdmin bootstraps an admin account at startup. Admins cannot self-register.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	if len(password) < MinPasswordLength {
		return nil, apperrors.Validation("Password must be at least 8 characters")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: string(passwordHash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, wrapUnique(err, "Email already exists")
	}
	return &user, nil
}
