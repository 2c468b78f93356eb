package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/auth"
	"github.com/drivelane/drivelane/internal/models"
)

func newUserService(t *testing.T) (*fixture, *UserService) {
	t.Helper()
	require.NoError(t, auth.InitJWT("test-secret", time.Hour))
	f := newFixture(t)
	return f, f.svc.Users
}

func TestRegisterAndLogin(t *testing.T) {
	_, users := newUserService(t)
	ctx := context.Background()

	user, token, err := users.Register(ctx, RegisterInput{
		Name:     " Priya ",
		Email:    " Priya@Example.com ",
		Password: "password123",
		Role:     models.RoleOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, "Priya", user.Name)
	assert.Equal(t, "priya@example.com", user.Email)
	assert.Equal(t, models.RoleOwner, user.Role)

	claims, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleOwner, claims.Role)

	_, _, err = users.Register(ctx, RegisterInput{Name: "Dup", Email: "PRIYA@example.com", Password: "password123"})
	requireKind(t, err, apperrors.KindConflict)
	assert.Equal(t, "Email already exists", err.Error())

	loggedIn, _, err := users.Login(ctx, "priya@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, err = users.Login(ctx, "priya@example.com", "wrong-password")
	requireKind(t, err, apperrors.KindValidation)
	assert.Equal(t, "Invalid email or password", err.Error())

	_, _, err = users.Login(ctx, "nobody@example.com", "password123")
	requireKind(t, err, apperrors.KindValidation)
}

func TestRegisterValidation(t *testing.T) {
	_, users := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.test", Password: "password123"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.test", Password: "short"}},
		{"unknown role", RegisterInput{Name: "A", Email: "a@b.test", Password: "password123", Role: "driver"}},
		{"admin role", RegisterInput{Name: "A", Email: "a@b.test", Password: "password123", Role: models.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := users.Register(ctx, tt.input)
			requireKind(t, err, apperrors.KindValidation)
		})
	}
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	f, users := newUserService(t)
	ctx := context.Background()

	user, _, err := users.Register(ctx, RegisterInput{Name: "Vik", Email: "vik@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = users.SetActive(ctx, actorOf(f.owner), user.ID, false)
	requireKind(t, err, apperrors.KindUnauthorized)

	_, err = users.SetActive(ctx, actorOf(f.admin), f.admin.ID, false)
	requireKind(t, err, apperrors.KindValidation)

	updated, err := users.SetActive(ctx, actorOf(f.admin), user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	_, _, err = users.Login(ctx, "vik@example.com", "password123")
	requireKind(t, err, apperrors.KindUnauthorized)
	assert.Equal(t, "Account has been deactivated", err.Error())
}

func TestUpdateProfile(t *testing.T) {
	_, users := newUserService(t)
	ctx := context.Background()

	user, _, err := users.Register(ctx, RegisterInput{Name: "Neha", Email: "neha@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = users.UpdateProfile(ctx, user.ID, UpdateProfileInput{})
	requireKind(t, err, apperrors.KindValidation)

	_, err = users.UpdateProfile(ctx, user.ID, UpdateProfileInput{NewPassword: "newpassword1", CurrentPassword: "nope"})
	requireKind(t, err, apperrors.KindValidation)

	updated, err := users.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		Phone:           "+91 98765 43210",
		CurrentPassword: "password123",
		NewPassword:     "newpassword1",
	})
	require.NoError(t, err)
	assert.Equal(t, "+91 98765 43210", updated.Phone)

	_, _, err = users.Login(ctx, "neha@example.com", "newpassword1")
	assert.NoError(t, err)
}

func TestCreateAdminAndListByRole(t *testing.T) {
	_, users := newUserService(t)
	ctx := context.Background()

	admin, err := users.CreateAdmin(ctx, "Root", "root@drivelane.test", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = users.CreateAdmin(ctx, "Root", "root@drivelane.test", "supersecret")
	requireKind(t, err, apperrors.KindConflict)

	admins, err := users.List(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	_, err = users.List(ctx, "superuser")
	requireKind(t, err, apperrors.KindValidation)
}
