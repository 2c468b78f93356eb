package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
)

func TestAuthorizeBooking(t *testing.T) {
	b := &models.Booking{CustomerID: 1, OwnerID: 2}
	customer := Actor{ID: 1, Role: models.RoleCustomer}
	owner := Actor{ID: 2, Role: models.RoleOwner}
	stranger := Actor{ID: 3, Role: models.RoleOwner}
	admin := Actor{ID: 9, Role: models.RoleAdmin}

	tests := []struct {
		name    string
		actor   Actor
		action  Action
		allowed bool
	}{
		{"customer views", customer, ViewBooking, true},
		{"owner views", owner, ViewBooking, true},
		{"stranger views", stranger, ViewBooking, false},
		{"admin views", admin, ViewBooking, true},
		{"owner approves", owner, ApproveBooking, true},
		{"customer approves", customer, ApproveBooking, false},
		{"admin rejects", admin, RejectBooking, true},
		{"customer cancels", customer, CancelBooking, true},
		{"stranger cancels", stranger, CancelBooking, false},
		{"customer confirms", customer, ConfirmBooking, true},
		{"owner confirms", owner, ConfirmBooking, false},
		{"owner completes", owner, CompleteBooking, true},
		{"customer deletes", customer, DeleteBooking, true},
		{"admin deletes", admin, DeleteBooking, false},
		{"customer extends", customer, RequestExtension, true},
		{"owner extends", owner, RequestExtension, false},
		{"owner messages", owner, MessageBooking, true},
		{"admin messages", admin, MessageBooking, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, b, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
		})
	}
}

func TestAuthorizeExtensionResponse(t *testing.T) {
	ext := &models.ExtensionRequest{CustomerID: 1, OwnerID: 2}

	assert.NoError(t, Authorize(Actor{ID: 2, Role: models.RoleOwner}, ext, RespondExtension))
	assert.NoError(t, Authorize(Actor{ID: 7, Role: models.RoleAdmin}, ext, RespondExtension))

	err := Authorize(Actor{ID: 1, Role: models.RoleCustomer}, ext, RespondExtension)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
	assert.Equal(t, "Not authorized to respond to this extension request", err.Error())

	err = Authorize(Actor{ID: 3, Role: models.RoleOwner}, ext, RespondExtension)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestAuthorizeCar(t *testing.T) {
	pending := &models.Car{OwnerID: 2, Approved: false}

	assert.Error(t, Authorize(Actor{ID: 1, Role: models.RoleCustomer}, pending, ViewCar))
	assert.NoError(t, Authorize(Actor{ID: 2, Role: models.RoleOwner}, pending, ViewCar))
	assert.NoError(t, Authorize(Actor{ID: 5, Role: models.RoleAdmin}, pending, ViewCar))
	assert.NoError(t, Authorize(Actor{ID: 2, Role: models.RoleOwner}, pending, ManageCar))
	assert.Error(t, Authorize(Actor{ID: 5, Role: models.RoleAdmin}, pending, ManageCar))
}

func TestAuthorizeRejectsMismatchedResource(t *testing.T) {
	err := Authorize(Actor{ID: 1, Role: models.RoleAdmin}, &models.Car{}, ApproveBooking)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestAuthorizeRejectsUnknownActionAndAnonymous(t *testing.T) {
	b := &models.Booking{CustomerID: 1, OwnerID: 2}

	assert.Error(t, Authorize(Actor{ID: 1, Role: models.RoleCustomer}, b, Action("booking:fly")))
	assert.Error(t, Authorize(Actor{ID: 0, Role: models.RoleAdmin}, b, ViewBooking))
	assert.Error(t, Authorize(Actor{ID: 1, Role: models.Role("guest")}, b, ViewBooking))
}
