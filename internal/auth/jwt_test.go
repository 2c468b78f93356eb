package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/drivelane/internal/models"
)

func TestGenerateAndVerify(t *testing.T) {
	require.NoError(t, InitJWT("test-secret", time.Hour))

	token, err := GenerateJWT(42, models.RoleOwner)
	require.NoError(t, err)

	claims, err := VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleOwner, claims.Role)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	require.NoError(t, InitJWT("first-secret", time.Hour))
	token, err := GenerateJWT(1, models.RoleCustomer)
	require.NoError(t, err)

	require.NoError(t, InitJWT("second-secret", time.Hour))
	_, err = VerifyJWT(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	require.NoError(t, InitJWT("test-secret", -time.Minute))
	// negative ttl is ignored by InitJWT, so force it
	tokenTTL = -time.Minute
	t.Cleanup(func() { tokenTTL = 168 * time.Hour })

	token, err := GenerateJWT(1, models.RoleCustomer)
	require.NoError(t, err)

	_, err = VerifyJWT(token)
	assert.Error(t, err)
}

func TestInitJWTRequiresSecret(t *testing.T) {
	assert.Error(t, InitJWT("", time.Hour))
}
