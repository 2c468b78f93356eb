package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("Booking not found"), http.StatusNotFound},
		{"unauthorized", Unauthorized("nope"), http.StatusForbidden},
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"conflict", Conflict("again"), http.StatusConflict},
		{"wrapped conflict", fmt.Errorf("approve: %w", Conflict("again")), http.StatusConflict},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"gorm duplicate", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
		})
	}
}

func TestInternalKeepsRawMessage(t *testing.T) {
	err := Internal(errors.New("connection reset"))
	assert.Equal(t, "connection reset", err.Error())
	assert.True(t, Is(err, KindInternal))
}

func TestFromLookup(t *testing.T) {
	assert.NoError(t, FromLookup(nil, "x"))

	err := FromLookup(gorm.ErrRecordNotFound, "Car not found")
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "Car not found", err.Error())

	err = FromLookup(errors.New("timeout"), "Car not found")
	assert.True(t, Is(err, KindInternal))
}
