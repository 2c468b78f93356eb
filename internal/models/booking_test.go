package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRentalPrice(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		days int
	}{
		{"exact days", start.Add(72 * time.Hour), 3},
		{"started day counts", start.Add(49 * time.Hour), 3},
		{"under a day", start.Add(time.Hour), 1},
		{"date only range", time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.days, RentalDays(start, tt.end))
			assert.Equal(t, float64(tt.days)*100, RentalPrice(start, tt.end, 100))
		})
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, BookingPending.Terminal())
	assert.False(t, BookingConfirmed.Terminal())
	assert.True(t, BookingCompleted.Terminal())
	assert.True(t, BookingCancelled.Terminal())
	assert.True(t, BookingRejected.Terminal())
	assert.False(t, BookingStatus("pending").Valid())
}
