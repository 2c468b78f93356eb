package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
)

// wrap keeps application errors as they are and marks everything else internal.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(err)
}

// wrapUnique is wrap with unique violations reported as a Conflict carrying message.
func wrapUnique(err error, message string) error {
	if err != nil && apperrors.IsUniqueViolation(err) {
		return apperrors.Conflict(message)
	}
	return wrap(err)
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

func carName(b *models.Booking) string {
	if b.Car == nil {
		return fmt.Sprintf("car #%d", b.CarID)
	}
	return b.Car.Brand + " " + b.Car.Model
}
