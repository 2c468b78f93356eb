package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ParseID reads a positive numeric path parameter.
func ParseID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)

	if err != nil || id == 0 {
		return 0, fmt.Errorf("Invalid %s", name)
	}

	return uint(id), nil
}

// ParseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02", value)

	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid date %q, expected YYYY-MM-DD or RFC 3339", value)
	}

	return t, nil
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(ctx *gin.Context, name string) (*bool, error) {
	raw := ctx.Query(name)

	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)

	if err != nil {
		return nil, fmt.Errorf("Invalid %s", name)
	}

	return &value, nil
}

// QueryFloat parses an optional numeric query parameter, zero when absent.
func QueryFloat(ctx *gin.Context, name string) (float64, error) {
	raw := ctx.Query(name)

	if raw == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(raw, 64)

	if err != nil || value < 0 {
		return 0, fmt.Errorf("Invalid %s", name)
	}

	return value, nil
}
