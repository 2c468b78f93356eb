package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/drivelane/internal/types"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf, true)
	t.Cleanup(func() { SetOutput(os.Stdout, false) })
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &record))
	return record
}

func TestWarnIncludesActionAndError(t *testing.T) {
	buf := capture(t)

	Warn("approve_extension", "customer notification failed", errors.New("disk full"), "booking_id", 7)

	record := lastRecord(t, buf)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "approve_extension", record["action"])
	assert.Equal(t, "disk full", record["error"])
	assert.EqualValues(t, 7, record["booking_id"])
	assert.Equal(t, "drivelane", record["service"])
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := capture(t)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(ctx *gin.Context) {
		assert.NotEmpty(t, RequestID(ctx))
		ctx.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get(types.RequestIDHeader))

	record := lastRecord(t, buf)
	assert.Equal(t, "http_request", record["action"])
	assert.Equal(t, w.Header().Get(types.RequestIDHeader), record["request_id"])
	assert.EqualValues(t, http.StatusNoContent, record["status"])
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	capture(t)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(types.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(types.RequestIDHeader))
}
