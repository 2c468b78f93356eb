package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/drivelane/internal/auth"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/realtime"
	"github.com/drivelane/drivelane/internal/services"
	"github.com/drivelane/drivelane/internal/testdb"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	svc    *services.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, auth.InitJWT("router-secret", time.Hour))

	conn := testdb.New(t)
	hub := realtime.NewHub()
	svc := services.New(conn, hub, nil, nil)

	engine := NewRouter(Dependencies{
		DB:       conn,
		Services: svc,
		Hub:      hub,
		TokenTTL: time.Hour,
	})

	return &testServer{t: t, engine: engine, svc: svc}
}

// call sends a JSON request and decodes the JSON response into out when non-nil.
func (s *testServer) call(method, path, token string, body interface{}, out interface{}) int {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if out != nil {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

func (s *testServer) register(name, email string, role models.Role) authResponse {
	s.t.Helper()
	var resp authResponse
	code := s.call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
		"role":     string(role),
	}, &resp)
	require.Equal(s.t, http.StatusCreated, code)
	require.NotEmpty(s.t, resp.Token)
	return resp
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	var resp struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}
	assert.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/health", "", nil, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Status)

	var ready struct {
		Success bool                   `json:"success"`
		Checks  map[string]interface{} `json:"checks"`
	}
	assert.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/health/ready", "", nil, &ready))
	assert.Equal(t, "ok", ready.Checks["pool"])
}

func TestRentalFlow(t *testing.T) {
	s := newTestServer(t)

	_, err := s.svc.Users.CreateAdmin(context.Background(), "Root", "root@drivelane.test", "supersecret")
	require.NoError(t, err)
	var adminLogin authResponse
	require.Equal(t, http.StatusOK, s.call(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "root@drivelane.test", "password": "supersecret",
	}, &adminLogin))

	owner := s.register("Olivia", "olivia@drivelane.test", models.RoleOwner)
	customer := s.register("Carl", "carl@drivelane.test", models.RoleCustomer)

	var carResp struct {
		Car models.Car `json:"car"`
	}
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, "/api/owner/cars", owner.Token, map[string]interface{}{
		"brand": "Toyota", "model": "Corolla", "year": 2022, "seats": 5, "location": "Pune", "price_per_day": 100,
	}, &carResp))
	carID := carResp.Car.ID
	assert.False(t, carResp.Car.Approved)

	booking := map[string]interface{}{"car_id": carID, "start_date": "2030-03-01", "end_date": "2030-03-04"}

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, s.call(http.MethodPost, "/api/bookings", customer.Token, booking, &errResp))
	assert.False(t, errResp.Success)

	assert.Equal(t, http.StatusForbidden, s.call(http.MethodPatch, fmt.Sprintf("/api/admin/cars/%d/approval", carID), owner.Token,
		map[string]bool{"approved": true}, nil))
	require.Equal(t, http.StatusOK, s.call(http.MethodPatch, fmt.Sprintf("/api/admin/cars/%d/approval", carID), adminLogin.Token,
		map[string]bool{"approved": true}, nil))

	assert.Equal(t, http.StatusForbidden, s.call(http.MethodPost, "/api/bookings", owner.Token, booking, nil))

	var bookingResp struct {
		Booking models.Booking `json:"booking"`
	}
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, "/api/bookings", customer.Token, booking, &bookingResp))
	bookingID := bookingResp.Booking.ID
	assert.Equal(t, models.BookingPending, bookingResp.Booking.Status)
	assert.Equal(t, 300.0, bookingResp.Booking.TotalPrice)

	assert.Equal(t, http.StatusForbidden, s.call(http.MethodPatch, fmt.Sprintf("/api/bookings/%d/approve", bookingID), customer.Token, nil, nil))
	require.Equal(t, http.StatusOK, s.call(http.MethodPatch, fmt.Sprintf("/api/bookings/%d/approve", bookingID), owner.Token, nil, &bookingResp))
	assert.Equal(t, models.BookingConfirmed, bookingResp.Booking.Status)
	assert.Equal(t, http.StatusBadRequest, s.call(http.MethodPatch, fmt.Sprintf("/api/bookings/%d/approve", bookingID), owner.Token, nil, nil))

	var requested struct {
		Extension    models.ExtensionRequest `json:"extension"`
		Notification models.Notification     `json:"notification"`
	}
	assert.Equal(t, http.StatusBadRequest, s.call(http.MethodPost, fmt.Sprintf("/api/bookings/%d/extensions", bookingID), customer.Token,
		map[string]int{"extra_days": 8}, nil))
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, fmt.Sprintf("/api/bookings/%d/extensions", bookingID), customer.Token,
		map[string]int{"extra_days": 2}, &requested))
	assert.Equal(t, models.ExtensionRequested, requested.Extension.Status)
	assert.Equal(t, 200.0, requested.Extension.AdditionalPrice)
	assert.Equal(t, http.StatusConflict, s.call(http.MethodPost, fmt.Sprintf("/api/bookings/%d/extensions", bookingID), customer.Token,
		map[string]int{"extra_days": 1}, nil))

	var unread struct {
		Count int64 `json:"count"`
	}
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/notifications/unread-count", owner.Token, nil, &unread))
	assert.NotZero(t, unread.Count)

	approvePath := fmt.Sprintf("/api/notifications/%d/extension/approve", requested.Notification.ID)
	assert.Equal(t, http.StatusForbidden, s.call(http.MethodPatch, approvePath, customer.Token, nil, nil))

	var decided struct {
		Extension models.ExtensionRequest `json:"extension"`
		Booking   models.Booking          `json:"booking"`
	}
	require.Equal(t, http.StatusOK, s.call(http.MethodPatch, approvePath, owner.Token, nil, &decided))
	assert.Equal(t, models.ExtensionApproved, decided.Extension.Status)
	assert.Equal(t, 500.0, decided.Booking.TotalPrice)
	assert.True(t, decided.Booking.EndDate.Equal(time.Date(2030, 3, 6, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, http.StatusConflict, s.call(http.MethodPatch, approvePath, owner.Token, nil, nil))

	var notifications struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/notifications", customer.Token, nil, &notifications))
	var types []models.NotificationType
	for _, n := range notifications.Notifications {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, models.NotificationBookingApproved)
	assert.Contains(t, types, models.NotificationExtensionApproved)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	customer := s.register("Carl", "carl@drivelane.test", models.RoleCustomer)

	assert.Equal(t, http.StatusUnauthorized, s.call(http.MethodGet, "/api/bookings/mine", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.call(http.MethodGet, "/api/bookings/999", customer.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.call(http.MethodGet, "/api/bookings/abc", customer.Token, nil, nil))
	assert.Equal(t, http.StatusForbidden, s.call(http.MethodGet, "/api/admin/users", customer.Token, nil, nil))
	assert.Equal(t, http.StatusForbidden, s.call(http.MethodGet, "/api/owner/cars", customer.Token, nil, nil))

	var errResp errorResponse
	assert.Equal(t, http.StatusConflict, s.call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Again", "email": "carl@drivelane.test", "password": "password123",
	}, &errResp))
	assert.Equal(t, "Email already exists", errResp.Message)

	assert.Equal(t, http.StatusBadRequest, s.call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Short", "email": "short@drivelane.test", "password": "123",
	}, nil))

	var me authResponse
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/auth/me", customer.Token, nil, &me))
	assert.Equal(t, "carl@drivelane.test", me.User.Email)
}
