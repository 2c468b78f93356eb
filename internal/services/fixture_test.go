package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
	"github.com/drivelane/drivelane/internal/testdb"
)

type pushed struct {
	userID  uint
	message interface{}
}

type recordingPusher struct {
	mu     sync.Mutex
	pushes []pushed
}

func (p *recordingPusher) Push(userID uint, message interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushed{userID: userID, message: message})
}

func (p *recordingPusher) countFor(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, push := range p.pushes {
		if push.userID == userID {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingAlerter struct {
	raised  int
	updated int
}

func (a *recordingAlerter) EmergencyRaised(context.Context, models.Emergency, models.Booking) error {
	a.raised++
	return nil
}

func (a *recordingAlerter) EmergencyUpdated(context.Context, models.Emergency) error {
	a.updated++
	return errors.New("webhook down")
}

type fixture struct {
	db        *gorm.DB
	svc       *Services
	pusher    *recordingPusher
	publisher *recordingPublisher
	alerter   *recordingAlerter

	owner    models.User
	customer models.User
	admin    models.User
	car      models.Car
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := testdb.New(t)
	f := &fixture{
		db:        conn,
		pusher:    &recordingPusher{},
		publisher: &recordingPublisher{},
		alerter:   &recordingAlerter{},
	}
	f.svc = New(conn, f.pusher, f.publisher, f.alerter)

	f.owner = f.createUser(t, "Olivia Owner", "owner@drivelane.test", models.RoleOwner)
	f.customer = f.createUser(t, "Carl Customer", "customer@drivelane.test", models.RoleCustomer)
	f.admin = f.createUser(t, "Ada Admin", "admin@drivelane.test", models.RoleAdmin)
	f.car = f.createCar(t, f.owner.ID, 100)

	return f
}

func (f *fixture) createUser(t *testing.T, name, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, PasswordHash: "x", Role: role, Active: true}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) createCar(t *testing.T, ownerID uint, pricePerDay float64) models.Car {
	t.Helper()
	car := models.Car{
		OwnerID:     ownerID,
		Brand:       "Toyota",
		Model:       "Corolla",
		Category:    "sedan",
		Location:    "Pune",
		PricePerDay: pricePerDay,
		Approved:    true,
		Available:   true,
	}
	require.NoError(t, f.db.Create(&car).Error)
	return car
}

// createBooking inserts a booking directly in the given status.
func (f *fixture) createBooking(t *testing.T, status models.BookingStatus, start, end time.Time) models.Booking {
	t.Helper()
	booking := models.Booking{
		CustomerID: f.customer.ID,
		CarID:      f.car.ID,
		OwnerID:    f.owner.ID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: models.RentalPrice(start, end, f.car.PricePerDay),
		Status:     status,
	}
	require.NoError(t, f.db.Create(&booking).Error)
	return booking
}

func (f *fixture) reload(t *testing.T, booking models.Booking) models.Booking {
	t.Helper()
	var fresh models.Booking
	require.NoError(t, f.db.First(&fresh, booking.ID).Error)
	return fresh
}

func (f *fixture) notificationsFor(t *testing.T, userID uint, kind models.NotificationType) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, f.db.Where("user_id = ? AND type = ?", userID, kind).Order("id").Find(&out).Error)
	return out
}

func actorOf(u models.User) policy.Actor {
	return policy.Actor{ID: u.ID, Role: u.Role}
}

func date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func ymd(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), "unexpected error: %v", err)
}

// failNotificationWrites makes every insert into notifications fail until the returned
// func is called.
func failNotificationWrites(t *testing.T, conn *gorm.DB) func() {
	t.Helper()
	const name = "test:fail_notifications"

	err := conn.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == "notifications" {
			tx.AddError(errors.New("notifications table unavailable"))
		}
	})
	require.NoError(t, err)

	restored := false
	restore := func() {
		if !restored {
			restored = true
			require.NoError(t, conn.Callback().Create().Remove(name))
		}
	}
	t.Cleanup(restore)
	return restore
}
