package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/models"
)

const recentBookingsLimit = 10

// DashboardService serves the read-only owner and admin reports.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type MonthlyAmount struct {
	Month  string  `json:"month"` // YYYY-MM
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type CarEarnings struct {
	CarID    uint    `json:"car_id"`
	Car      string  `json:"car"`
	Amount   float64 `json:"amount"`
	Bookings int     `json:"bookings"`
}

type MethodTotal struct {
	Method string  `json:"method"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

type OwnerDashboard struct {
	TotalCars        int64            `json:"total_cars"`
	ApprovedCars     int64            `json:"approved_cars"`
	AvailableCars    int64            `json:"available_cars"`
	TotalBookings    int64            `json:"total_bookings"`
	BookingsByStatus map[string]int64 `json:"bookings_by_status"`
	TotalEarnings    float64          `json:"total_earnings"`
	PaymentsReceived float64          `json:"payments_received"`
	EarningsByMonth  []MonthlyAmount  `json:"earnings_by_month"`
	RecentBookings   []models.Booking `json:"recent_bookings"`
}

type OwnerEarnings struct {
	Total   float64         `json:"total"`
	ByMonth []MonthlyAmount `json:"by_month"`
	ByCar   []CarEarnings   `json:"by_car"`
}

type AdminDashboard struct {
	UsersByRole      map[string]int64 `json:"users_by_role"`
	ActiveUsers      int64            `json:"active_users"`
	InactiveUsers    int64            `json:"inactive_users"`
	TotalCars        int64            `json:"total_cars"`
	PendingCars      int64            `json:"pending_cars"`
	TotalBookings    int64            `json:"total_bookings"`
	BookingsByStatus map[string]int64 `json:"bookings_by_status"`
	TotalRevenue     float64          `json:"total_revenue"`
	RevenueByMonth   []MonthlyAmount  `json:"revenue_by_month"`
	PaymentsByMethod []MethodTotal    `json:"payments_by_method"`
	OpenEmergencies  int64            `json:"open_emergencies"`
}

var earningStatuses = []models.BookingStatus{models.BookingConfirmed, models.BookingCompleted}

type earningRow struct {
	CarID      uint
	StartDate  time.Time
	TotalPrice float64
}

func (s *DashboardService) Owner(ctx context.Context, ownerID uint) (*OwnerDashboard, error) {
	db := s.db.WithContext(ctx)
	dash := &OwnerDashboard{}

	cars := db.Model(&models.Car{}).Where("owner_id = ?", ownerID)
	if err := cars.Session(&gorm.Session{}).Count(&dash.TotalCars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := cars.Session(&gorm.Session{}).Where("approved = ?", true).Count(&dash.ApprovedCars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := cars.Session(&gorm.Session{}).Where("approved = ? AND available = ?", true, true).Count(&dash.AvailableCars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	byStatus, total, err := countByStatus(db.Model(&models.Booking{}).Where("owner_id = ?", ownerID))
	if err != nil {
		return nil, err
	}
	dash.BookingsByStatus = byStatus
	dash.TotalBookings = total

	rows, err := s.earningRows(db, ownerID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		dash.TotalEarnings += r.TotalPrice
	}
	dash.EarningsByMonth = groupByMonth(rows, func(r earningRow) (time.Time, float64) { return r.StartDate, r.TotalPrice })

	dash.PaymentsReceived, err = sumPayments(db.Model(&models.Payment{}).Where("owner_id = ? AND status = ?", ownerID, models.PaymentCompleted))
	if err != nil {
		return nil, err
	}

	err = db.Preload("Car").Preload("Customer").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Limit(recentBookingsLimit).
		Find(&dash.RecentBookings).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return dash, nil
}

func (s *DashboardService) OwnerEarnings(ctx context.Context, ownerID uint) (*OwnerEarnings, error) {
	db := s.db.WithContext(ctx)

	rows, err := s.earningRows(db, ownerID)
	if err != nil {
		return nil, err
	}

	var cars []models.Car
	if err := db.Where("owner_id = ?", ownerID).Find(&cars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	names := make(map[uint]string, len(cars))
	for _, c := range cars {
		names[c.ID] = c.Brand + " " + c.Model
	}

	earnings := &OwnerEarnings{
		ByMonth: groupByMonth(rows, func(r earningRow) (time.Time, float64) { return r.StartDate, r.TotalPrice }),
		ByCar:   []CarEarnings{},
	}

	byCar := make(map[uint]*CarEarnings)
	for _, r := range rows {
		earnings.Total += r.TotalPrice

		entry, ok := byCar[r.CarID]
		if !ok {
			entry = &CarEarnings{CarID: r.CarID, Car: names[r.CarID]}
			byCar[r.CarID] = entry
		}
		entry.Amount += r.TotalPrice
		entry.Bookings++
	}
	for _, entry := range byCar {
		earnings.ByCar = append(earnings.ByCar, *entry)
	}
	sort.Slice(earnings.ByCar, func(i, j int) bool {
		if earnings.ByCar[i].Amount == earnings.ByCar[j].Amount {
			return earnings.ByCar[i].CarID < earnings.ByCar[j].CarID
		}
		return earnings.ByCar[i].Amount > earnings.ByCar[j].Amount
	})

	return earnings, nil
}

func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	db := s.db.WithContext(ctx)
	dash := &AdminDashboard{UsersByRole: map[string]int64{}}

	var roles []struct {
		Role  string
		Count int64
	}
	if err := db.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&roles).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, r := range roles {
		dash.UsersByRole[r.Role] = r.Count
	}

	if err := db.Model(&models.User{}).Where("active = ?", true).Count(&dash.ActiveUsers).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := db.Model(&models.User{}).Where("active = ?", false).Count(&dash.InactiveUsers).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := db.Model(&models.Car{}).Count(&dash.TotalCars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := db.Model(&models.Car{}).Where("approved = ?", false).Count(&dash.PendingCars).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	byStatus, total, err := countByStatus(db.Model(&models.Booking{}))
	if err != nil {
		return nil, err
	}
	dash.BookingsByStatus = byStatus
	dash.TotalBookings = total

	var payments []models.Payment
	if err := db.Select("amount", "created_at").Where("status = ?", models.PaymentCompleted).Find(&payments).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, p := range payments {
		dash.TotalRevenue += p.Amount
	}
	dash.RevenueByMonth = groupByMonth(payments, func(p models.Payment) (time.Time, float64) { return p.CreatedAt, p.Amount })

	err = db.Model(&models.Payment{}).
		Select("method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("status = ?", models.PaymentCompleted).
		Group("method").
		Order("method").
		Scan(&dash.PaymentsByMethod).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if dash.PaymentsByMethod == nil {
		dash.PaymentsByMethod = []MethodTotal{}
	}

	if err := db.Model(&models.Emergency{}).Where("status <> ?", models.EmergencyResolved).Count(&dash.OpenEmergencies).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return dash, nil
}

func (s *DashboardService) earningRows(db *gorm.DB, ownerID uint) ([]earningRow, error) {
	var rows []earningRow
	err := db.Model(&models.Booking{}).
		Select("car_id", "start_date", "total_price").
		Where("owner_id = ? AND status IN ?", ownerID, earningStatuses).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return rows, nil
}

func countByStatus(query *gorm.DB) (map[string]int64, int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, 0, apperrors.Internal(err)
	}

	byStatus := map[string]int64{
		string(models.BookingPending):   0,
		string(models.BookingConfirmed): 0,
		string(models.BookingCompleted): 0,
		string(models.BookingCancelled): 0,
		string(models.BookingRejected):  0,
	}
	var total int64
	for _, r := range rows {
		byStatus[r.Status] = r.Count
		total += r.Count
	}
	return byStatus, total, nil
}

func sumPayments(query *gorm.DB) (float64, error) {
	var out struct{ Total float64 }
	if err := query.Select("COALESCE(SUM(amount), 0) AS total").Scan(&out).Error; err != nil {
		return 0, apperrors.Internal(err)
	}
	return out.Total, nil
}

// groupByMonth buckets items by the UTC YYYY-MM of their timestamp, oldest month first.
func groupByMonth[T any](items []T, key func(T) (time.Time, float64)) []MonthlyAmount {
	buckets := make(map[string]*MonthlyAmount)
	for _, item := range items {
		at, amount := key(item)
		month := at.UTC().Format("2006-01")

		bucket, ok := buckets[month]
		if !ok {
			bucket = &MonthlyAmount{Month: month}
			buckets[month] = bucket
		}
		bucket.Amount += amount
		bucket.Count++
	}

	months := make([]MonthlyAmount, 0, len(buckets))
	for _, bucket := range buckets {
		months = append(months, *bucket)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	return months
}
