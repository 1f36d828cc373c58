// Package usecasetest собирает сервисы поверх временной SQLite базы для тестов use case
package usecasetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/coupon"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/payment"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/storagetest"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/sandboxpay"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/payments"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/timeslots"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Start 2030-03-14 10:30 UTC, четверг
var Start = time.Date(2030, 3, 14, 10, 30, 0, 0, time.UTC)

// BookerID пользователь, от имени которого создаются бронирования
const BookerID int64 = 1

// Clock управляемый источник времени
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// Now возвращает текущее время часов
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance сдвигает часы вперед
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Env полностью собранный слой сервисов
type Env struct {
	DB      *dbmetrics.DB
	Fixture storagetest.Fixture
	Clock   *Clock
	Policy  domain.BookingPolicy
	Logger  *logger.Logger
	Metrics *metrics.Metrics

	TxManager *txmanager.TransactionManager
	Publisher *events.Memory
	Gateway   *sandboxpay.Gateway

	BookingRepo  *booking.Repository
	SlotRepo     *timeslot.Repository
	PaymentRepo  *payment.Repository
	CouponRepo   *coupon.Repository
	FacilityRepo *facility.Repository

	Pricing  *pricing.Engine
	Slots    *timeslots.Manager
	Payments *payments.Orchestrator
	Bookings *bookings.Service
}

// New создает окружение с площадкой, кортом за 1000 в час и расписанием 06:00-22:00
func New(t *testing.T) *Env {
	t.Helper()

	db := storagetest.NewDB(t)
	policy := domain.DefaultBookingPolicy()
	log := logger.NewNop()
	var m *metrics.Metrics

	e := &Env{
		DB:        db,
		Fixture:   storagetest.SeedFixture(t, db),
		Clock:     &Clock{now: Start},
		Policy:    policy,
		Logger:    log,
		Metrics:   m,
		TxManager: txmanager.NewTransactionManager(db),
		Publisher: events.NewMemory(),
		Gateway:   sandboxpay.New("http://sandbox.local"),

		BookingRepo:  booking.NewRepository(db),
		SlotRepo:     timeslot.NewRepository(db),
		PaymentRepo:  payment.NewRepository(db),
		CouponRepo:   coupon.NewRepository(db),
		FacilityRepo: facility.NewRepository(db),

		Pricing: pricing.NewEngine(
			decimal.RequireFromString(domain.DefaultPlatformFeeRate),
			decimal.RequireFromString(domain.DefaultTaxRate),
		),
	}

	e.Slots = timeslots.NewManager(e.SlotRepo, e.FacilityRepo, e.TxManager, timeslots.Config{Policy: policy}, log)
	e.Payments = payments.NewOrchestrator(e.PaymentRepo, e.Gateway, e.Publisher, m,
		payments.Config{Currency: domain.DefaultCurrency, PaymentWindow: policy.PaymentWindow}, log)
	e.Bookings = bookings.NewService(e.BookingRepo, e.FacilityRepo, e.CouponRepo, e.Slots, e.Payments,
		e.TxManager, e.Publisher, m, policy, log)

	return e
}

// SlotDate дата, на которую создаются слоты в тестах: через два дня после Start
func SlotDate() types.Date {
	return types.NewDate(Start.AddDate(0, 0, 2))
}

// SeedSlot создает свободный слот на SlotDate
func (e *Env) SeedSlot(t *testing.T, start, end types.TimeString) int64 {
	t.Helper()
	return storagetest.SeedSlot(t, e.DB, e.Fixture.CourtID, SlotDate(), start, end)
}

// SeedSlotOn создает свободный слот на произвольную дату
func (e *Env) SeedSlotOn(t *testing.T, date types.Date, start, end types.TimeString) int64 {
	t.Helper()
	return storagetest.SeedSlot(t, e.DB, e.Fixture.CourtID, date, start, end)
}

// SeedCoupon создает действующий купон
func (e *Env) SeedCoupon(t *testing.T, c domain.Coupon) int64 {
	t.Helper()
	if c.ValidFrom.IsZero() {
		c.ValidFrom = Start.AddDate(0, -1, 0)
	}
	if c.ValidUntil.IsZero() {
		c.ValidUntil = Start.AddDate(0, 1, 0)
	}
	c.IsActive = true
	return storagetest.SeedCoupon(t, e.DB, c)
}

// Booking загружает бронирование из базы
func (e *Env) Booking(t *testing.T, id int64) *domain.Booking {
	t.Helper()
	b, err := e.BookingRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

// Slot загружает слот из базы
func (e *Env) Slot(t *testing.T, id int64) *domain.TimeSlot {
	t.Helper()
	s, err := e.SlotRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

// LatestPayment загружает последнюю попытку оплаты бронирования
func (e *Env) LatestPayment(t *testing.T, bookingID int64) *domain.Payment {
	t.Helper()
	p, err := e.PaymentRepo.GetLatestByBooking(context.Background(), bookingID)
	require.NoError(t, err)
	return p
}

// Coupon загружает купон по коду
func (e *Env) Coupon(t *testing.T, code string) *domain.Coupon {
	t.Helper()
	c, err := e.CouponRepo.GetByCode(context.Background(), code)
	require.NoError(t, err)
	return c
}

// SeedBooking создает бронирование на новый слот date start-end, созданное в createdAt.
// Для PENDING открывается платеж и сессия оплаты в sandbox-шлюзе, события засева сбрасываются.
func (e *Env) SeedBooking(t *testing.T, date types.Date, start, end types.TimeString, status domain.BookingStatus, createdAt time.Time) *domain.Booking {
	t.Helper()
	slotID := e.SeedSlotOn(t, date, start, end)

	b := storagetest.SeedBooking(t, e.DB, &domain.Booking{
		UserID:       BookerID,
		FacilityID:   e.Fixture.FacilityID,
		CourtID:      e.Fixture.CourtID,
		TimeSlotID:   ptr.Ptr(slotID),
		BookingDate:  date,
		StartTime:    start,
		EndTime:      end,
		TotalHours:   decimal.NewFromInt(1),
		PricePerHour: decimal.NewFromInt(1000),
		TotalAmount:  decimal.NewFromInt(1000),
		PlatformFee:  decimal.NewFromInt(30),
		Tax:          decimal.RequireFromString("185.4"),
		FinalAmount:  decimal.RequireFromString("1215.4"),
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	})

	if status == domain.StatusPending {
		ctx := context.Background()
		p, err := e.Payments.Open(ctx, b, createdAt)
		require.NoError(t, err)
		_, err = e.Payments.StartSession(ctx, b, p, "Court 1", createdAt)
		require.NoError(t, err)
	}
	e.Publisher.Reset()
	return b
}

// SeedPending создает PENDING бронирование на SlotDate, созданное за age до Start
func (e *Env) SeedPending(t *testing.T, start, end types.TimeString, age time.Duration) *domain.Booking {
	t.Helper()
	return e.SeedBooking(t, SlotDate(), start, end, domain.StatusPending, Start.Add(-age))
}
