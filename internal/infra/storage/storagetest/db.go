// Package storagetest поднимает временную SQLite базу с миграциями для тестов
package storagetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/migrations"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// NewDB создает временную SQLite базу с примененными миграциями
// Одно соединение сериализует запись, как это делает блокировка строк в postgres
func NewDB(t *testing.T) *dbmetrics.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_fk=1&_busy_timeout=5000"
	sqlDB, err := sql.Open(migrations.DriverSQLite, dsn)
	require.NoError(t, err, "open test db")
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migrations.Up(sqlDB, migrations.DriverSQLite), "migrate test db")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return dbmetrics.Wrap(sqlDB, nil)
}

func insert(t *testing.T, db dbmetrics.DBExecutor, query string, args ...interface{}) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowContext(context.Background(), query+" RETURNING id", args...).Scan(&id)
	require.NoError(t, err, query)
	return id
}

// SeedFacility создает площадку владельца ownerID
func SeedFacility(t *testing.T, db dbmetrics.DBExecutor, ownerID int64) int64 {
	t.Helper()
	return insert(t, db, `INSERT INTO facilities (owner_id, name, is_active) VALUES ($1, $2, $3)`,
		ownerID, "Smash Arena", true)
}

// SeedCourt создает корт с почасовой ставкой pricePerHour
func SeedCourt(t *testing.T, db dbmetrics.DBExecutor, facilityID int64, pricePerHour string) int64 {
	t.Helper()
	return insert(t, db, `INSERT INTO courts (facility_id, name, price_per_hour, is_active) VALUES ($1, $2, $3, $4)`,
		facilityID, "Court 1", decimal.RequireFromString(pricePerHour), true)
}

// SeedOperatingHours задает одинаковое расписание на все дни недели
func SeedOperatingHours(t *testing.T, db dbmetrics.DBExecutor, facilityID int64, openAt, closeAt types.TimeString) {
	t.Helper()
	for day := time.Sunday; day <= time.Saturday; day++ {
		SeedDayHours(t, db, facilityID, day, openAt, closeAt, false)
	}
}

// SeedDayHours задает расписание на один день недели
func SeedDayHours(t *testing.T, db dbmetrics.DBExecutor, facilityID int64, day time.Weekday, openAt, closeAt types.TimeString, closed bool) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO operating_hours (facility_id, day_of_week, open_time, close_time, is_closed) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (facility_id, day_of_week) DO UPDATE SET open_time = excluded.open_time, close_time = excluded.close_time, is_closed = excluded.is_closed`,
		facilityID, int(day), openAt, closeAt, closed)
	require.NoError(t, err, "seed operating hours")
}

// SeedMaintenance блокирует корт на период [start, end]
func SeedMaintenance(t *testing.T, db dbmetrics.DBExecutor, courtID int64, start, end types.Date) int64 {
	t.Helper()
	return insert(t, db, `INSERT INTO maintenances (court_id, start_date, end_date, reason, is_active) VALUES ($1, $2, $3, $4, $5)`,
		courtID, start, end, "Resurfacing", true)
}

// SeedSlot создает свободный слот
func SeedSlot(t *testing.T, db dbmetrics.DBExecutor, courtID int64, date types.Date, start, end types.TimeString) int64 {
	t.Helper()
	now := time.Now().UTC()
	return insert(t, db, `INSERT INTO time_slots (court_id, slot_date, start_time, end_time, is_booked, is_blocked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		courtID, date, start, end, false, false, now, now)
}

// SeedCoupon создает купон
func SeedCoupon(t *testing.T, db dbmetrics.DBExecutor, c domain.Coupon) int64 {
	t.Helper()
	var usageLimit interface{}
	if c.UsageLimit != nil {
		usageLimit = *c.UsageLimit
	}
	return insert(t, db, `INSERT INTO coupons (code, valid_from, valid_until, usage_limit, current_usage, discount_type,
		discount_value, min_booking_amount, max_discount_amount, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.Code, c.ValidFrom.UTC(), c.ValidUntil.UTC(), usageLimit, c.CurrentUsage, string(c.DiscountType),
		c.DiscountValue, c.MinBookingAmount, c.MaxDiscountAmount, c.IsActive)
}

// Fixture площадка с одним кортом, открытая ежедневно с 06:00 до 22:00
type Fixture struct {
	OwnerID    int64
	FacilityID int64
	CourtID    int64
}

// SeedFixture создает площадку, корт за 1000 в час и расписание
func SeedFixture(t *testing.T, db dbmetrics.DBExecutor) Fixture {
	t.Helper()
	const ownerID = 900
	facilityID := SeedFacility(t, db, ownerID)
	courtID := SeedCourt(t, db, facilityID, "1000")
	SeedOperatingHours(t, db, facilityID, "06:00", "22:00")
	return Fixture{OwnerID: ownerID, FacilityID: facilityID, CourtID: courtID}
}

// SeedBooking вставляет бронирование как есть; для активного статуса слот помечается занятым
func SeedBooking(t *testing.T, db dbmetrics.DBExecutor, b *domain.Booking) *domain.Booking {
	t.Helper()
	b.ID = insert(t, db, `INSERT INTO bookings (user_id, facility_id, court_id, time_slot_id, booking_date, start_time, end_time,
		total_hours, price_per_hour, total_amount, platform_fee, tax, discount_amount, final_amount, status,
		cancellation_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		b.UserID, b.FacilityID, b.CourtID, b.TimeSlotID, b.BookingDate, b.StartTime, b.EndTime,
		b.TotalHours, b.PricePerHour, b.TotalAmount, b.PlatformFee, b.Tax, b.DiscountAmount, b.FinalAmount, string(b.Status),
		b.CancellationReason, b.CreatedAt.UTC(), b.UpdatedAt.UTC())

	if b.TimeSlotID != nil && b.IsActive() {
		_, err := db.ExecContext(context.Background(), `UPDATE time_slots SET is_booked = $1 WHERE id = $2`, true, *b.TimeSlotID)
		require.NoError(t, err, "mark slot booked")
	}
	return b
}
