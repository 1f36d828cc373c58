package booking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/storagetest"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

var testDate = types.NewDate(time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC))

func newBooking(fx storagetest.Fixture, slotID int64, userID int64, createdAt time.Time) *domain.Booking {
	return &domain.Booking{
		UserID:         userID,
		FacilityID:     fx.FacilityID,
		CourtID:        fx.CourtID,
		TimeSlotID:     ptr.Ptr(slotID),
		BookingDate:    testDate,
		StartTime:      "10:00",
		EndTime:        "11:00",
		TotalHours:     decimal.NewFromInt(1),
		PricePerHour:   decimal.NewFromInt(1000),
		TotalAmount:    decimal.NewFromInt(1000),
		PlatformFee:    decimal.NewFromInt(30),
		Tax:            decimal.RequireFromString("185.4"),
		DiscountAmount: decimal.Zero,
		FinalAmount:    decimal.RequireFromString("1215.4"),
		Status:         domain.StatusPending,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)

	slotID := storagetest.SeedSlot(t, db, fx.CourtID, testDate, "10:00", "11:00")
	created, err := repo.Create(ctx, newBooking(fx, slotID, 7, now))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, got.FinalAmount.Equal(decimal.RequireFromString("1215.4")))
	assert.True(t, got.CreatedAt.Equal(now))
	require.NotNil(t, got.TimeSlotID)
	assert.Equal(t, slotID, *got.TimeSlotID)
	assert.Nil(t, got.ConfirmedAt)

	_, err = repo.GetByID(ctx, created.ID+1)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_CreateRejectsSecondActiveBooking(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	slotID := storagetest.SeedSlot(t, db, fx.CourtID, testDate, "10:00", "11:00")
	first, err := repo.Create(ctx, newBooking(fx, slotID, 1, now))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newBooking(fx, slotID, 2, now))
	assert.ErrorIs(t, err, ErrSlotAlreadyHeld)

	require.NoError(t, repo.Cancel(ctx, first.ID, domain.StatusPending, "changed plans", now))

	_, err = repo.Create(ctx, newBooking(fx, slotID, 2, now))
	assert.NoError(t, err)
}

func TestRepository_UpdateStatusIsConditional(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	slotID := storagetest.SeedSlot(t, db, fx.CourtID, testDate, "10:00", "11:00")
	b, err := repo.Create(ctx, newBooking(fx, slotID, 1, now))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusConfirmed, now))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusConfirmed, now), ErrStatusChanged)
	assert.ErrorIs(t, repo.Cancel(ctx, b.ID, domain.StatusPending, "late", now), ErrStatusChanged)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	require.NotNil(t, got.ConfirmedAt)
}

func TestRepository_ListFilters(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	s1 := storagetest.SeedSlot(t, db, fx.CourtID, testDate, "10:00", "11:00")
	s2 := storagetest.SeedSlot(t, db, fx.CourtID, testDate, "11:00", "12:00")
	s3 := storagetest.SeedSlot(t, db, fx.CourtID, testDate.AddDays(1), "10:00", "11:00")

	b1, err := repo.Create(ctx, newBooking(fx, s1, 1, now))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking(fx, s2, 1, now))
	require.NoError(t, err)
	other := newBooking(fx, s3, 2, now)
	other.BookingDate = testDate.AddDays(1)
	_, err = repo.Create(ctx, other)
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(ctx, b1.ID, domain.StatusPending, "x", now))

	userBookings, err := repo.List(ctx, domain.BookingFilter{UserID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	assert.Len(t, userBookings, 1)

	all, err := repo.List(ctx, domain.BookingFilter{UserID: ptr.Ptr(int64(1)), IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled := domain.StatusCancelled
	onlyCancelled, err := repo.List(ctx, domain.BookingFilter{FacilityID: ptr.Ptr(fx.FacilityID), Status: &cancelled})
	require.NoError(t, err)
	require.Len(t, onlyCancelled, 1)
	assert.Equal(t, b1.ID, onlyCancelled[0].ID)

	day := testDate.AddDays(1)
	onDay, err := repo.List(ctx, domain.BookingFilter{FacilityID: ptr.Ptr(fx.FacilityID), StartDate: &day, EndDate: &day})
	require.NoError(t, err)
	require.Len(t, onDay, 1)
	assert.Equal(t, int64(2), onDay[0].UserID)
}

func TestRepository_ListExpiredPending(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)

	old := storagetest.SeedSlot(t, db, fx.CourtID, testDate, "10:00", "11:00")
	fresh := storagetest.SeedSlot(t, db, fx.CourtID, testDate, "11:00", "12:00")

	stale, err := repo.Create(ctx, newBooking(fx, old, 1, now.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking(fx, fresh, 1, now.Add(-time.Minute)))
	require.NoError(t, err)

	expired, err := repo.ListExpiredPending(ctx, now.Add(-30*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
}
