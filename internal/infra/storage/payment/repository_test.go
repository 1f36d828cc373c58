package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/storagetest"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

func seedBooking(t *testing.T, db dbmetrics.DBExecutor, now time.Time) int64 {
	t.Helper()
	fx := storagetest.SeedFixture(t, db)
	date := types.NewDate(time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC))
	slotID := storagetest.SeedSlot(t, db, fx.CourtID, date, "10:00", "11:00")

	b, err := booking.NewRepository(db).Create(context.Background(), &domain.Booking{
		UserID:      1,
		FacilityID:  fx.FacilityID,
		CourtID:     fx.CourtID,
		TimeSlotID:  ptr.Ptr(slotID),
		BookingDate: date,
		StartTime:   "10:00",
		EndTime:     "11:00",
		FinalAmount: decimal.NewFromInt(100),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return b.ID
}

func newPayment(bookingID int64, now time.Time) *domain.Payment {
	return &domain.Payment{
		BookingID:   bookingID,
		Amount:      decimal.NewFromInt(1000),
		PlatformFee: decimal.NewFromInt(30),
		Tax:         decimal.RequireFromString("185.4"),
		FinalAmount: decimal.RequireFromString("1215.4"),
		Currency:    "INR",
		Status:      domain.PaymentPending,
		ExpiresAt:   now.Add(30 * time.Minute),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestRepository_SingleOpenPayment(t *testing.T) {
	db := storagetest.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	bookingID := seedBooking(t, db, now)

	p, err := repo.Create(ctx, newPayment(bookingID, now))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newPayment(bookingID, now))
	assert.ErrorIs(t, err, ErrOpenPaymentExists)

	require.NoError(t, repo.MarkFailed(ctx, p.ID, "card_declined", now))
	_, err = repo.Create(ctx, newPayment(bookingID, now))
	assert.ErrorIs(t, err, ErrOpenPaymentExists, "FAILED payment is still open for retry")

	require.NoError(t, repo.Reopen(ctx, p.ID, now.Add(time.Hour), now))
	assert.ErrorIs(t, repo.Reopen(ctx, p.ID, now.Add(time.Hour), now), ErrStatusChanged)

	latest, err := repo.GetLatestByBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, latest.Status)
	assert.Nil(t, latest.FailureReason)
}

func TestRepository_SessionLifecycle(t *testing.T) {
	db := storagetest.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	bookingID := seedBooking(t, db, now)

	p, err := repo.Create(ctx, newPayment(bookingID, now))
	require.NoError(t, err)

	session := domain.CheckoutSession{SessionID: "chrg_test_1", CheckoutURL: "https://pay.example/chrg_test_1"}
	require.NoError(t, repo.SetSession(ctx, p.ID, session, now))

	bySession, err := repo.GetBySessionID(ctx, "chrg_test_1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySession.ID)
	require.NotNil(t, bySession.CheckoutURL)
	assert.Equal(t, session.CheckoutURL, *bySession.CheckoutURL)

	completed, err := repo.HasCompleted(ctx, bookingID)
	require.NoError(t, err)
	assert.False(t, completed)

	require.NoError(t, repo.MarkCompleted(ctx, p.ID, now))
	assert.ErrorIs(t, repo.MarkCompleted(ctx, p.ID, now), ErrStatusChanged)

	completed, err = repo.HasCompleted(ctx, bookingID)
	require.NoError(t, err)
	assert.True(t, completed)

	_, err = repo.GetBySessionID(ctx, "missing")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestRepository_CloseOpenForBooking(t *testing.T) {
	db := storagetest.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	bookingID := seedBooking(t, db, now)

	_, err := repo.Create(ctx, newPayment(bookingID, now))
	require.NoError(t, err)

	closed, err := repo.CloseOpenForBooking(ctx, bookingID, domain.PaymentExpired, now)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	closed, err = repo.CloseOpenForBooking(ctx, bookingID, domain.PaymentExpired, now)
	require.NoError(t, err)
	assert.Zero(t, closed)

	latest, err := repo.GetLatestByBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentExpired, latest.Status)
}
