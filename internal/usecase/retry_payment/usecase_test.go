package retry_payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/usecasetest"
)

func newUseCase(env *usecasetest.Env) *UseCase {
	return NewUseCase(env.Bookings, env.Slots, env.Payments, env.TxManager, env.Policy, env.Logger).
		WithTimeProvider(env.Clock)
}

// seedFailed создает PENDING бронирование, последняя попытка оплаты которого отклонена
func seedFailed(t *testing.T, env *usecasetest.Env, age time.Duration) (*domain.Booking, *domain.Payment) {
	t.Helper()
	b := env.SeedPending(t, "18:00", "19:00", age)
	p := env.LatestPayment(t, b.ID)
	require.NoError(t, env.PaymentRepo.MarkFailed(context.Background(), p.ID, "card declined", usecasetest.Start.Add(-time.Minute)))
	return b, p
}

func TestRetryPayment_ReopensFailedPayment(t *testing.T) {
	env := usecasetest.New(t)
	b, failed := seedFailed(t, env, 10*time.Minute)

	resp, err := newUseCase(env).Execute(context.Background(), &Request{UserID: usecasetest.BookerID, BookingID: b.ID})
	require.NoError(t, err)

	assert.Equal(t, b.ID, resp.BookingID)
	assert.Equal(t, failed.ID, resp.PaymentID)
	assert.Equal(t, "1215.40", resp.FinalAmount.StringFixed(2))
	assert.True(t, resp.PaymentDeadline.Equal(usecasetest.Start.Add(20*time.Minute)))
	assert.NotEmpty(t, resp.CheckoutURL)

	p := env.LatestPayment(t, b.ID)
	assert.Equal(t, failed.ID, p.ID)
	assert.Equal(t, domain.PaymentPending, p.Status)
	require.NotNil(t, p.GatewaySessionID)
	assert.Equal(t, resp.SessionID, *p.GatewaySessionID)
	assert.Nil(t, p.FailureReason)

	requests := env.Gateway.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "Smash Arena, Court 1: "+usecasetest.SlotDate().String()+" 18:00-19:00", requests[1].LineItem)

	assert.Equal(t, []domain.EventType{domain.EventPaymentSessionCreated}, env.Publisher.Types())
}

func TestRetryPayment_PaymentInProgress(t *testing.T) {
	env := usecasetest.New(t)
	b := env.SeedPending(t, "18:00", "19:00", 10*time.Minute)

	_, err := newUseCase(env).Execute(context.Background(), &Request{UserID: usecasetest.BookerID, BookingID: b.ID})
	require.ErrorIs(t, err, domain.ErrPaymentInProgress)
	assert.Len(t, env.Gateway.Requests(), 1)
}

func TestRetryPayment_ExpiredBooking(t *testing.T) {
	env := usecasetest.New(t)
	b, _ := seedFailed(t, env, 31*time.Minute)
	uc := newUseCase(env)
	req := &Request{UserID: usecasetest.BookerID, BookingID: b.ID}

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrBookingExpired)

	stored := env.Booking(t, b.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.True(t, stored.IsExpiredHold())
	assert.False(t, env.Slot(t, *b.TimeSlotID).IsBooked)

	env.Clock.Advance(time.Hour)
	_, err = uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrBookingExpired)

	assert.Len(t, env.Gateway.Requests(), 1, "no session is opened for an expired booking")
	assert.Equal(t, []domain.EventType{domain.EventBookingExpired}, env.Publisher.Types())
}

func TestRetryPayment_GatewayFailure(t *testing.T) {
	env := usecasetest.New(t)
	b, failed := seedFailed(t, env, 10*time.Minute)
	env.Gateway.FailSessions(errors.New("connection reset"))

	resp, err := newUseCase(env).Execute(context.Background(), &Request{UserID: usecasetest.BookerID, BookingID: b.ID})
	require.ErrorIs(t, err, domain.ErrGateway)
	require.NotNil(t, resp)
	assert.Equal(t, b.ID, resp.BookingID)
	assert.Empty(t, resp.CheckoutURL)

	p := env.LatestPayment(t, b.ID)
	assert.Equal(t, failed.ID, p.ID)
	assert.Equal(t, domain.PaymentFailed, p.Status)
	assert.Equal(t, domain.StatusPending, env.Booking(t, b.ID).Status)
}

func TestRetryPayment_Rejections(t *testing.T) {
	t.Run("someone else's booking", func(t *testing.T) {
		env := usecasetest.New(t)
		b, _ := seedFailed(t, env, time.Minute)

		_, err := newUseCase(env).Execute(context.Background(), &Request{UserID: 77, BookingID: b.ID})
		require.ErrorIs(t, err, domain.ErrAccessDenied)
	})

	t.Run("confirmed booking", func(t *testing.T) {
		env := usecasetest.New(t)
		b := env.SeedBooking(t, usecasetest.SlotDate(), "18:00", "19:00", domain.StatusConfirmed, usecasetest.Start.Add(-time.Hour))

		_, err := newUseCase(env).Execute(context.Background(), &Request{UserID: usecasetest.BookerID, BookingID: b.ID})
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("slot blocked after booking", func(t *testing.T) {
		env := usecasetest.New(t)
		b, _ := seedFailed(t, env, time.Minute)
		_, err := env.DB.ExecContext(context.Background(), `UPDATE time_slots SET is_blocked = $1 WHERE id = $2`, true, *b.TimeSlotID)
		require.NoError(t, err)

		_, err = newUseCase(env).Execute(context.Background(), &Request{UserID: usecasetest.BookerID, BookingID: b.ID})
		require.ErrorIs(t, err, domain.ErrSlotUnavailable)
		assert.Equal(t, domain.PaymentFailed, env.LatestPayment(t, b.ID).Status)
	})

	t.Run("invalid ids", func(t *testing.T) {
		env := usecasetest.New(t)
		_, err := newUseCase(env).Execute(context.Background(), &Request{UserID: usecasetest.BookerID})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
