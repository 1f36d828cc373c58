package confirm_payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/usecasetest"
)

func newUseCase(env *usecasetest.Env) *UseCase {
	return NewUseCase(env.Payments, env.Bookings, env.BookingRepo, env.TxManager, env.Publisher, env.Logger).
		WithTimeProvider(env.Clock)
}

// sessionOf возвращает сессию текущей попытки оплаты бронирования
func sessionOf(t *testing.T, env *usecasetest.Env, b *domain.Booking) string {
	t.Helper()
	p := env.LatestPayment(t, b.ID)
	require.NotNil(t, p.GatewaySessionID)
	return *p.GatewaySessionID
}

func TestConfirmPayment_Success(t *testing.T) {
	env := usecasetest.New(t)
	uc := newUseCase(env)
	b := env.SeedPending(t, "18:00", "19:00", 10*time.Minute)

	eventID, err := env.Gateway.Complete(sessionOf(t, env, b))
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{EventID: eventID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, resp.Outcome)
	assert.Equal(t, b.ID, resp.BookingID)
	assert.Equal(t, string(domain.StatusConfirmed), resp.BookingStatus)

	stored := env.Booking(t, b.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	require.NotNil(t, stored.ConfirmedAt)
	assert.True(t, stored.ConfirmedAt.Equal(usecasetest.Start))

	p := env.LatestPayment(t, b.ID)
	assert.Equal(t, domain.PaymentCompleted, p.Status)
	assert.Equal(t, resp.PaymentID, p.ID)
	require.NotNil(t, p.PaidAt)

	assert.True(t, env.Slot(t, *b.TimeSlotID).IsBooked)

	// повторная доставка
	resp, err = uc.Execute(context.Background(), &Request{EventID: eventID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, resp.Outcome)
	assert.Equal(t, string(domain.StatusConfirmed), resp.BookingStatus)

	assert.Equal(t, []domain.EventType{domain.EventBookingConfirmed}, env.Publisher.Types())
}

func TestConfirmPayment_ConcurrentDeliveries(t *testing.T) {
	env := usecasetest.New(t)
	uc := newUseCase(env)
	b := env.SeedPending(t, "18:00", "19:00", 10*time.Minute)

	eventID, err := env.Gateway.Complete(sessionOf(t, env, b))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), &Request{EventID: eventID})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, domain.StatusConfirmed, env.Booking(t, b.ID).Status)
	assert.Equal(t, []domain.EventType{domain.EventBookingConfirmed}, env.Publisher.Types())
}

func TestConfirmPayment_Declined(t *testing.T) {
	env := usecasetest.New(t)
	uc := newUseCase(env)
	b := env.SeedPending(t, "18:00", "19:00", 10*time.Minute)

	eventID, err := env.Gateway.Decline(sessionOf(t, env, b), "insufficient_fund")
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{EventID: eventID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, resp.Outcome)
	assert.Equal(t, string(domain.StatusPending), resp.BookingStatus)

	p := env.LatestPayment(t, b.ID)
	assert.Equal(t, domain.PaymentFailed, p.Status)
	require.NotNil(t, p.FailureReason)
	assert.Equal(t, "insufficient_fund", *p.FailureReason)

	assert.Equal(t, domain.StatusPending, env.Booking(t, b.ID).Status)
	assert.Equal(t, []domain.EventType{domain.EventPaymentFailed}, env.Publisher.Types())
}

func TestConfirmPayment_DeclineAfterSuccessIsIgnored(t *testing.T) {
	env := usecasetest.New(t)
	uc := newUseCase(env)
	b := env.SeedPending(t, "18:00", "19:00", 10*time.Minute)
	session := sessionOf(t, env, b)

	completed, err := env.Gateway.Complete(session)
	require.NoError(t, err)
	declined, err := env.Gateway.Decline(session, "reversed")
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), &Request{EventID: completed})
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{EventID: declined})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, resp.Outcome)
	assert.Equal(t, domain.PaymentCompleted, env.LatestPayment(t, b.ID).Status)
	assert.Equal(t, domain.StatusConfirmed, env.Booking(t, b.ID).Status)
}

func TestConfirmPayment_AfterExpiry(t *testing.T) {
	env := usecasetest.New(t)
	uc := newUseCase(env)
	b := env.SeedPending(t, "18:00", "19:00", 31*time.Minute)
	session := sessionOf(t, env, b)

	require.NoError(t, env.Bookings.Expire(context.Background(), b, usecasetest.Start, bookings.TriggerSweeper))
	env.Publisher.Reset()

	eventID, err := env.Gateway.Complete(session)
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{EventID: eventID})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	require.NotNil(t, resp)
	assert.Equal(t, OutcomeLate, resp.Outcome)
	assert.Equal(t, string(domain.StatusCancelled), resp.BookingStatus)

	assert.Equal(t, domain.PaymentCompleted, env.LatestPayment(t, b.ID).Status)
	assert.Equal(t, domain.StatusCancelled, env.Booking(t, b.ID).Status)
	assert.False(t, env.Slot(t, *b.TimeSlotID).IsBooked)

	resp, err = uc.Execute(context.Background(), &Request{EventID: eventID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, resp.Outcome)
	assert.Empty(t, env.Publisher.Events())
}

func TestConfirmPayment_UnresolvableEvent(t *testing.T) {
	env := usecasetest.New(t)
	uc := newUseCase(env)

	_, err := uc.Execute(context.Background(), &Request{EventID: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{EventID: "evnt_forged"})
	require.ErrorIs(t, err, domain.ErrGateway)
}
