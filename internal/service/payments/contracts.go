package payments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	GetLatestByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error)
	HasCompleted(ctx context.Context, bookingID int64) (bool, error)
	Reopen(ctx context.Context, id int64, expiresAt, now time.Time) error
	SetSession(ctx context.Context, id int64, session domain.CheckoutSession, now time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string, now time.Time) error
	MarkCompleted(ctx context.Context, id int64, now time.Time) error
	CloseOpenForBooking(ctx context.Context, bookingID int64, status domain.PaymentStatus, now time.Time) (int, error)
}

// Gateway порт платежного провайдера
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
	FetchEvent(ctx context.Context, eventID string) (*domain.GatewayEvent, error)
}

// EventPublisher публикует аудит-события без блокировки
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

// Metrics счетчики платежей
type Metrics interface {
	IncPaymentSession(result string)
	IncPaymentConfirmation(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
