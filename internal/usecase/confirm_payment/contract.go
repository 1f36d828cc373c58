package confirm_payment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/payments"
)

// PaymentService интерфейс платежного оркестратора
type PaymentService interface {
	ResolveEvent(ctx context.Context, eventID string) (*domain.GatewayEvent, error)
	Settle(ctx context.Context, event *domain.GatewayEvent, now time.Time) (*payments.Settlement, error)
}

// BookingService загрузка бронирования
type BookingService interface {
	Get(ctx context.Context, id int64) (*domain.Booking, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, now time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикует аудит-события
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
