package cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// BookingService загрузка бронирования и ленивое истечение окна оплаты
type BookingService interface {
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	ExpireIfElapsed(ctx context.Context, b *domain.Booking, now time.Time, trigger string) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, now time.Time) error
}

// SlotReleaser освобождает слот отмененного бронирования
type SlotReleaser interface {
	Release(ctx context.Context, slotID int64, now time.Time) error
}

// PaymentService закрывает незавершенные платежи бронирования
type PaymentService interface {
	Close(ctx context.Context, bookingID int64, status domain.PaymentStatus, now time.Time) error
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
