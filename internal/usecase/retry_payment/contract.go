package retry_payment

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

// SlotManager интерфейс менеджера временных слотов
type SlotManager interface {
	Lookup(ctx context.Context, slotID int64) (*domain.SlotDetails, error)
}

// PaymentService интерфейс платежного оркестратора
type PaymentService interface {
	Claim(ctx context.Context, b *domain.Booking, now time.Time) (*domain.Payment, error)
	StartSession(ctx context.Context, b *domain.Booking, p *domain.Payment, lineItem string, now time.Time) (*domain.CheckoutSession, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
