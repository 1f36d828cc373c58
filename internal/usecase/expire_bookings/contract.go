package expire_bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// BookingRepository выборка неоплаченных бронирований
type BookingRepository interface {
	ListExpiredPending(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.Booking, error)
}

// BookingService переход PENDING -> CANCELLED по истечении окна оплаты
type BookingService interface {
	Expire(ctx context.Context, b *domain.Booking, now time.Time, trigger string) error
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
