package create_booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
)

// SlotManager интерфейс менеджера временных слотов
type SlotManager interface {
	Lookup(ctx context.Context, slotID int64) (*domain.SlotDetails, error)
	CheckBookable(slot *domain.TimeSlot, now time.Time) error
	Reserve(ctx context.Context, slotID int64, now time.Time) error
}

// PricingEngine интерфейс расчета стоимости
type PricingEngine interface {
	Price(pricePerHour decimal.Decimal, hours decimal.Decimal) (*pricing.Quote, error)
	ApplyCoupon(coupon *domain.Coupon, totalAmount decimal.Decimal, now time.Time) (decimal.Decimal, error)
	Finalize(quote *pricing.Quote, discount decimal.Decimal) (*pricing.Breakdown, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// CouponRepository интерфейс репозитория купонов
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementUsage(ctx context.Context, id int64) error
	CreateBookingCoupon(ctx context.Context, bc *domain.BookingCoupon) (*domain.BookingCoupon, error)
}

// PaymentService интерфейс платежного оркестратора
type PaymentService interface {
	Open(ctx context.Context, b *domain.Booking, now time.Time) (*domain.Payment, error)
	StartSession(ctx context.Context, b *domain.Booking, p *domain.Payment, lineItem string, now time.Time) (*domain.CheckoutSession, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикует аудит-события
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

// Metrics счетчик попыток бронирования
type Metrics interface {
	IncBookingAttempt(result string)
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
