package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, now time.Time) error
	Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, now time.Time) error
}

// FacilityRepository нужен для проверки владельца площадки
type FacilityRepository interface {
	GetFacility(ctx context.Context, id int64) (*domain.Facility, error)
}

// CouponRepository интерфейс чтения примененных купонов
type CouponRepository interface {
	GetBookingCoupon(ctx context.Context, bookingID int64) (*domain.BookingCoupon, error)
}

// SlotReleaser освобождает слот при истечении бронирования
type SlotReleaser interface {
	Release(ctx context.Context, slotID int64, now time.Time) error
}

// PaymentService интерфейс платежного оркестратора
type PaymentService interface {
	Latest(ctx context.Context, bookingID int64) (*domain.Payment, error)
	HasCompleted(ctx context.Context, bookingID int64) (bool, error)
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

// Metrics счетчик истекших бронирований
type Metrics interface {
	IncBookingExpired(trigger string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
