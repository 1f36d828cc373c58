package timeslots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// SlotRepository интерфейс репозитория временных слотов
type SlotRepository interface {
	GetDetails(ctx context.Context, id int64) (*domain.SlotDetails, error)
	ListByCourtAndDate(ctx context.Context, courtID int64, date types.Date) ([]*domain.TimeSlot, error)
	CreateBatch(ctx context.Context, slots []*domain.TimeSlot, now time.Time) (int, error)
	Reserve(ctx context.Context, id int64, now time.Time) error
	Release(ctx context.Context, id int64, now time.Time) error
	CountBooked(ctx context.Context, courtID int64, date types.Date) (int, error)
	ListReferencedByCourtAndDate(ctx context.Context, courtID int64, date types.Date) ([]*domain.TimeSlot, error)
	DeleteFreeByCourtAndDate(ctx context.Context, courtID int64, date types.Date) (int, error)
}

// FacilityRepository интерфейс репозитория площадок
type FacilityRepository interface {
	GetFacility(ctx context.Context, id int64) (*domain.Facility, error)
	GetCourt(ctx context.Context, id int64) (*domain.Court, error)
	GetOperatingHours(ctx context.Context, facilityID int64, day time.Weekday) (*domain.OperatingHours, error)
	GetActiveMaintenance(ctx context.Context, courtID int64, date types.Date) (*domain.Maintenance, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
