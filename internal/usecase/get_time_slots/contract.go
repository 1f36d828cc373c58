package get_time_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/timeslots"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// SlotManager интерфейс менеджера временных слотов
type SlotManager interface {
	DaySchedule(ctx context.Context, courtID int64, date types.Date, now time.Time) (*timeslots.DaySchedule, error)
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
