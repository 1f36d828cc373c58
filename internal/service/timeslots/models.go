package timeslots

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Config параметры генерации и бронирования слотов
type Config struct {
	Policy              domain.BookingPolicy
	SlotDurationMinutes int
	AdvanceBookingDays  int // 0 = без ограничений
}

// DaySchedule слоты корта на дату вместе с расписанием площадки
type DaySchedule struct {
	CourtID            int64
	Date               types.Date
	CourtRate          decimal.Decimal
	OperatingHours     *domain.OperatingHours // nil, если расписание на день не задано
	IsClosed           bool
	IsUnderMaintenance bool
	Slots              []*domain.TimeSlot
}
