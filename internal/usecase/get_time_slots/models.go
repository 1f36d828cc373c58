package get_time_slots

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Request модель запроса слотов корта на дату
type Request struct {
	CourtID int64      // ID корта
	Date    types.Date // Дата без времени
}

// Response модель ответа со слотами
type Response struct {
	CourtID            int64
	Date               types.Date
	OperatingHours     *OperatingHours // nil, если площадка в этот день не работает
	IsClosed           bool            // выходной день или расписание на этот день не задано
	IsUnderMaintenance bool
	Slots              []Slot
}

// OperatingHours рабочие часы площадки на дату
type OperatingHours struct {
	OpenTime  types.TimeString
	CloseTime types.TimeString
}

// Slot модель временного слота
type Slot struct {
	ID          int64            // 0 для слотов, не сохраненных из-за обслуживания
	StartTime   types.TimeString // Время начала слота (например, "10:00")
	EndTime     types.TimeString
	Price       decimal.Decimal // Цена за час
	Available   bool
	IsBlocked   bool
	BlockReason *string
}
