package get_time_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// UseCase use case для получения слотов корта на дату
type UseCase struct {
	slots        SlotManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(slots SlotManager, logger Logger) *UseCase {
	return &UseCase{
		slots:        slots,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute возвращает слоты корта на дату; при первом запросе слоты генерируются из рабочих часов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetTimeSlots: court=%d, date=%s", req.CourtID, req.Date)

	// 1. Валидация входных данных
	if req.CourtID <= 0 {
		uc.logger.Warn("GetTimeSlots: invalid court id=%d", req.CourtID)
		return nil, fmt.Errorf("%w: courtId must be positive", domain.ErrInvalidInput)
	}
	if req.Date.IsZero() {
		uc.logger.Warn("GetTimeSlots: date is required")
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}

	// 2. Расписание дня с ленивой генерацией
	schedule, err := uc.slots.DaySchedule(ctx, req.CourtID, req.Date, uc.timeProvider.Now())
	if err != nil {
		return nil, err
	}

	resp := toResponse(schedule)
	uc.logger.Info("GetTimeSlots: returned %d slots for court=%d on %s", len(resp.Slots), req.CourtID, req.Date)
	return resp, nil
}
