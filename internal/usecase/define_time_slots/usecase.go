package define_time_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// UseCase use case для задания слотов корта владельцем площадки
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

// Execute заменяет слоты корта на дату
// Пересечения и выход за рабочие часы отклоняются до любой записи.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("DefineTimeSlots: owner=%d, court=%d, date=%s, slots=%d",
		req.OwnerID, req.CourtID, req.Date, len(req.Slots))

	// 1. Валидация входных данных
	if req.OwnerID <= 0 || req.CourtID <= 0 {
		uc.logger.Warn("DefineTimeSlots: invalid ids owner=%d, court=%d", req.OwnerID, req.CourtID)
		return nil, fmt.Errorf("%w: owner and court ids must be positive", domain.ErrInvalidInput)
	}
	if req.Date.IsZero() {
		uc.logger.Warn("DefineTimeSlots: date is required")
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}

	// 2. Проверка и замена слотов
	created, err := uc.slots.Replace(ctx, req.OwnerID, req.CourtID, req.Date, req.toDrafts(), uc.timeProvider.Now())
	if err != nil {
		return nil, err
	}

	return &Response{
		CourtID:      req.CourtID,
		Date:         req.Date,
		SlotsCreated: created,
	}, nil
}
