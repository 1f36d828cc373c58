package expire_bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
)

// UseCase фоновое освобождение слотов неоплаченных бронирований
type UseCase struct {
	bookingRepo  BookingRepository
	bookings     BookingService
	policy       domain.BookingPolicy
	batchSize    int
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	bookings BookingService,
	policy domain.BookingPolicy,
	batchSize int,
	logger Logger,
) *UseCase {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		bookings:     bookings,
		policy:       policy,
		batchSize:    batchSize,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute истекает одну пачку PENDING бронирований с прошедшим окном оплаты
// Каждое бронирование обрабатывается своей транзакцией; ошибка одного не прерывает проход.
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	now := uc.timeProvider.Now()

	stale, err := uc.bookingRepo.ListExpiredPending(ctx, now.Add(-uc.policy.PaymentWindow), uc.batchSize)
	if err != nil {
		uc.logger.Error("ExpireBookings: failed to list stale bookings: %v", err)
		return nil, fmt.Errorf("%w: ExpireBookings - repository error: %v", domain.ErrSystem, err)
	}

	result := &Result{Scanned: len(stale)}
	for _, b := range stale {
		if err := ctx.Err(); err != nil {
			uc.logger.Warn("ExpireBookings: stopped after %d of %d bookings: %v", result.Expired+result.Skipped+result.Failed, len(stale), err)
			return result, err
		}

		err := uc.bookings.Expire(ctx, b, now, bookings.TriggerSweeper)
		switch {
		case err == nil:
			result.Expired++
		case errors.Is(err, domain.ErrInvalidStateTransition):
			result.Skipped++
		default:
			result.Failed++
		}
	}

	if result.Scanned > 0 {
		uc.logger.Info("ExpireBookings: scanned=%d, expired=%d, skipped=%d, failed=%d",
			result.Scanned, result.Expired, result.Skipped, result.Failed)
	}
	return result, nil
}
