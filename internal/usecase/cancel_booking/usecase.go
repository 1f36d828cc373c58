package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
)

// UseCase use case для отмены бронирования пользователем
type UseCase struct {
	bookings     BookingService
	bookingRepo  BookingRepository
	slots        SlotReleaser
	payments     PaymentService
	txManager    TransactionManager
	publisher    EventPublisher
	policy       domain.BookingPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookings BookingService,
	bookingRepo BookingRepository,
	slots SlotReleaser,
	payments PaymentService,
	txManager TransactionManager,
	publisher EventPublisher,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookings:     bookings,
		bookingRepo:  bookingRepo,
		slots:        slots,
		payments:     payments,
		txManager:    txManager,
		publisher:    publisher,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute отменяет PENDING или CONFIRMED бронирование не позднее чем за CancellationNotice до начала
// Статус бронирования, освобождение слота и закрытие открытых платежей фиксируются одной транзакцией.
// Завершенный платеж не трогается: возврат средств выполняет платежный провайдер.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: user=%d, booking=%d", req.UserID, req.BookingID)

	// 1. Валидация входных данных
	reason, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Загружаем бронирование и проверяем автора
	booking, err := uc.bookings.Get(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != req.UserID {
		uc.logger.Warn("CancelBooking: user=%d is not the author of booking id=%d", req.UserID, req.BookingID)
		return nil, fmt.Errorf("%w: booking %d", domain.ErrAccessDenied, req.BookingID)
	}

	// 4. Неоплаченное бронирование с истекшим окном уже не удерживает слот
	if err := uc.bookings.ExpireIfElapsed(ctx, booking, now, bookings.TriggerLazy); err != nil {
		return nil, err
	}

	// 5. Проверка переходов и окна отмены
	if err := uc.policy.CheckUserCancellation(booking, now); err != nil {
		uc.logger.Warn("CancelBooking: booking id=%d: %v", req.BookingID, err)
		return nil, err
	}

	// 6. Отмена, освобождение слота и закрытие платежей одной транзакцией
	from := booking.Status
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.Cancel(txCtx, booking.ID, from, reason, now); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusChanged) {
				uc.logger.Warn("CancelBooking: booking id=%d changed concurrently", booking.ID)
				return fmt.Errorf("%w: booking %d is no longer %s", domain.ErrInvalidStateTransition, booking.ID, from)
			}
			uc.logger.Error("CancelBooking: failed to cancel booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to cancel booking: %v", domain.ErrSystem, err)
		}

		if booking.TimeSlotID != nil {
			if err := uc.slots.Release(txCtx, *booking.TimeSlotID, now); err != nil {
				return err
			}
		}

		return uc.payments.Close(txCtx, booking.ID, domain.PaymentCancelled, now)
	})
	if err != nil {
		return nil, err
	}

	booking.Status = domain.StatusCancelled
	booking.CancellationReason = &reason
	booking.CancelledAt = &now
	booking.UpdatedAt = now

	uc.publisher.Publish(ctx, domain.NewEvent(domain.EventBookingCancelled, booking, now, map[string]interface{}{
		"from":       string(from),
		"reason":     reason,
		"timeSlotId": booking.TimeSlotID,
	}))

	uc.logger.Info("CancelBooking: booking id=%d cancelled, slot released", booking.ID)
	return &Response{
		BookingID:   booking.ID,
		Status:      string(booking.Status),
		Reason:      reason,
		CancelledAt: now,
	}, nil
}
