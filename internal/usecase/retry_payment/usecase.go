package retry_payment

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
)

// UseCase use case для повторной попытки оплаты бронирования
type UseCase struct {
	bookings     BookingService
	slots        SlotManager
	payments     PaymentService
	txManager    TransactionManager
	policy       domain.BookingPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookings BookingService,
	slots SlotManager,
	payments PaymentService,
	txManager TransactionManager,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookings:     bookings,
		slots:        slots,
		payments:     payments,
		txManager:    txManager,
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

// Execute открывает новую сессию оплаты для PENDING бронирования
// Если окно оплаты истекло, бронирование отменяется и возвращается domain.ErrBookingExpired,
// в том числе при каждом следующем вызове.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RetryPayment: user=%d, booking=%d", req.UserID, req.BookingID)

	// 1. Валидация входных данных
	if req.UserID <= 0 || req.BookingID <= 0 {
		uc.logger.Warn("RetryPayment: invalid ids user=%d, booking=%d", req.UserID, req.BookingID)
		return nil, fmt.Errorf("%w: userID and bookingId must be positive", domain.ErrInvalidInput)
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Загружаем бронирование и проверяем автора
	booking, err := uc.bookings.Get(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != req.UserID {
		uc.logger.Warn("RetryPayment: user=%d is not the author of booking id=%d", req.UserID, req.BookingID)
		return nil, fmt.Errorf("%w: booking %d", domain.ErrAccessDenied, req.BookingID)
	}

	// 4. Истекшее окно оплаты отменяет бронирование
	if err := uc.bookings.ExpireIfElapsed(ctx, booking, now, bookings.TriggerLazy); err != nil {
		return nil, err
	}

	if booking.Status != domain.StatusPending {
		uc.logger.Warn("RetryPayment: booking id=%d is %s", booking.ID, booking.Status)
		return nil, fmt.Errorf("%w: cannot pay for booking in status %s", domain.ErrInvalidStateTransition, booking.Status)
	}

	// 5. Слот должен по-прежнему удерживаться этим бронированием
	if booking.TimeSlotID == nil {
		uc.logger.Warn("RetryPayment: booking id=%d has no time slot", booking.ID)
		return nil, fmt.Errorf("%w: booking %d has no time slot", domain.ErrSlotUnavailable, booking.ID)
	}

	details, err := uc.slots.Lookup(ctx, *booking.TimeSlotID)
	if err != nil {
		return nil, err
	}

	if !details.Slot.IsBooked || details.Slot.IsBlocked {
		uc.logger.Warn("RetryPayment: slot id=%d of booking id=%d is no longer held (booked=%t, blocked=%t)",
			details.Slot.ID, booking.ID, details.Slot.IsBooked, details.Slot.IsBlocked)
		return nil, fmt.Errorf("%w: time slot %d", domain.ErrSlotUnavailable, details.Slot.ID)
	}

	// 6. Переоткрываем FAILED платеж или создаем новый
	var payment *domain.Payment
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := uc.bookings.Get(txCtx, booking.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.StatusPending {
			uc.logger.Warn("RetryPayment: booking id=%d changed to %s concurrently", booking.ID, current.Status)
			if current.IsExpiredHold() {
				return fmt.Errorf("%w: booking %d", domain.ErrBookingExpired, booking.ID)
			}
			return fmt.Errorf("%w: booking %d is %s", domain.ErrInvalidStateTransition, booking.ID, current.Status)
		}

		payment, err = uc.payments.Claim(txCtx, current, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &Response{
		BookingID:       booking.ID,
		PaymentID:       payment.ID,
		FinalAmount:     payment.FinalAmount,
		Currency:        payment.Currency,
		PaymentDeadline: uc.policy.PaymentDeadline(booking),
	}

	// 7. Открываем сессию оплаты вне транзакции
	session, err := uc.payments.StartSession(ctx, booking, payment, details.Describe(), now)
	if err != nil {
		return resp, err
	}

	resp.CheckoutURL = session.CheckoutURL
	resp.SessionID = session.SessionID

	uc.logger.Info("RetryPayment: booking id=%d got session=%s", booking.ID, session.SessionID)
	return resp, nil
}
