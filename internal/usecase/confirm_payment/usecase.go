package confirm_payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
)

// UseCase use case для обработки уведомлений платежного шлюза
type UseCase struct {
	payments     PaymentService
	bookings     BookingService
	bookingRepo  BookingRepository
	txManager    TransactionManager
	publisher    EventPublisher
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	payments PaymentService,
	bookings BookingService,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		payments:     payments,
		bookings:     bookings,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		publisher:    publisher,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute применяет событие шлюза
// Успешная оплата: платеж COMPLETED и бронирование CONFIRMED одной транзакцией.
// Отказ: платеж FAILED, бронирование остается PENDING.
// Повторная доставка события ничего не меняет. Оплата отмененного бронирования
// фиксируется как COMPLETED и возвращается вместе с domain.ErrInvalidStateTransition.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	eventID := strings.TrimSpace(req.EventID)
	uc.logger.Info("ConfirmPayment: event=%s", eventID)

	// 1. Запрашиваем событие у шлюза
	event, err := uc.payments.ResolveEvent(ctx, eventID)
	if err != nil {
		if domain.IsBusinessError(err) {
			uc.logger.Warn("ConfirmPayment: %v", err)
		}
		return nil, err
	}

	resp := &Response{EventID: eventID, BookingID: event.BookingID}

	if event.Kind == domain.GatewayPaymentPending {
		uc.logger.Info("ConfirmPayment: event=%s for session=%s is not final", eventID, event.SessionID)
		resp.Outcome = OutcomeIgnored
		return resp, nil
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Платеж и бронирование обновляются одной транзакцией
	var booking *domain.Booking
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		settlement, err := uc.payments.Settle(txCtx, event, now)
		if err != nil {
			return err
		}

		resp.BookingID = settlement.BookingID
		resp.PaymentID = settlement.PaymentID

		booking, err = uc.bookings.Get(txCtx, settlement.BookingID)
		if err != nil {
			return err
		}

		switch {
		case !settlement.Changed:
			resp.Outcome = OutcomeDuplicate
			return nil
		case !settlement.Succeeded:
			resp.Outcome = OutcomeFailed
			return nil
		case settlement.Late:
			resp.Outcome = OutcomeLate
			return nil
		}

		// Платеж мог остаться открытым, только пока бронирование PENDING
		if err := domain.CheckConfirmation(booking); err != nil {
			uc.logger.Warn("ConfirmPayment: booking id=%d: %v", booking.ID, err)
			resp.Outcome = OutcomeLate
			return nil
		}

		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, domain.StatusPending, domain.StatusConfirmed, now); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusChanged) {
				uc.logger.Warn("ConfirmPayment: booking id=%d changed concurrently", booking.ID)
				return fmt.Errorf("%w: booking %d is no longer PENDING", domain.ErrInvalidStateTransition, booking.ID)
			}
			uc.logger.Error("ConfirmPayment: failed to confirm booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to confirm booking: %v", domain.ErrSystem, err)
		}

		booking.Status = domain.StatusConfirmed
		booking.ConfirmedAt = &now
		booking.UpdatedAt = now
		resp.Outcome = OutcomeConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.BookingStatus = string(booking.Status)

	switch resp.Outcome {
	case OutcomeConfirmed:
		uc.publisher.Publish(ctx, domain.NewEvent(domain.EventBookingConfirmed, booking, now, map[string]interface{}{
			"paymentId": resp.PaymentID,
			"eventId":   eventID,
		}))
		uc.logger.Info("ConfirmPayment: booking id=%d confirmed by payment id=%d", booking.ID, resp.PaymentID)

	case OutcomeFailed:
		uc.publisher.Publish(ctx, domain.NewEvent(domain.EventPaymentFailed, booking, now, map[string]interface{}{
			"paymentId": resp.PaymentID,
			"reason":    event.FailureReason,
		}))
		uc.logger.Info("ConfirmPayment: payment id=%d of booking id=%d failed: %s", resp.PaymentID, booking.ID, event.FailureReason)

	case OutcomeLate:
		uc.logger.Warn("ConfirmPayment: payment id=%d completed for booking id=%d in status %s",
			resp.PaymentID, booking.ID, booking.Status)
		return resp, fmt.Errorf("%w: booking %d is %s, payment %d recorded for refund",
			domain.ErrInvalidStateTransition, booking.ID, booking.Status, resp.PaymentID)

	case OutcomeDuplicate:
		uc.logger.Info("ConfirmPayment: event=%s already processed", eventID)
	}

	return resp, nil
}
