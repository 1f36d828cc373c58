package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	paymentRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/payment"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
)

const (
	resultCreated   = "created"
	resultSucceeded = "succeeded"
	resultFailed    = "failed"
	resultIgnored   = "ignored"
	resultLate      = "late"
)

// Orchestrator ведет платежные записи бронирований и сессии оплаты у шлюза
type Orchestrator struct {
	paymentRepo PaymentRepository
	gateway     Gateway
	publisher   EventPublisher
	metrics     Metrics
	config      Config
	logger      Logger
}

// NewOrchestrator создает новый экземпляр платежного оркестратора
func NewOrchestrator(
	paymentRepo PaymentRepository,
	gateway Gateway,
	publisher EventPublisher,
	metrics Metrics,
	config Config,
	logger Logger,
) *Orchestrator {
	if config.Currency == "" {
		config.Currency = domain.DefaultCurrency
	}
	if config.PaymentWindow <= 0 {
		config.PaymentWindow = domain.DefaultPaymentWindow
	}
	return &Orchestrator{
		paymentRepo: paymentRepo,
		gateway:     gateway,
		publisher:   publisher,
		metrics:     metrics,
		config:      config,
		logger:      logger,
	}
}

// Open создает PENDING платеж на всю сумму бронирования
// Вызывается внутри транзакции создания бронирования
func (o *Orchestrator) Open(ctx context.Context, b *domain.Booking, now time.Time) (*domain.Payment, error) {
	p := &domain.Payment{
		BookingID:      b.ID,
		Amount:         b.TotalAmount,
		PlatformFee:    b.PlatformFee,
		Tax:            b.Tax,
		DiscountAmount: b.DiscountAmount,
		FinalAmount:    b.FinalAmount,
		Currency:       o.config.Currency,
		Status:         domain.PaymentPending,
		ExpiresAt:      now.Add(o.config.PaymentWindow),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := o.paymentRepo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrOpenPaymentExists) {
			o.logger.Warn("Open: booking id=%d already has an open payment", b.ID)
			return nil, fmt.Errorf("%w: booking %d", domain.ErrPaymentInProgress, b.ID)
		}
		o.logger.Error("Open: failed to create payment for booking id=%d: %v", b.ID, err)
		return nil, fmt.Errorf("%w: Open - repository error: %v", domain.ErrSystem, err)
	}

	return created, nil
}

// Claim готовит платеж к повторной попытке оплаты
// FAILED платеж переоткрывается, при отсутствии открытого платежа создается новый.
// PENDING или COMPLETED платеж означает, что оплата уже идет.
func (o *Orchestrator) Claim(ctx context.Context, b *domain.Booking, now time.Time) (*domain.Payment, error) {
	latest, err := o.paymentRepo.GetLatestByBooking(ctx, b.ID)
	if err != nil && !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
		o.logger.Error("Claim: failed to get latest payment for booking id=%d: %v", b.ID, err)
		return nil, fmt.Errorf("%w: Claim - repository error: %v", domain.ErrSystem, err)
	}

	if latest == nil {
		return o.Open(ctx, b, now)
	}

	switch latest.Status {
	case domain.PaymentPending, domain.PaymentCompleted:
		o.logger.Warn("Claim: booking id=%d has payment id=%d in status %s", b.ID, latest.ID, latest.Status)
		return nil, fmt.Errorf("%w: payment %d is %s", domain.ErrPaymentInProgress, latest.ID, latest.Status)

	case domain.PaymentFailed:
		expiresAt := now.Add(o.config.PaymentWindow)
		if err := o.paymentRepo.Reopen(ctx, latest.ID, expiresAt, now); err != nil {
			if errors.Is(err, paymentRepo.ErrStatusChanged) {
				o.logger.Warn("Claim: payment id=%d was reopened concurrently", latest.ID)
				return nil, fmt.Errorf("%w: payment %d", domain.ErrPaymentInProgress, latest.ID)
			}
			o.logger.Error("Claim: failed to reopen payment id=%d: %v", latest.ID, err)
			return nil, fmt.Errorf("%w: Claim - repository error: %v", domain.ErrSystem, err)
		}
		latest.Status = domain.PaymentPending
		latest.GatewaySessionID = nil
		latest.CheckoutURL = nil
		latest.FailureReason = nil
		latest.ExpiresAt = expiresAt
		latest.UpdatedAt = now
		o.logger.Info("Claim: reopened failed payment id=%d for booking id=%d", latest.ID, b.ID)
		return latest, nil

	default:
		return o.Open(ctx, b, now)
	}
}

// StartSession открывает сессию оплаты у шлюза
// Вызывается после коммита: при ошибке шлюза платеж помечается FAILED,
// бронирование остается PENDING и может быть оплачено повторно.
func (o *Orchestrator) StartSession(ctx context.Context, b *domain.Booking, p *domain.Payment, lineItem string, now time.Time) (*domain.CheckoutSession, error) {
	req := domain.CheckoutRequest{
		BookingID:   b.ID,
		PaymentID:   p.ID,
		AmountMinor: pricing.ToMinorUnits(p.FinalAmount),
		Currency:    p.Currency,
		LineItem:    lineItem,
		Metadata: map[string]string{
			"booking_id": strconv.FormatInt(b.ID, 10),
			"payment_id": strconv.FormatInt(p.ID, 10),
			"user_id":    strconv.FormatInt(b.UserID, 10),
		},
		ExpiresAt: p.ExpiresAt,
	}

	session, err := o.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		o.logger.Error("StartSession: gateway failed for booking id=%d, payment id=%d: %v", b.ID, p.ID, err)
		o.metrics.IncPaymentSession(resultFailed)

		if markErr := o.paymentRepo.MarkFailed(ctx, p.ID, truncate(err.Error(), domain.MaxCancellationReasonLength), now); markErr != nil {
			o.logger.Error("StartSession: failed to mark payment id=%d as failed: %v", p.ID, markErr)
		}
		o.publisher.Publish(ctx, domain.NewEvent(domain.EventPaymentFailed, b, now, map[string]interface{}{
			"paymentId": p.ID,
			"reason":    "gateway_error",
		}))
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	if err := o.paymentRepo.SetSession(ctx, p.ID, *session, now); err != nil {
		if errors.Is(err, paymentRepo.ErrStatusChanged) {
			o.logger.Warn("StartSession: payment id=%d was closed while opening session", p.ID)
			return nil, fmt.Errorf("%w: booking %d", domain.ErrBookingExpired, b.ID)
		}
		o.logger.Error("StartSession: failed to store session for payment id=%d: %v", p.ID, err)
		return nil, fmt.Errorf("%w: StartSession - repository error: %v", domain.ErrSystem, err)
	}

	o.metrics.IncPaymentSession(resultCreated)
	o.publisher.Publish(ctx, domain.NewEvent(domain.EventPaymentSessionCreated, b, now, map[string]interface{}{
		"paymentId": p.ID,
		"sessionId": session.SessionID,
		"amount":    p.FinalAmount.StringFixed(2),
		"currency":  p.Currency,
	}))

	o.logger.Info("StartSession: session=%s opened for booking id=%d", session.SessionID, b.ID)
	return session, nil
}

// Close закрывает открытые платежи бронирования статусом EXPIRED или CANCELLED
// Вызывается в транзакции вместе с отменой бронирования
func (o *Orchestrator) Close(ctx context.Context, bookingID int64, status domain.PaymentStatus, now time.Time) error {
	closed, err := o.paymentRepo.CloseOpenForBooking(ctx, bookingID, status, now)
	if err != nil {
		o.logger.Error("Close: failed to close payments of booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Close - repository error: %v", domain.ErrSystem, err)
	}
	if closed > 0 {
		o.logger.Info("Close: %d payments of booking id=%d moved to %s", closed, bookingID, status)
	}
	return nil
}

// HasCompleted проверяет наличие успешного платежа
func (o *Orchestrator) HasCompleted(ctx context.Context, bookingID int64) (bool, error) {
	completed, err := o.paymentRepo.HasCompleted(ctx, bookingID)
	if err != nil {
		o.logger.Error("HasCompleted: booking id=%d: %v", bookingID, err)
		return false, fmt.Errorf("%w: HasCompleted - repository error: %v", domain.ErrSystem, err)
	}
	return completed, nil
}

// Latest возвращает последнюю попытку оплаты или nil
func (o *Orchestrator) Latest(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	p, err := o.paymentRepo.GetLatestByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			return nil, nil
		}
		o.logger.Error("Latest: booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Latest - repository error: %v", domain.ErrSystem, err)
	}
	return p, nil
}

// ResolveEvent запрашивает событие у шлюза; содержимому входящего запроса не доверяем
func (o *Orchestrator) ResolveEvent(ctx context.Context, eventID string) (*domain.GatewayEvent, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	event, err := o.gateway.FetchEvent(ctx, eventID)
	if err != nil {
		o.logger.Error("ResolveEvent: failed to fetch event %s: %v", eventID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	return event, nil
}

// Settle применяет итог оплаты к платежу
// Повторная доставка того же события ничего не меняет
func (o *Orchestrator) Settle(ctx context.Context, event *domain.GatewayEvent, now time.Time) (*Settlement, error) {
	p, err := o.paymentRepo.GetBySessionID(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			o.logger.Warn("Settle: no payment for session=%s", event.SessionID)
			return nil, fmt.Errorf("%w: payment for session %s", domain.ErrNotFound, event.SessionID)
		}
		o.logger.Error("Settle: failed to get payment for session=%s: %v", event.SessionID, err)
		return nil, fmt.Errorf("%w: Settle - repository error: %v", domain.ErrSystem, err)
	}

	result := &Settlement{PaymentID: p.ID, BookingID: p.BookingID}

	switch event.Kind {
	case domain.GatewayPaymentSucceeded:
		result.Succeeded = true
		if p.Status == domain.PaymentCompleted {
			o.metrics.IncPaymentConfirmation(resultIgnored)
			return result, nil
		}
		if err := o.paymentRepo.MarkCompleted(ctx, p.ID, now); err != nil {
			if errors.Is(err, paymentRepo.ErrStatusChanged) {
				o.metrics.IncPaymentConfirmation(resultIgnored)
				return result, nil
			}
			o.logger.Error("Settle: failed to complete payment id=%d: %v", p.ID, err)
			return nil, fmt.Errorf("%w: Settle - repository error: %v", domain.ErrSystem, err)
		}
		if p.Status.IsTerminal() {
			// Платеж был закрыт истечением или отменой, возврат средств выполняет провайдер
			o.logger.Warn("Settle: payment id=%d in status %s received a successful charge", p.ID, p.Status)
			o.metrics.IncPaymentConfirmation(resultLate)
			result.Late = true
			result.Changed = true
			return result, nil
		}
		o.metrics.IncPaymentConfirmation(resultSucceeded)
		result.Changed = true

	case domain.GatewayPaymentFailed:
		if p.Status != domain.PaymentPending {
			o.metrics.IncPaymentConfirmation(resultIgnored)
			return result, nil
		}
		reason := event.FailureReason
		if reason == "" {
			reason = "payment failed"
		}
		if err := o.paymentRepo.MarkFailed(ctx, p.ID, truncate(reason, domain.MaxCancellationReasonLength), now); err != nil {
			if errors.Is(err, paymentRepo.ErrStatusChanged) {
				o.metrics.IncPaymentConfirmation(resultIgnored)
				return result, nil
			}
			o.logger.Error("Settle: failed to mark payment id=%d as failed: %v", p.ID, err)
			return nil, fmt.Errorf("%w: Settle - repository error: %v", domain.ErrSystem, err)
		}
		o.metrics.IncPaymentConfirmation(resultFailed)
		result.Changed = true

	default:
		o.metrics.IncPaymentConfirmation(resultIgnored)
		return result, nil
	}

	return result, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
