package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	couponRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/coupon"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
)

// Результаты попытки бронирования для метрики booking_attempts_total
const (
	resultCreated         = "created"
	resultGatewayError    = "gateway_error"
	resultSlotUnavailable = "slot_unavailable"
	resultCouponInvalid   = "coupon_invalid"
	resultRejected        = "rejected"
	resultError           = "error"
)

// UseCase use case для создания бронирования
type UseCase struct {
	slots        SlotManager
	pricing      PricingEngine
	bookingRepo  BookingRepository
	couponRepo   CouponRepository
	payments     PaymentService
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      Metrics
	policy       domain.BookingPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slots SlotManager,
	engine PricingEngine,
	bookingRepo BookingRepository,
	couponRepo CouponRepository,
	payments PaymentService,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		slots:        slots,
		pricing:      engine,
		bookingRepo:  bookingRepo,
		couponRepo:   couponRepo,
		payments:     payments,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
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

// Execute выполняет use case создания бронирования
// Резервирование слота, купон, бронирование и платеж сохраняются одной транзакцией,
// сессия оплаты открывается после коммита.
// При ошибке шлюза возвращает Response с BookingID вместе с ошибкой domain.ErrGateway.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, facility=%d, court=%d, slot=%d",
		req.UserID, req.FacilityID, req.CourtID, req.TimeSlotID)

	resp, err := uc.execute(ctx, req)
	uc.metrics.IncBookingAttempt(attemptResult(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем слот вместе с кортом и площадкой
	details, err := uc.slots.Lookup(ctx, req.TimeSlotID)
	if err != nil {
		return nil, err
	}

	if err := validateSlotOwnership(details, req); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	// 4. Слот еще не начался и попадает в окно бронирования
	if err := uc.slots.CheckBookable(&details.Slot, now); err != nil {
		uc.logger.Warn("CreateBooking: slot id=%d is not bookable: %v", req.TimeSlotID, err)
		return nil, err
	}

	var (
		booking   *domain.Booking
		payment   *domain.Payment
		breakdown *pricing.Breakdown
	)

	// 5. Резервирование, расчет и сохранение одной транзакцией
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 5.1. Атомарно занимаем слот
		if err := uc.slots.Reserve(txCtx, req.TimeSlotID, now); err != nil {
			return err
		}

		// 5.2. Считаем стоимость
		slot := &details.Slot
		quote, err := uc.pricing.Price(slot.PricePerHour(details.Court.PricePerHour), pricing.HoursBetween(slot.DurationMinutes()))
		if err != nil {
			uc.logger.Warn("CreateBooking: pricing failed for slot id=%d: %v", slot.ID, err)
			return err
		}

		// 5.3. Применяем купон
		discount := decimal.Zero
		var coupon *domain.Coupon
		if req.CouponCode != nil {
			coupon, discount, err = uc.redeemCoupon(txCtx, *req.CouponCode, quote.TotalAmount, now)
			if err != nil {
				return err
			}
		}

		breakdown, err = uc.pricing.Finalize(quote, discount)
		if err != nil {
			uc.logger.Warn("CreateBooking: %v", err)
			return err
		}

		// 5.4. Сохраняем бронирование
		booking, err = uc.bookingRepo.Create(txCtx, &domain.Booking{
			UserID:          req.UserID,
			FacilityID:      details.Facility.ID,
			CourtID:         details.Court.ID,
			TimeSlotID:      &slot.ID,
			BookingDate:     slot.SlotDate,
			StartTime:       slot.StartTime,
			EndTime:         slot.EndTime,
			TotalHours:      breakdown.Hours,
			PricePerHour:    breakdown.PricePerHour,
			TotalAmount:     breakdown.TotalAmount,
			PlatformFee:     breakdown.PlatformFee,
			Tax:             breakdown.Tax,
			DiscountAmount:  breakdown.DiscountAmount,
			FinalAmount:     breakdown.FinalAmount,
			Status:          domain.StatusPending,
			SpecialRequests: req.SpecialRequests,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotAlreadyHeld) {
				uc.logger.Warn("CreateBooking: slot id=%d already held by an active booking", slot.ID)
				return fmt.Errorf("%w: time slot %d", domain.ErrSlotUnavailable, slot.ID)
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", domain.ErrSystem, err)
		}

		// 5.5. Фиксируем примененный купон
		if coupon != nil {
			if _, err := uc.couponRepo.CreateBookingCoupon(txCtx, &domain.BookingCoupon{
				BookingID:      booking.ID,
				CouponID:       coupon.ID,
				CouponCode:     coupon.Code,
				DiscountAmount: discount,
				CreatedAt:      now,
			}); err != nil {
				uc.logger.Error("CreateBooking: failed to save coupon of booking id=%d: %v", booking.ID, err)
				return fmt.Errorf("%w: failed to save booking coupon: %v", domain.ErrSystem, err)
			}
		}

		// 5.6. Открываем платеж на полную сумму
		payment, err = uc.payments.Open(txCtx, booking, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: booking id=%d created, final amount=%s", booking.ID, breakdown.FinalAmount.StringFixed(2))
	uc.publisher.Publish(ctx, domain.NewEvent(domain.EventBookingCreated, booking, now, map[string]interface{}{
		"timeSlotId":  req.TimeSlotID,
		"finalAmount": breakdown.FinalAmount.StringFixed(2),
		"couponCode":  req.CouponCode,
	}))

	resp := &Response{
		BookingID:       booking.ID,
		Status:          string(booking.Status),
		FinalAmount:     booking.FinalAmount,
		DiscountAmount:  booking.DiscountAmount,
		Currency:        payment.Currency,
		PaymentDeadline: uc.policy.PaymentDeadline(booking),
	}

	// 6. Открываем сессию оплаты вне транзакции
	session, err := uc.payments.StartSession(ctx, booking, payment, details.Describe(), now)
	if err != nil {
		return resp, err
	}

	resp.CheckoutURL = session.CheckoutURL
	resp.SessionID = session.SessionID
	return resp, nil
}

// redeemCoupon проверяет купон и атомарно увеличивает счетчик использований
func (uc *UseCase) redeemCoupon(ctx context.Context, code string, totalAmount decimal.Decimal, now time.Time) (*domain.Coupon, decimal.Decimal, error) {
	coupon, err := uc.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, couponRepo.ErrCouponNotFound) {
			uc.logger.Warn("CreateBooking: coupon %s not found", code)
			return nil, decimal.Zero, fmt.Errorf("%w: coupon %s does not exist", domain.ErrCouponInvalid, code)
		}
		uc.logger.Error("CreateBooking: failed to get coupon %s: %v", code, err)
		return nil, decimal.Zero, fmt.Errorf("%w: failed to get coupon: %v", domain.ErrSystem, err)
	}

	discount, err := uc.pricing.ApplyCoupon(coupon, totalAmount, now)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, decimal.Zero, err
	}

	// Проверка лимита выше могла устареть, решает условный UPDATE
	if err := uc.couponRepo.IncrementUsage(ctx, coupon.ID); err != nil {
		if errors.Is(err, couponRepo.ErrUsageLimitReached) {
			uc.logger.Warn("CreateBooking: coupon %s usage limit reached", code)
			return nil, decimal.Zero, fmt.Errorf("%w: coupon %s usage limit reached", domain.ErrCouponInvalid, code)
		}
		uc.logger.Error("CreateBooking: failed to increment usage of coupon %s: %v", code, err)
		return nil, decimal.Zero, fmt.Errorf("%w: failed to redeem coupon: %v", domain.ErrSystem, err)
	}

	return coupon, discount, nil
}

func attemptResult(err error) string {
	switch {
	case err == nil:
		return resultCreated
	case errors.Is(err, domain.ErrGateway):
		return resultGatewayError
	case errors.Is(err, domain.ErrSlotUnavailable):
		return resultSlotUnavailable
	case errors.Is(err, domain.ErrCouponInvalid):
		return resultCouponInvalid
	case domain.IsBusinessError(err):
		return resultRejected
	default:
		return resultError
	}
}
