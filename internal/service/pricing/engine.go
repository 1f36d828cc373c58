package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	hundred        = decimal.NewFromInt(100)
	minutesPerHour = decimal.NewFromInt(60)
)

// Engine чистый расчет стоимости бронирования и скидок
type Engine struct {
	platformFeeRate decimal.Decimal
	taxRate         decimal.Decimal
}

// NewEngine создает движок с заданными ставками (0.03 = 3%)
func NewEngine(platformFeeRate, taxRate decimal.Decimal) *Engine {
	return &Engine{
		platformFeeRate: platformFeeRate,
		taxRate:         taxRate,
	}
}

// Quote стоимость до применения скидки
type Quote struct {
	PricePerHour decimal.Decimal
	Hours        decimal.Decimal
	TotalAmount  decimal.Decimal
	PlatformFee  decimal.Decimal
	Tax          decimal.Decimal
	GrossAmount  decimal.Decimal
}

// Breakdown итоговая стоимость
// FinalAmount = TotalAmount + PlatformFee + Tax - DiscountAmount
type Breakdown struct {
	Quote
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
}

// HoursBetween переводит длительность в минутах в часы
func HoursBetween(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour)
}

// Price считает сумму, сервисный сбор и налог
func (e *Engine) Price(pricePerHour decimal.Decimal, hours decimal.Decimal) (*Quote, error) {
	if !hours.IsPositive() {
		return nil, fmt.Errorf("%w: hours must be positive, got %s", domain.ErrInvalidInput, hours)
	}
	if pricePerHour.IsNegative() {
		return nil, fmt.Errorf("%w: price per hour must not be negative, got %s", domain.ErrInvalidInput, pricePerHour)
	}

	total := pricePerHour.Mul(hours).Round(2)
	fee := total.Mul(e.platformFeeRate).Round(2)
	tax := total.Add(fee).Mul(e.taxRate).Round(2)

	return &Quote{
		PricePerHour: pricePerHour,
		Hours:        hours.Round(2),
		TotalAmount:  total,
		PlatformFee:  fee,
		Tax:          tax,
		GrossAmount:  total.Add(fee).Add(tax),
	}, nil
}

// ApplyCoupon проверяет купон и возвращает размер скидки от totalAmount
func (e *Engine) ApplyCoupon(coupon *domain.Coupon, totalAmount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !coupon.IsActive {
		return decimal.Zero, fmt.Errorf("%w: coupon %s is inactive", domain.ErrCouponInvalid, coupon.Code)
	}
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return decimal.Zero, fmt.Errorf("%w: coupon %s is not valid at %s",
			domain.ErrCouponInvalid, coupon.Code, now.Format(time.RFC3339))
	}
	if coupon.UsageLimit != nil && coupon.CurrentUsage >= *coupon.UsageLimit {
		return decimal.Zero, fmt.Errorf("%w: coupon %s usage limit reached", domain.ErrCouponInvalid, coupon.Code)
	}
	if coupon.MinBookingAmount.Valid && totalAmount.LessThan(coupon.MinBookingAmount.Decimal) {
		return decimal.Zero, fmt.Errorf("%w: booking amount %s is below coupon minimum %s",
			domain.ErrCouponInvalid, totalAmount, coupon.MinBookingAmount.Decimal)
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case domain.DiscountPercentage:
		discount = totalAmount.Mul(coupon.DiscountValue).Div(hundred)
	case domain.DiscountFlat:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown discount type %q", domain.ErrCouponInvalid, coupon.DiscountType)
	}

	if coupon.MaxDiscountAmount.Valid && discount.GreaterThan(coupon.MaxDiscountAmount.Decimal) {
		discount = coupon.MaxDiscountAmount.Decimal
	}
	if discount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative discount", domain.ErrCouponInvalid)
	}

	return discount.Round(2), nil
}

// Finalize вычитает скидку из брутто-суммы
// Скидка, не оставляющая положительной суммы к оплате, считается ошибкой настройки купона
func (e *Engine) Finalize(quote *Quote, discount decimal.Decimal) (*Breakdown, error) {
	final := quote.GrossAmount.Sub(discount)
	if !final.IsPositive() {
		return nil, fmt.Errorf("%w: discount %s leaves nothing to pay on %s",
			domain.ErrCouponInvalid, discount, quote.GrossAmount)
	}

	return &Breakdown{
		Quote:          *quote,
		DiscountAmount: discount,
		FinalAmount:    final,
	}, nil
}

// ToMinorUnits переводит сумму в минимальные единицы валюты (пайсы, центы)
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
