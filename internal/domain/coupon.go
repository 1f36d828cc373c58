package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType is how a coupon value is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFlat       DiscountType = "FLAT"
)

// Coupon is a shared discount code
type Coupon struct {
	ID                int64
	Code              string
	ValidFrom         time.Time
	ValidUntil        time.Time
	UsageLimit        *int
	CurrentUsage      int
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	MinBookingAmount  decimal.NullDecimal
	MaxDiscountAmount decimal.NullDecimal
	IsActive          bool
}

// BookingCoupon records the discount applied to a booking
type BookingCoupon struct {
	ID             int64
	BookingID      int64
	CouponID       int64
	CouponCode     string
	DiscountAmount decimal.Decimal
	CreatedAt      time.Time
}
