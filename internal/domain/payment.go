package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment attempt
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentExpired   PaymentStatus = "EXPIRED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// IsTerminal returns true for statuses a payment never leaves
// FAILED is not terminal: a retry reopens the same row
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentExpired || s == PaymentCancelled
}

// Payment is one checkout attempt for a booking
type Payment struct {
	ID               int64
	BookingID        int64
	Amount           decimal.Decimal
	PlatformFee      decimal.Decimal
	Tax              decimal.Decimal
	DiscountAmount   decimal.Decimal
	FinalAmount      decimal.Decimal
	Currency         string
	Status           PaymentStatus
	GatewaySessionID *string
	CheckoutURL      *string
	FailureReason    *string
	ExpiresAt        time.Time
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CheckoutRequest is what the payment gateway needs to open a session
type CheckoutRequest struct {
	BookingID   int64
	PaymentID   int64
	AmountMinor int64
	Currency    string
	LineItem    string
	Metadata    map[string]string
	ExpiresAt   time.Time
}

// CheckoutSession is the gateway's answer to a CheckoutRequest
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// GatewayEventKind is the outcome reported by the gateway
type GatewayEventKind string

const (
	GatewayPaymentSucceeded GatewayEventKind = "succeeded"
	GatewayPaymentFailed    GatewayEventKind = "failed"
	GatewayPaymentPending   GatewayEventKind = "pending"
)

// GatewayEvent is a verified notification about a checkout session
type GatewayEvent struct {
	EventID       string
	SessionID     string
	BookingID     int64
	Kind          GatewayEventKind
	FailureReason string
}
