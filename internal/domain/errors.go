package domain

import "errors"

// Error taxonomy shared by services, use cases and transport.
// Lower layers wrap these with fmt.Errorf("%w: ...") to add context.
var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrNotFound                 = errors.New("not found")
	ErrAccessDenied             = errors.New("access denied")
	ErrSlotUnavailable          = errors.New("slot unavailable")
	ErrCouponInvalid            = errors.New("coupon invalid")
	ErrBookingExpired           = errors.New("booking expired")
	ErrInvalidStateTransition   = errors.New("invalid state transition")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrPaymentInProgress        = errors.New("payment in progress")
	ErrGateway                  = errors.New("payment gateway error")
	ErrSystem                   = errors.New("system error")
)

// IsBusinessError reports whether err is an expected rule violation rather than a failure.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		ErrNotFound,
		ErrAccessDenied,
		ErrSlotUnavailable,
		ErrCouponInvalid,
		ErrBookingExpired,
		ErrInvalidStateTransition,
		ErrCancellationWindowClosed,
		ErrPaymentInProgress,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
