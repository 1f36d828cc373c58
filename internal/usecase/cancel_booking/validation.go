package cancel_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// validateRequest валидирует запрос и возвращает итоговую причину отмены
func validateRequest(req *Request) (string, error) {
	if req.UserID <= 0 {
		return "", fmt.Errorf("%w: userID must be positive", domain.ErrInvalidInput)
	}

	if req.BookingID <= 0 {
		return "", fmt.Errorf("%w: bookingId must be positive", domain.ErrInvalidInput)
	}

	if req.Reason == nil {
		return DefaultReason, nil
	}

	reason := strings.TrimSpace(*req.Reason)
	if reason == "" {
		return DefaultReason, nil
	}
	if len(reason) > domain.MaxCancellationReasonLength {
		return "", fmt.Errorf("%w: reason is longer than %d characters", domain.ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return reason, nil
}
