package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", domain.ErrInvalidInput)
	}

	if req.FacilityID <= 0 {
		return fmt.Errorf("%w: facilityId must be positive", domain.ErrInvalidInput)
	}

	if req.CourtID <= 0 {
		return fmt.Errorf("%w: courtId must be positive", domain.ErrInvalidInput)
	}

	if req.TimeSlotID <= 0 {
		return fmt.Errorf("%w: timeSlotId must be positive", domain.ErrInvalidInput)
	}

	if req.CouponCode != nil {
		code := strings.TrimSpace(*req.CouponCode)
		if code == "" {
			return fmt.Errorf("%w: couponCode must not be empty", domain.ErrInvalidInput)
		}
		if len(code) > domain.MaxCouponCodeLength {
			return fmt.Errorf("%w: couponCode is longer than %d characters", domain.ErrInvalidInput, domain.MaxCouponCodeLength)
		}
		req.CouponCode = &code
	}

	if req.SpecialRequests != nil && len(*req.SpecialRequests) > domain.MaxSpecialRequestsLength {
		return fmt.Errorf("%w: specialRequests is longer than %d characters", domain.ErrInvalidInput, domain.MaxSpecialRequestsLength)
	}

	return nil
}

// validateSlotOwnership проверяет, что слот принадлежит указанным корту и площадке
func validateSlotOwnership(details *domain.SlotDetails, req *Request) error {
	if details.Court.ID != req.CourtID || details.Facility.ID != req.FacilityID {
		return fmt.Errorf("%w: time slot %d does not belong to court %d of facility %d",
			domain.ErrInvalidInput, req.TimeSlotID, req.CourtID, req.FacilityID)
	}

	if !details.Facility.IsActive || !details.Court.IsActive {
		return fmt.Errorf("%w: court %d is not accepting bookings", domain.ErrSlotUnavailable, req.CourtID)
	}

	return nil
}
