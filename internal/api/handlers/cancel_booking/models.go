package cancel_booking

import (
	"time"

	cancelBooking "github.com/m04kA/SMC-CourtBookingService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model, тело необязательно
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	BookingID          int64  `json:"bookingId"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellationReason"`
	CancelledAt        string `json:"cancelledAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(userID, bookingID int64) *cancelBooking.Request {
	return &cancelBooking.Request{
		UserID:    userID,
		BookingID: bookingID,
		Reason:    r.CancellationReason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		BookingID:          resp.BookingID,
		Status:             resp.Status,
		CancellationReason: resp.Reason,
		CancelledAt:        resp.CancelledAt.Format(time.RFC3339),
	}
}
