package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	FacilityID      int64   `json:"facilityId"`
	CourtID         int64   `json:"courtId"`
	TimeSlotID      int64   `json:"timeSlotId"`
	CouponCode      *string `json:"couponCode,omitempty"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	BookingID       int64  `json:"bookingId"`
	Status          string `json:"status"`
	FinalAmount     string `json:"finalAmount"`
	DiscountAmount  string `json:"discountAmount"`
	Currency        string `json:"currency"`
	PaymentDeadline string `json:"paymentDeadline"`
	CheckoutURL     string `json:"checkoutUrl"`
	SessionID       string `json:"sessionId"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) *createBooking.Request {
	return &createBooking.Request{
		UserID:          userID,
		FacilityID:      r.FacilityID,
		CourtID:         r.CourtID,
		TimeSlotID:      r.TimeSlotID,
		CouponCode:      r.CouponCode,
		SpecialRequests: r.SpecialRequests,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		BookingID:       resp.BookingID,
		Status:          resp.Status,
		FinalAmount:     resp.FinalAmount.StringFixed(2),
		DiscountAmount:  resp.DiscountAmount.StringFixed(2),
		Currency:        resp.Currency,
		PaymentDeadline: resp.PaymentDeadline.Format(time.RFC3339),
		CheckoutURL:     resp.CheckoutURL,
		SessionID:       resp.SessionID,
	}
}
