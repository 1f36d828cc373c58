package retry_payment

import (
	"time"

	retryPayment "github.com/m04kA/SMC-CourtBookingService/internal/usecase/retry_payment"
)

// RetryPaymentResponse HTTP response model
type RetryPaymentResponse struct {
	BookingID       int64  `json:"bookingId"`
	PaymentID       int64  `json:"paymentId"`
	FinalAmount     string `json:"finalAmount"`
	Currency        string `json:"currency"`
	PaymentDeadline string `json:"paymentDeadline"`
	CheckoutURL     string `json:"checkoutUrl"`
	SessionID       string `json:"sessionId"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *retryPayment.Response) *RetryPaymentResponse {
	return &RetryPaymentResponse{
		BookingID:       resp.BookingID,
		PaymentID:       resp.PaymentID,
		FinalAmount:     resp.FinalAmount.StringFixed(2),
		Currency:        resp.Currency,
		PaymentDeadline: resp.PaymentDeadline.Format(time.RFC3339),
		CheckoutURL:     resp.CheckoutURL,
		SessionID:       resp.SessionID,
	}
}
