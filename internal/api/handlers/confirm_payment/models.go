package confirm_payment

import (
	confirmPayment "github.com/m04kA/SMC-CourtBookingService/internal/usecase/confirm_payment"
)

// WebhookRequest уведомление шлюза; из тела используется только ID события,
// остальные поля игнорируются и перечитываются у шлюза
type WebhookRequest struct {
	ID string `json:"id"`
}

// WebhookResponse HTTP response model
type WebhookResponse struct {
	EventID       string `json:"eventId"`
	Outcome       string `json:"outcome"`
	BookingID     int64  `json:"bookingId,omitempty"`
	PaymentID     int64  `json:"paymentId,omitempty"`
	BookingStatus string `json:"bookingStatus,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *confirmPayment.Response) *WebhookResponse {
	return &WebhookResponse{
		EventID:       resp.EventID,
		Outcome:       resp.Outcome,
		BookingID:     resp.BookingID,
		PaymentID:     resp.PaymentID,
		BookingStatus: resp.BookingStatus,
	}
}
