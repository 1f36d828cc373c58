package retry_payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request модель запроса на повторную оплату
type Request struct {
	UserID    int64 // ID пользователя
	BookingID int64 // ID бронирования
}

// Response модель ответа с новой сессией оплаты
// При ошибке шлюза возвращается вместе с ошибкой без CheckoutURL
type Response struct {
	BookingID       int64
	PaymentID       int64
	FinalAmount     decimal.Decimal
	Currency        string
	PaymentDeadline time.Time
	CheckoutURL     string
	SessionID       string
}
