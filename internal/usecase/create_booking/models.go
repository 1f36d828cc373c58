package create_booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID          int64   // ID пользователя
	FacilityID      int64   // ID площадки
	CourtID         int64   // ID корта
	TimeSlotID      int64   // ID временного слота
	CouponCode      *string // Код купона (опционально)
	SpecialRequests *string // Пожелания (опционально)
}

// Response модель ответа с созданным бронированием
// При ошибке шлюза возвращается вместе с ошибкой: бронирование создано, оплату можно повторить
type Response struct {
	BookingID       int64
	Status          string
	FinalAmount     decimal.Decimal
	Currency        string
	DiscountAmount  decimal.Decimal
	PaymentDeadline time.Time
	CheckoutURL     string
	SessionID       string
}
