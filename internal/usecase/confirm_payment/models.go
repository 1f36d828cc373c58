package confirm_payment

// Исход обработки события
const (
	OutcomeConfirmed = "confirmed" // платеж завершен, бронирование подтверждено
	OutcomeFailed    = "failed"    // платеж отклонен, бронирование ждет повторной оплаты
	OutcomeDuplicate = "duplicate" // событие уже обработано
	OutcomeIgnored   = "ignored"   // промежуточное событие шлюза
	OutcomeLate      = "late"      // оплата пришла после отмены бронирования
)

// Request модель входящего уведомления шлюза
// Из тела запроса берется только идентификатор события, само событие запрашивается у шлюза
type Request struct {
	EventID string
}

// Response модель результата обработки
type Response struct {
	EventID       string
	Outcome       string
	BookingID     int64
	PaymentID     int64
	BookingStatus string
}
