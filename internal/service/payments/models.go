package payments

import "time"

// Config параметры платежей
type Config struct {
	Currency      string
	PaymentWindow time.Duration
}

// Settlement результат обработки события шлюза
type Settlement struct {
	PaymentID int64
	BookingID int64
	Succeeded bool
	Changed   bool // false, если событие уже было обработано ранее
	Late      bool // оплата пришла после истечения или отмены
}
