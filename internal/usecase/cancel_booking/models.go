package cancel_booking

import "time"

// DefaultReason причина отмены, если пользователь ее не указал
const DefaultReason = "Cancelled by user"

// Request модель запроса на отмену бронирования
type Request struct {
	UserID    int64   // ID пользователя
	BookingID int64   // ID бронирования
	Reason    *string // Причина отмены (опционально)
}

// Response модель ответа на отмену
type Response struct {
	BookingID   int64
	Status      string
	Reason      string
	CancelledAt time.Time
}
