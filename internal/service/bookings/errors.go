package bookings

// Источники истечения бронирования, используются как метка метрики
const (
	TriggerLazy    = "lazy"
	TriggerSweeper = "sweeper"
)
