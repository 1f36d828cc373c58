package omisepay

import "errors"

var (
	// ErrRequest возвращается при ошибке вызова Omise API
	ErrRequest = errors.New("omise: request failed")

	// ErrInvalidEvent возвращается для событий, которые нельзя сопоставить с оплатой
	ErrInvalidEvent = errors.New("omise: invalid event")
)
