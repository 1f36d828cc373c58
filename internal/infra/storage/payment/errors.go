package payment

import "errors"

var (
	// ErrPaymentNotFound возвращается, когда платеж не найден
	ErrPaymentNotFound = errors.New("payment.repository: payment not found")

	// ErrOpenPaymentExists возвращается, когда у бронирования уже есть открытый платеж
	ErrOpenPaymentExists = errors.New("payment.repository: open payment already exists")

	// ErrStatusChanged возвращается, когда статус платежа изменился конкурентно
	ErrStatusChanged = errors.New("payment.repository: payment status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("payment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("payment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("payment.repository: failed to scan row")
)
