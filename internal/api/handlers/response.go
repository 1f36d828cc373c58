// Package handlers общие хелперы HTTP-обработчиков: разбор тела, JSON-ответы, маппинг доменных ошибок.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Коды ошибок API
const (
	CodeInvalidInput             = "INVALID_INPUT"
	CodeUnauthorized             = "UNAUTHORIZED"
	CodeNotFound                 = "NOT_FOUND"
	CodeForbidden                = "FORBIDDEN"
	CodeSlotUnavailable          = "SLOT_UNAVAILABLE"
	CodeCouponInvalid            = "COUPON_INVALID"
	CodeBookingExpired           = "BOOKING_EXPIRED"
	CodeInvalidStateTransition   = "INVALID_STATE_TRANSITION"
	CodeCancellationWindowClosed = "CANCELLATION_WINDOW_CLOSED"
	CodePaymentInProgress        = "PAYMENT_IN_PROGRESS"
	CodeGatewayError             = "GATEWAY_ERROR"
	CodeSystemError              = "SYSTEM_ERROR"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgGatewayError  = "платежный шлюз недоступен, повторите оплату позже"
	maxBodyBytes     = 1 << 20
)

// ErrEmptyBody возвращается DecodeJSON для запроса без тела
var ErrEmptyBody = errors.New("empty request body")

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	BookingID *int64 `json:"bookingId,omitempty"` // бронирование создано, но оплату начать не удалось
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrAccessDenied, http.StatusForbidden, CodeForbidden},
	{domain.ErrSlotUnavailable, http.StatusConflict, CodeSlotUnavailable},
	{domain.ErrCouponInvalid, http.StatusUnprocessableEntity, CodeCouponInvalid},
	{domain.ErrBookingExpired, http.StatusGone, CodeBookingExpired},
	{domain.ErrInvalidStateTransition, http.StatusConflict, CodeInvalidStateTransition},
	{domain.ErrCancellationWindowClosed, http.StatusConflict, CodeCancellationWindowClosed},
	{domain.ErrPaymentInProgress, http.StatusConflict, CodePaymentInProgress},
	{domain.ErrGateway, http.StatusBadGateway, CodeGatewayError},
}

// ErrorStatus возвращает HTTP статус и код API для ошибки.
// Неизвестные ошибки и ErrSystem дают 500.
func ErrorStatus(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeSystemError
}

// RespondDomainError логирует ошибку use case и отвечает по таксономии ошибок.
// Бизнес-ошибки логируются как warn, остальные как error; для статусов 5xx наружу уходит только фиксированный текст.
func RespondDomainError(w http.ResponseWriter, r *http.Request, logger Logger, route string, err error) {
	status, code := ErrorStatus(err)
	requestID := middleware.GetRequestID(r.Context())

	if status >= http.StatusInternalServerError {
		logger.Error("%s - %s: %v (request_id=%s)", route, code, err, requestID)
		RespondError(w, status, code, serverErrorMessage(status))
		return
	}

	logger.Warn("%s - %s: %v (request_id=%s)", route, code, err, requestID)
	RespondError(w, status, code, err.Error())
}

// RespondGatewayError отвечает 502 с ID созданного бронирования, чтобы клиент мог повторить оплату
func RespondGatewayError(w http.ResponseWriter, r *http.Request, logger Logger, route string, bookingID int64, err error) {
	logger.Error("%s - %s: booking_id=%d: %v (request_id=%s)",
		route, CodeGatewayError, bookingID, err, middleware.GetRequestID(r.Context()))
	RespondJSON(w, http.StatusBadGateway, ErrorResponse{
		Code:      CodeGatewayError,
		Message:   msgGatewayError,
		BookingID: &bookingID,
	})
}

func serverErrorMessage(status int) string {
	if status == http.StatusBadGateway {
		return msgGatewayError
	}
	return msgInternalError
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ошибку с кодом API
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// RespondBadRequest отправляет 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, CodeInvalidInput, message)
}

// RespondUnauthorized отправляет 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// RespondInternalError отправляет 500 без подробностей
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, CodeSystemError, msgInternalError)
}

// DecodeJSON читает тело запроса; неизвестные поля считаются ошибкой
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// PathID извлекает положительный int64 из переменной маршрута
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}
