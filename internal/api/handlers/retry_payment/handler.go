package retry_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	retryPayment "github.com/m04kA/SMC-CourtBookingService/internal/usecase/retry_payment"
)

const (
	route = "POST /bookings/{bookingId}/retry-payment"

	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
)

type Handler struct {
	useCase RetryPaymentUseCase
	logger  Logger
}

func NewHandler(useCase RetryPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/retry-payment
// Открывает новую сессию оплаты для неоплаченного бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &retryPayment.Request{UserID: userID, BookingID: bookingID})
	if err != nil {
		if errors.Is(err, domain.ErrGateway) && resp != nil {
			handlers.RespondGatewayError(w, r, h.logger, route, resp.BookingID, err)
			return
		}
		handlers.RespondDomainError(w, r, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Payment session opened: booking_id=%d, payment_id=%d, user_id=%d",
		route, bookingID, resp.PaymentID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
