package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

const (
	route = "POST /bookings"

	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		// Бронирование создано и держит слот, клиенту нужен его ID для повторной оплаты
		if errors.Is(err, domain.ErrGateway) && resp != nil {
			handlers.RespondGatewayError(w, r, h.logger, route, resp.BookingID, err)
			return
		}
		handlers.RespondDomainError(w, r, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Booking created: booking_id=%d, user_id=%d, slot_id=%d",
		route, resp.BookingID, userID, req.TimeSlotID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(resp))
}
