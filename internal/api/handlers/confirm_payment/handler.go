package confirm_payment

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	confirmPayment "github.com/m04kA/SMC-CourtBookingService/internal/usecase/confirm_payment"
)

const (
	route = "POST /payments/webhook"

	msgInvalidRequestBody = "некорректное тело уведомления"
	msgMissingEventID     = "отсутствует ID события"

	maxWebhookBytes = 64 << 10
)

type Handler struct {
	useCase ConfirmPaymentUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/webhook
// Тело не проверяется на подпись: событие всегда перечитывается у шлюза по ID.
// Ошибки 5xx заставляют шлюз повторить доставку; повтор уже обработанного события безопасен.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Шлюз присылает событие целиком, поэтому неизвестные поля допустимы
	var req WebhookRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBytes)).Decode(&req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	eventID := strings.TrimSpace(req.ID)
	if eventID == "" {
		h.logger.Warn("%s - Missing event ID", route)
		handlers.RespondBadRequest(w, msgMissingEventID)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &confirmPayment.Request{EventID: eventID})
	if err != nil {
		handlers.RespondDomainError(w, r, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Event processed: event_id=%s, outcome=%s, booking_id=%d",
		route, eventID, resp.Outcome, resp.BookingID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
