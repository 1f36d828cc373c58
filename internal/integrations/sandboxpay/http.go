package sandboxpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Notifier доставляет ID события так же, как это сделал бы webhook реального шлюза
type Notifier func(ctx context.Context, eventID string) error

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

type sessionView struct {
	SessionID   string    `json:"sessionId"`
	BookingID   int64     `json:"bookingId"`
	PaymentID   int64     `json:"paymentId"`
	AmountMinor int64     `json:"amountMinor"`
	Currency    string    `json:"currency"`
	LineItem    string    `json:"lineItem"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type eventView struct {
	EventID string `json:"eventId"`
}

// Session возвращает запрос, по которому создана сессия
func (g *Gateway) Session(sessionID string) (domain.CheckoutRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	req, ok := g.sessions[sessionID]
	return req, ok
}

// Register монтирует страницу оплаты sandbox-шлюза на router:
//
//	GET  /checkout/{sessionId}          данные сессии
//	POST /checkout/{sessionId}/complete успешная оплата
//	POST /checkout/{sessionId}/decline  отказ, ?reason=
//
// После complete и decline событие сразу передается в notify.
func (g *Gateway) Register(router *mux.Router, notify Notifier, logger Logger) {
	router.HandleFunc("/checkout/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionId"]
		req, ok := g.Session(sessionID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": ErrSessionNotFound.Error()})
			return
		}
		writeJSON(w, http.StatusOK, sessionView{
			SessionID:   sessionID,
			BookingID:   req.BookingID,
			PaymentID:   req.PaymentID,
			AmountMinor: req.AmountMinor,
			Currency:    req.Currency,
			LineItem:    req.LineItem,
			ExpiresAt:   req.ExpiresAt,
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/checkout/{sessionId}/complete", func(w http.ResponseWriter, r *http.Request) {
		g.settle(w, r, notify, logger, g.Complete)
	}).Methods(http.MethodPost)

	router.HandleFunc("/checkout/{sessionId}/decline", func(w http.ResponseWriter, r *http.Request) {
		reason := r.URL.Query().Get("reason")
		if reason == "" {
			reason = "payment_rejected"
		}
		g.settle(w, r, notify, logger, func(sessionID string) (string, error) {
			return g.Decline(sessionID, reason)
		})
	}).Methods(http.MethodPost)
}

func (g *Gateway) settle(w http.ResponseWriter, r *http.Request, notify Notifier, logger Logger, emit func(string) (string, error)) {
	sessionID := mux.Vars(r)["sessionId"]

	eventID, err := emit(sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	logger.Info("sandbox: session=%s produced event=%s", sessionID, eventID)

	// Настоящий шлюз повторил бы webhook позже, здесь достаточно записать ошибку
	if err := notify(r.Context(), eventID); err != nil {
		logger.Warn("sandbox: webhook for event=%s failed: %v", eventID, err)
	}
	writeJSON(w, http.StatusOK, eventView{EventID: eventID})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
