// Package sandboxpay in-memory платежный шлюз для локального запуска и тестов.
// Сессии не списывают деньги: исход оплаты задается вызовами Complete и Decline.
package sandboxpay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrEventNotFound возвращается для неизвестного идентификатора события
	ErrEventNotFound = errors.New("sandboxpay: event not found")

	// ErrSessionNotFound возвращается для неизвестной сессии
	ErrSessionNotFound = errors.New("sandboxpay: session not found")
)

// Gateway реализует порт платежного шлюза в памяти
type Gateway struct {
	baseURL string

	mu       sync.Mutex
	failWith error
	requests []domain.CheckoutRequest
	sessions map[string]domain.CheckoutRequest
	events   map[string]domain.GatewayEvent
}

// New создает sandbox-шлюз; baseURL используется для построения checkout-ссылок
func New(baseURL string) *Gateway {
	return &Gateway{
		baseURL:  baseURL,
		sessions: make(map[string]domain.CheckoutRequest),
		events:   make(map[string]domain.GatewayEvent),
	}
}

// CreateCheckoutSession регистрирует сессию и возвращает ссылку на оплату
func (g *Gateway) CreateCheckoutSession(_ context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.failWith != nil {
		return nil, g.failWith
	}
	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("sandboxpay: invalid amount %d", req.AmountMinor)
	}

	sessionID := "sess_" + uuid.NewString()
	g.sessions[sessionID] = req

	return &domain.CheckoutSession{
		SessionID:   sessionID,
		CheckoutURL: fmt.Sprintf("%s/checkout/%s", g.baseURL, sessionID),
	}, nil
}

// FetchEvent возвращает ранее зарегистрированное событие
func (g *Gateway) FetchEvent(_ context.Context, eventID string) (*domain.GatewayEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	event, ok := g.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return &event, nil
}

// FailSessions заставляет все следующие CreateCheckoutSession возвращать err; nil снимает сбой
func (g *Gateway) FailSessions(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failWith = err
}

// Complete имитирует успешную оплату сессии и возвращает идентификатор события
func (g *Gateway) Complete(sessionID string) (string, error) {
	return g.addEvent(sessionID, domain.GatewayPaymentSucceeded, "")
}

// Decline имитирует отказ в оплате
func (g *Gateway) Decline(sessionID, reason string) (string, error) {
	return g.addEvent(sessionID, domain.GatewayPaymentFailed, reason)
}

// Requests возвращает все полученные запросы на создание сессии
func (g *Gateway) Requests() []domain.CheckoutRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.CheckoutRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

func (g *Gateway) addEvent(sessionID string, kind domain.GatewayEventKind, reason string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	req, ok := g.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	bookingID, _ := strconv.ParseInt(req.Metadata["booking_id"], 10, 64)
	eventID := "evnt_" + uuid.NewString()
	g.events[eventID] = domain.GatewayEvent{
		EventID:       eventID,
		SessionID:     sessionID,
		BookingID:     bookingID,
		Kind:          kind,
		FailureReason: reason,
	}
	return eventID, nil
}
