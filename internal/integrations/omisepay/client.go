// Package omisepay адаптер платежного шлюза Omise.
// Сессия оплаты = Source + Charge с redirect на authorize_uri, итог приходит событием charge.complete.
package omisepay

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

const (
	eventChargeComplete = "charge.complete"

	chargeSuccessful = "successful"
	chargeFailed     = "failed"
)

// Config параметры подключения к Omise
type Config struct {
	PublicKey  string
	SecretKey  string
	SourceType string // например promptpay или mobile_banking_kbank
	ReturnURI  string
}

// Client реализует порт платежного шлюза поверх omise-go
type Client struct {
	omc    *omise.Client
	config Config
	log    Logger
}

// NewClient создает клиента Omise
func NewClient(config Config, log Logger) (*Client, error) {
	omc, err := omise.NewClient(config.PublicKey, config.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %v", ErrRequest, err)
	}
	if config.SourceType == "" {
		config.SourceType = "promptpay"
	}
	return &Client{omc: omc, config: config, log: log}, nil
}

// CreateCheckoutSession создает source и charge, checkout-ссылкой служит authorize_uri
func (c *Client) CreateCheckoutSession(_ context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	currency := strings.ToLower(req.Currency)

	src := &omise.Source{}
	if err := c.omc.Do(src, &operations.CreateSource{
		Type:     c.config.SourceType,
		Amount:   req.AmountMinor,
		Currency: currency,
	}); err != nil {
		return nil, fmt.Errorf("%w: create source for booking %d: %v", ErrRequest, req.BookingID, err)
	}

	metadata := make(map[string]interface{}, len(req.Metadata))
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	ch := &omise.Charge{}
	if err := c.omc.Do(ch, &operations.CreateCharge{
		Amount:      req.AmountMinor,
		Currency:    currency,
		Source:      src.ID,
		ReturnURI:   c.config.ReturnURI,
		Description: req.LineItem,
		Metadata:    metadata,
	}); err != nil {
		return nil, fmt.Errorf("%w: create charge for booking %d: %v", ErrRequest, req.BookingID, err)
	}

	if string(ch.Status) == chargeFailed {
		return nil, fmt.Errorf("%w: charge %s failed immediately: %s", ErrRequest, ch.ID, failureCode(ch))
	}

	c.log.Info("Omise charge=%s created for booking id=%d, amount=%d %s", ch.ID, req.BookingID, req.AmountMinor, currency)
	return &domain.CheckoutSession{
		SessionID:   ch.ID,
		CheckoutURL: ch.AuthorizeURI,
	}, nil
}

// FetchEvent повторно запрашивает событие у Omise, чтобы не доверять телу webhook
func (c *Client) FetchEvent(_ context.Context, eventID string) (*domain.GatewayEvent, error) {
	ev := &omise.Event{}
	if err := c.omc.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, fmt.Errorf("%w: retrieve event %s: %v", ErrRequest, eventID, err)
	}

	if ev.Key != eventChargeComplete {
		c.log.Info("Omise event %s with key=%s ignored", eventID, ev.Key)
		return &domain.GatewayEvent{EventID: eventID, Kind: domain.GatewayPaymentPending}, nil
	}

	// ev.Data приходит как interface{}, поэтому перекодируем в Charge
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal event data: %v", ErrInvalidEvent, err)
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("%w: unmarshal charge: %v", ErrInvalidEvent, err)
	}

	return chargeToEvent(eventID, &ch), nil
}

func chargeToEvent(eventID string, ch *omise.Charge) *domain.GatewayEvent {
	event := &domain.GatewayEvent{
		EventID:   eventID,
		SessionID: ch.ID,
		Kind:      domain.GatewayPaymentPending,
	}

	if raw, ok := ch.Metadata["booking_id"].(string); ok {
		event.BookingID, _ = strconv.ParseInt(raw, 10, 64)
	}

	switch string(ch.Status) {
	case chargeSuccessful:
		event.Kind = domain.GatewayPaymentSucceeded
	case chargeFailed:
		event.Kind = domain.GatewayPaymentFailed
		event.FailureReason = failureCode(ch)
	}
	return event
}

func failureCode(ch *omise.Charge) string {
	if ch.FailureCode != nil {
		return *ch.FailureCode
	}
	return ""
}
