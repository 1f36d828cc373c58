package domain

import "time"

// EventType is the routing key of an audit event
type EventType string

const (
	EventBookingCreated        EventType = "booking.created"
	EventBookingConfirmed      EventType = "booking.confirmed"
	EventBookingCancelled      EventType = "booking.cancelled"
	EventBookingExpired        EventType = "booking.expired"
	EventBookingStatusChanged  EventType = "booking.status_changed"
	EventPaymentSessionCreated EventType = "payment.session_created"
	EventPaymentFailed         EventType = "payment.failed"
)

// Event is a fire-and-forget audit record published after a transaction commits
type Event struct {
	Type       EventType              `json:"event"`
	BookingID  int64                  `json:"bookingId"`
	UserID     int64                  `json:"userId,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// NewEvent builds an event for a booking
func NewEvent(eventType EventType, b *Booking, now time.Time, data map[string]interface{}) Event {
	return Event{
		Type:       eventType,
		BookingID:  b.ID,
		UserID:     b.UserID,
		OccurredAt: now.UTC(),
		Data:       data,
	}
}
