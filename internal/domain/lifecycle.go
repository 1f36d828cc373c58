package domain

import (
	"fmt"
	"time"
)

// transitions lists the legal moves of the booking state machine
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusNoShow, StatusCancelled},
}

// CanTransitionTo reports whether the state machine allows s -> next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BookingPolicy holds the time-window guards of the booking lifecycle
type BookingPolicy struct {
	PaymentWindow      time.Duration
	CancellationNotice time.Duration
	Location           *time.Location
}

// DefaultBookingPolicy returns the policy with default windows in UTC
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		PaymentWindow:      DefaultPaymentWindow,
		CancellationNotice: DefaultCancellationNotice,
		Location:           time.UTC,
	}
}

func (p BookingPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Today returns the calendar date of now in the facility time zone
func (p BookingPolicy) Today(now time.Time) time.Time {
	local := now.In(p.location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// StartsAt returns the instant the booked slot begins
func (p BookingPolicy) StartsAt(b *Booking) time.Time {
	return b.StartTime.OnDate(b.BookingDate.Time, p.location())
}

// PaymentDeadline returns the instant the unpaid hold lapses
func (p BookingPolicy) PaymentDeadline(b *Booking) time.Time {
	return b.CreatedAt.Add(p.PaymentWindow)
}

// IsPaymentWindowElapsed reports whether a PENDING booking has outlived its payment window
func (p BookingPolicy) IsPaymentWindowElapsed(b *Booking, now time.Time) bool {
	return now.Sub(b.CreatedAt) > p.PaymentWindow
}

// CheckExpiry guards the system-initiated PENDING -> CANCELLED transition
func (p BookingPolicy) CheckExpiry(b *Booking, now time.Time, hasCompletedPayment bool) error {
	if b.Status != StatusPending {
		return fmt.Errorf("%w: cannot expire booking in status %s", ErrInvalidStateTransition, b.Status)
	}
	if hasCompletedPayment {
		return fmt.Errorf("%w: booking has a completed payment", ErrInvalidStateTransition)
	}
	if !p.IsPaymentWindowElapsed(b, now) {
		return fmt.Errorf("%w: payment window still open until %s",
			ErrInvalidStateTransition, p.PaymentDeadline(b).Format(time.RFC3339))
	}
	return nil
}

// CheckUserCancellation guards the user-initiated {PENDING, CONFIRMED} -> CANCELLED transition
func (p BookingPolicy) CheckUserCancellation(b *Booking, now time.Time) error {
	if !b.Status.CanTransitionTo(StatusCancelled) {
		return fmt.Errorf("%w: cannot cancel booking in status %s", ErrInvalidStateTransition, b.Status)
	}
	cutoff := p.StartsAt(b).Add(-p.CancellationNotice)
	if !now.Before(cutoff) {
		return fmt.Errorf("%w: cancellation allowed until %s",
			ErrCancellationWindowClosed, cutoff.Format(time.RFC3339))
	}
	return nil
}

// CheckConfirmation guards PENDING -> CONFIRMED driven by a gateway confirmation
func CheckConfirmation(b *Booking) error {
	if b.Status != StatusPending {
		return fmt.Errorf("%w: cannot confirm booking in status %s", ErrInvalidStateTransition, b.Status)
	}
	return nil
}

// CheckAttendance guards CONFIRMED -> COMPLETED and CONFIRMED -> NO_SHOW set by the facility owner
func CheckAttendance(b *Booking, target BookingStatus) error {
	if target != StatusCompleted && target != StatusNoShow {
		return fmt.Errorf("%w: status %s cannot be set manually", ErrInvalidInput, target)
	}
	if !b.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, b.Status, target)
	}
	return nil
}
