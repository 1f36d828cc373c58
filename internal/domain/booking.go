package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusNoShow    BookingStatus = "NO_SHOW"
)

// IsValid returns true for a known status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal returns true if no further transition is permitted
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// Booking is a user's claim on a court time slot together with its price breakdown
type Booking struct {
	ID         int64
	UserID     int64
	FacilityID int64
	CourtID    int64
	TimeSlotID *int64 // nil only if the slot row was removed outside the service

	BookingDate types.Date
	StartTime   types.TimeString
	EndTime     types.TimeString

	TotalHours     decimal.Decimal
	PricePerHour   decimal.Decimal
	TotalAmount    decimal.Decimal
	PlatformFee    decimal.Decimal
	Tax            decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal

	Status             BookingStatus
	SpecialRequests    *string
	CancellationReason *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time
	NoShowAt    *time.Time
}

// IsActive returns true if the booking holds its time slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsExpiredHold returns true if the booking was cancelled because its payment window elapsed
func (b *Booking) IsExpiredHold() bool {
	return b.Status == StatusCancelled &&
		b.CancellationReason != nil &&
		*b.CancellationReason == ReasonPaymentWindowExpired
}

// BookingFilter filters bookings of a facility or a user
type BookingFilter struct {
	UserID          *int64
	FacilityID      *int64
	CourtID         *int64
	StartDate       *types.Date
	EndDate         *types.Date
	Status          *BookingStatus
	IncludeInactive bool
}
