package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// TimeSlot is a bookable interval on one court for one date
type TimeSlot struct {
	ID          int64
	CourtID     int64
	SlotDate    types.Date
	StartTime   types.TimeString
	EndTime     types.TimeString
	Price       decimal.NullDecimal // overrides the court hourly rate when set
	IsBooked    bool
	IsBlocked   bool
	BlockReason *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAvailable returns true if the slot can be reserved
func (s *TimeSlot) IsAvailable() bool {
	return !s.IsBooked && !s.IsBlocked
}

// DurationMinutes returns the slot length
func (s *TimeSlot) DurationMinutes() int {
	return s.StartTime.MinutesUntil(s.EndTime)
}

// PricePerHour returns the slot override or the court rate
func (s *TimeSlot) PricePerHour(courtRate decimal.Decimal) decimal.Decimal {
	if s.Price.Valid {
		return s.Price.Decimal
	}
	return courtRate
}

// SlotDetails is a time slot joined with its court and facility
type SlotDetails struct {
	Slot     TimeSlot
	Court    Court
	Facility Facility
}

// SlotDraft is an owner-supplied slot definition before persistence
type SlotDraft struct {
	StartTime types.TimeString
	EndTime   types.TimeString
	Price     decimal.NullDecimal
}

// Describe returns the checkout line item of the slot
func (d *SlotDetails) Describe() string {
	return fmt.Sprintf("%s, %s: %s %s-%s",
		d.Facility.Name, d.Court.Name, d.Slot.SlotDate, d.Slot.StartTime, d.Slot.EndTime)
}
