package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Facility is a venue with one or more courts
type Facility struct {
	ID       int64
	OwnerID  int64
	Name     string
	IsActive bool
}

// Court is a bookable physical resource
type Court struct {
	ID           int64
	FacilityID   int64
	Name         string
	PricePerHour decimal.Decimal
	IsActive     bool
}

// OperatingHours is the schedule of a facility for one day of the week
type OperatingHours struct {
	FacilityID int64
	DayOfWeek  time.Weekday
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	IsClosed   bool
}

// Contains reports whether [start, end) lies within opening hours
func (h *OperatingHours) Contains(start, end types.TimeString) bool {
	if h.IsClosed {
		return false
	}
	return !start.IsBefore(h.OpenTime) && !end.IsAfter(h.CloseTime)
}

// Maintenance blocks a court for a date range
type Maintenance struct {
	ID        int64
	CourtID   int64
	StartDate types.Date
	EndDate   types.Date
	Reason    *string
	IsActive  bool
}

// Covers reports whether an active maintenance window includes date
func (m *Maintenance) Covers(date types.Date) bool {
	return m.IsActive && !date.Before(m.StartDate) && !date.After(m.EndDate)
}
