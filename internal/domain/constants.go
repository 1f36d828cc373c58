package domain

import "time"

// Default configuration values
const (
	DefaultPlatformFeeRate     = "0.03"
	DefaultTaxRate             = "0.18"
	DefaultCurrency            = "INR"
	DefaultPaymentWindow       = 30 * time.Minute
	DefaultCancellationNotice  = 24 * time.Hour
	DefaultSlotDurationMinutes = 60
	DefaultAdvanceBookingDays  = 0 // 0 = unlimited
	DefaultTimezone            = "Asia/Kolkata"
)

// Business validation constants
const (
	MaxSpecialRequestsLength    = 500
	MaxCancellationReasonLength = 500
	MaxCouponCodeLength         = 64
	MaxSlotsPerDay              = 96
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Reasons recorded on system-initiated transitions
const (
	ReasonPaymentWindowExpired = "Payment window expired"
	ReasonUnderMaintenance     = "Under maintenance"
)

// ActiveStatuses statuses that hold a time slot
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// TerminalStatuses statuses from which no transition is permitted
var TerminalStatuses = []BookingStatus{
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}
