package timeslots

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

func TestGenerateDrafts(t *testing.T) {
	tests := []struct {
		name      string
		hours     *domain.OperatingHours
		duration  int
		wantStart []types.TimeString
		wantLast  types.TimeString
	}{
		{
			name:      "whole hours",
			hours:     &domain.OperatingHours{OpenTime: "06:00", CloseTime: "09:00"},
			duration:  60,
			wantStart: []types.TimeString{"06:00", "07:00", "08:00"},
			wantLast:  "09:00",
		},
		{
			name:      "partial last slot is dropped",
			hours:     &domain.OperatingHours{OpenTime: "06:00", CloseTime: "08:30"},
			duration:  60,
			wantStart: []types.TimeString{"06:00", "07:00"},
			wantLast:  "08:00",
		},
		{
			name:      "until midnight",
			hours:     &domain.OperatingHours{OpenTime: "22:00", CloseTime: "24:00"},
			duration:  60,
			wantStart: []types.TimeString{"22:00", "23:00"},
			wantLast:  "24:00",
		},
		{
			name:      "closed",
			hours:     &domain.OperatingHours{OpenTime: "06:00", CloseTime: "22:00", IsClosed: true},
			duration:  60,
			wantStart: []types.TimeString{},
		},
		{
			name:      "no schedule",
			hours:     nil,
			duration:  60,
			wantStart: []types.TimeString{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts, err := generateDrafts(tt.hours, tt.duration)
			require.NoError(t, err)

			starts := make([]types.TimeString, len(drafts))
			for i, d := range drafts {
				starts[i] = d.StartTime
				assert.Equal(t, tt.duration, d.StartTime.MinutesUntil(d.EndTime))
			}
			assert.Equal(t, tt.wantStart, starts)
			if len(drafts) > 0 {
				assert.Equal(t, tt.wantLast, drafts[len(drafts)-1].EndTime)
			}
		})
	}
}

func TestValidateDrafts(t *testing.T) {
	hours := &domain.OperatingHours{OpenTime: "06:00", CloseTime: "22:00"}

	tests := []struct {
		name    string
		drafts  []domain.SlotDraft
		hours   *domain.OperatingHours
		wantErr bool
	}{
		{
			name: "adjacent slots",
			drafts: []domain.SlotDraft{
				{StartTime: "08:00", EndTime: "09:00"},
				{StartTime: "06:00", EndTime: "08:00"},
			},
			hours: hours,
		},
		{
			name: "overlapping slots",
			drafts: []domain.SlotDraft{
				{StartTime: "08:00", EndTime: "09:30"},
				{StartTime: "09:00", EndTime: "10:00"},
			},
			hours:   hours,
			wantErr: true,
		},
		{
			name:    "end before start",
			drafts:  []domain.SlotDraft{{StartTime: "10:00", EndTime: "09:00"}},
			hours:   hours,
			wantErr: true,
		},
		{
			name:    "outside operating hours",
			drafts:  []domain.SlotDraft{{StartTime: "21:30", EndTime: "22:30"}},
			hours:   hours,
			wantErr: true,
		},
		{
			name:    "bad time format",
			drafts:  []domain.SlotDraft{{StartTime: "9am", EndTime: "10:00"}},
			hours:   hours,
			wantErr: true,
		},
		{
			name: "negative price",
			drafts: []domain.SlotDraft{
				{StartTime: "09:00", EndTime: "10:00", Price: decimal.NewNullDecimal(decimal.NewFromInt(-1))},
			},
			hours:   hours,
			wantErr: true,
		},
		{
			name:    "closed day",
			drafts:  []domain.SlotDraft{{StartTime: "09:00", EndTime: "10:00"}},
			hours:   &domain.OperatingHours{IsClosed: true},
			wantErr: true,
		},
		{
			name:    "empty",
			drafts:  nil,
			hours:   hours,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted, err := validateDrafts(tt.drafts, tt.hours)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			for i := 1; i < len(sorted); i++ {
				assert.True(t, sorted[i-1].StartTime.IsBefore(sorted[i].StartTime))
			}
		})
	}
}

func TestDropStarted(t *testing.T) {
	slots := []*domain.TimeSlot{
		{StartTime: "09:00"},
		{StartTime: "10:00"},
		{StartTime: "11:00"},
	}

	left := dropStarted(slots, "10:00")
	require.Len(t, left, 1)
	assert.Equal(t, types.TimeString("11:00"), left[0].StartTime)
}

func TestCheckAgainstKept(t *testing.T) {
	kept := []*domain.TimeSlot{{StartTime: "10:00", EndTime: "11:00"}}

	tests := []struct {
		name    string
		draft   domain.SlotDraft
		wantErr bool
	}{
		{name: "ends at kept start", draft: domain.SlotDraft{StartTime: "09:00", EndTime: "10:00"}},
		{name: "starts at kept end", draft: domain.SlotDraft{StartTime: "11:00", EndTime: "12:00"}},
		{name: "same range", draft: domain.SlotDraft{StartTime: "10:00", EndTime: "11:00"}, wantErr: true},
		{name: "partial overlap", draft: domain.SlotDraft{StartTime: "10:30", EndTime: "11:30"}, wantErr: true},
		{name: "covers kept", draft: domain.SlotDraft{StartTime: "09:00", EndTime: "12:00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAgainstKept([]domain.SlotDraft{tt.draft}, kept)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}
