package define_time_slots

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

func newUseCase(env *usecasetest.Env) *UseCase {
	return NewUseCase(env.Slots, env.Logger).WithTimeProvider(env.Clock)
}

func TestDefineTimeSlots_ReplacesFreeSlots(t *testing.T) {
	env := usecasetest.New(t)
	date := usecasetest.SlotDate()
	env.SeedSlot(t, "06:00", "07:00")
	env.SeedSlot(t, "07:00", "08:00")

	peak := decimal.NewFromInt(1500)
	resp, err := newUseCase(env).Execute(context.Background(), &Request{
		OwnerID: env.Fixture.OwnerID,
		CourtID: env.Fixture.CourtID,
		Date:    date,
		Slots: []SlotInput{
			{StartTime: "19:00", EndTime: "21:00", Price: &peak},
			{StartTime: "08:00", EndTime: "09:30"},
			{StartTime: "09:30", EndTime: "11:00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.SlotsCreated)

	stored, err := env.SlotRepo.ListByCourtAndDate(context.Background(), env.Fixture.CourtID, date)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, types.TimeString("08:00"), stored[0].StartTime)
	assert.False(t, stored[0].Price.Valid)
	assert.Equal(t, types.TimeString("19:00"), stored[2].StartTime)
	require.True(t, stored[2].Price.Valid)
	assert.Equal(t, "1500.00", stored[2].Price.Decimal.StringFixed(2))
}

func TestDefineTimeSlots_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		ownerID func(env *usecasetest.Env) int64
		date    types.Date
		slots   []SlotInput
		wantErr error
	}{
		{
			name:    "overlapping ranges",
			slots:   []SlotInput{{StartTime: "10:00", EndTime: "12:00"}, {StartTime: "11:00", EndTime: "13:00"}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "outside operating hours",
			slots:   []SlotInput{{StartTime: "21:00", EndTime: "23:00"}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "end before start",
			slots:   []SlotInput{{StartTime: "12:00", EndTime: "11:00"}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "no slots",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "past date",
			date:    usecasetest.SlotDate().AddDays(-5),
			slots:   []SlotInput{{StartTime: "10:00", EndTime: "11:00"}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "not the owner",
			ownerID: func(*usecasetest.Env) int64 { return usecasetest.BookerID },
			slots:   []SlotInput{{StartTime: "10:00", EndTime: "11:00"}},
			wantErr: domain.ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := usecasetest.New(t)
			existing := env.SeedSlot(t, "06:00", "07:00")

			req := &Request{
				OwnerID: env.Fixture.OwnerID,
				CourtID: env.Fixture.CourtID,
				Date:    usecasetest.SlotDate(),
				Slots:   tt.slots,
			}
			if tt.ownerID != nil {
				req.OwnerID = tt.ownerID(env)
			}
			if !tt.date.IsZero() {
				req.Date = tt.date
			}

			_, err := newUseCase(env).Execute(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)

			// ничего не записано
			stored, err := env.SlotRepo.ListByCourtAndDate(context.Background(), env.Fixture.CourtID, usecasetest.SlotDate())
			require.NoError(t, err)
			require.Len(t, stored, 1)
			assert.Equal(t, existing, stored[0].ID)
		})
	}
}

func TestDefineTimeSlots_BookedDayIsLocked(t *testing.T) {
	env := usecasetest.New(t)
	env.SeedPending(t, "18:00", "19:00", time.Minute)

	_, err := newUseCase(env).Execute(context.Background(), &Request{
		OwnerID: env.Fixture.OwnerID,
		CourtID: env.Fixture.CourtID,
		Date:    usecasetest.SlotDate(),
		Slots:   []SlotInput{{StartTime: "10:00", EndTime: "11:00"}},
	})
	require.ErrorIs(t, err, domain.ErrSlotUnavailable)
}

func TestDefineTimeSlots_KeepsSlotsOfCancelledBookings(t *testing.T) {
	env := usecasetest.New(t)
	ctx := context.Background()
	date := usecasetest.SlotDate()
	cancelled := env.SeedBooking(t, date, "18:00", "19:00", domain.StatusCancelled, usecasetest.Start.Add(-time.Hour))
	env.SeedSlot(t, "06:00", "07:00")

	resp, err := newUseCase(env).Execute(ctx, &Request{
		OwnerID: env.Fixture.OwnerID,
		CourtID: env.Fixture.CourtID,
		Date:    date,
		Slots:   []SlotInput{{StartTime: "08:00", EndTime: "09:00"}, {StartTime: "19:00", EndTime: "20:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.SlotsCreated)

	b := env.Booking(t, cancelled.ID)
	require.NotNil(t, b.TimeSlotID)
	assert.Equal(t, *cancelled.TimeSlotID, *b.TimeSlotID)

	stored, err := env.SlotRepo.ListByCourtAndDate(ctx, env.Fixture.CourtID, date)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, types.TimeString("08:00"), stored[0].StartTime)
	assert.Equal(t, *cancelled.TimeSlotID, stored[1].ID)
	assert.Equal(t, types.TimeString("19:00"), stored[2].StartTime)
}

func TestDefineTimeSlots_OverlapWithCancelledBookingSlot(t *testing.T) {
	env := usecasetest.New(t)
	ctx := context.Background()
	date := usecasetest.SlotDate()
	cancelled := env.SeedBooking(t, date, "18:00", "19:00", domain.StatusCancelled, usecasetest.Start.Add(-time.Hour))
	free := env.SeedSlot(t, "06:00", "07:00")

	_, err := newUseCase(env).Execute(ctx, &Request{
		OwnerID: env.Fixture.OwnerID,
		CourtID: env.Fixture.CourtID,
		Date:    date,
		Slots:   []SlotInput{{StartTime: "08:00", EndTime: "09:00"}, {StartTime: "18:30", EndTime: "19:30"}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// ничего не записано
	stored, err := env.SlotRepo.ListByCourtAndDate(ctx, env.Fixture.CourtID, date)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, free, stored[0].ID)
	assert.Equal(t, *cancelled.TimeSlotID, stored[1].ID)
}
