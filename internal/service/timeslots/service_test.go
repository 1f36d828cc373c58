package timeslots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/storagetest"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// 2030-03-14 is a Thursday
var (
	testNow  = time.Date(2030, 3, 14, 10, 30, 0, 0, time.UTC)
	today    = types.NewDate(testNow)
	tomorrow = today.AddDays(1)
)

func newManager(t *testing.T, db *dbmetrics.DB, advanceDays int) *Manager {
	t.Helper()
	return NewManager(
		timeslot.NewRepository(db),
		facility.NewRepository(db),
		txmanager.NewTransactionManager(db),
		Config{
			Policy:              domain.DefaultBookingPolicy(),
			SlotDurationMinutes: 60,
			AdvanceBookingDays:  advanceDays,
		},
		logger.NewNop(),
	)
}

func TestManager_DayScheduleGeneratesOnce(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	m := newManager(t, db, 0)
	ctx := context.Background()

	schedule, err := m.DaySchedule(ctx, fx.CourtID, tomorrow, testNow)
	require.NoError(t, err)
	require.Len(t, schedule.Slots, 16)
	assert.Equal(t, types.TimeString("06:00"), schedule.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("22:00"), schedule.Slots[15].EndTime)
	assert.False(t, schedule.IsClosed)
	assert.NotZero(t, schedule.Slots[0].ID)

	again, err := m.DaySchedule(ctx, fx.CourtID, tomorrow, testNow)
	require.NoError(t, err)
	require.Len(t, again.Slots, 16)
	assert.Equal(t, schedule.Slots[0].ID, again.Slots[0].ID)
}

func TestManager_DayScheduleTodayHidesStartedSlots(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	m := newManager(t, db, 0)
	ctx := context.Background()

	schedule, err := m.DaySchedule(ctx, fx.CourtID, today, testNow)
	require.NoError(t, err)
	require.NotEmpty(t, schedule.Slots)
	assert.Equal(t, types.TimeString("11:00"), schedule.Slots[0].StartTime)

	persisted, err := timeslot.NewRepository(db).ListByCourtAndDate(ctx, fx.CourtID, today)
	require.NoError(t, err)
	assert.Len(t, persisted, 16, "started slots are persisted but hidden")
}

func TestManager_DayScheduleClosedDay(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	storagetest.SeedDayHours(t, db, fx.FacilityID, tomorrow.Weekday(), "06:00", "22:00", true)
	m := newManager(t, db, 0)

	schedule, err := m.DaySchedule(context.Background(), fx.CourtID, tomorrow, testNow)
	require.NoError(t, err)
	assert.True(t, schedule.IsClosed)
	assert.Empty(t, schedule.Slots)
}

func TestManager_DayScheduleUnderMaintenance(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	storagetest.SeedMaintenance(t, db, fx.CourtID, tomorrow, tomorrow)
	m := newManager(t, db, 0)
	ctx := context.Background()

	schedule, err := m.DaySchedule(ctx, fx.CourtID, tomorrow, testNow)
	require.NoError(t, err)
	assert.True(t, schedule.IsUnderMaintenance)
	require.Len(t, schedule.Slots, 16)
	for _, s := range schedule.Slots {
		assert.True(t, s.IsBlocked)
		require.NotNil(t, s.BlockReason)
		assert.Equal(t, domain.ReasonUnderMaintenance, *s.BlockReason)
	}

	persisted, err := timeslot.NewRepository(db).ListByCourtAndDate(ctx, fx.CourtID, tomorrow)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestManager_DayScheduleDateWindow(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	m := newManager(t, db, 7)
	ctx := context.Background()

	_, err := m.DaySchedule(ctx, fx.CourtID, today.AddDays(-1), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = m.DaySchedule(ctx, fx.CourtID, today.AddDays(8), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = m.DaySchedule(ctx, fx.CourtID, today.AddDays(7), testNow)
	assert.NoError(t, err)

	_, err = m.DaySchedule(ctx, 999, tomorrow, testNow)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManager_ReserveAndRelease(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	m := newManager(t, db, 0)
	ctx := context.Background()

	slotID := storagetest.SeedSlot(t, db, fx.CourtID, tomorrow, "10:00", "11:00")

	require.NoError(t, m.Reserve(ctx, slotID, testNow))
	assert.ErrorIs(t, m.Reserve(ctx, slotID, testNow), domain.ErrSlotUnavailable)
	require.NoError(t, m.Release(ctx, slotID, testNow))
	assert.NoError(t, m.Reserve(ctx, slotID, testNow))
	assert.ErrorIs(t, m.Release(ctx, 999, testNow), domain.ErrNotFound)
}

func TestManager_CheckBookable(t *testing.T) {
	m := NewManager(nil, nil, nil, Config{Policy: domain.DefaultBookingPolicy(), AdvanceBookingDays: 3}, logger.NewNop())

	assert.ErrorIs(t, m.CheckBookable(&domain.TimeSlot{SlotDate: today, StartTime: "10:00"}, testNow), domain.ErrInvalidInput)
	assert.NoError(t, m.CheckBookable(&domain.TimeSlot{SlotDate: today, StartTime: "11:00"}, testNow))
	assert.ErrorIs(t, m.CheckBookable(&domain.TimeSlot{SlotDate: today.AddDays(4), StartTime: "11:00"}, testNow), domain.ErrInvalidInput)
}

func TestManager_Replace(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	m := newManager(t, db, 0)
	ctx := context.Background()

	// Сначала генерируем слоты по умолчанию
	_, err := m.DaySchedule(ctx, fx.CourtID, tomorrow, testNow)
	require.NoError(t, err)

	drafts := []domain.SlotDraft{
		{StartTime: "18:00", EndTime: "19:30"},
		{StartTime: "06:00", EndTime: "07:30"},
	}
	created, err := m.Replace(ctx, fx.OwnerID, fx.CourtID, tomorrow, drafts, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	slots, err := timeslot.NewRepository(db).ListByCourtAndDate(ctx, fx.CourtID, tomorrow)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, types.TimeString("06:00"), slots[0].StartTime)
	assert.Equal(t, types.TimeString("19:30"), slots[1].EndTime)
}

func TestManager_ReplaceRejections(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	m := newManager(t, db, 0)
	ctx := context.Background()
	ok := []domain.SlotDraft{{StartTime: "10:00", EndTime: "11:00"}}

	_, err := m.Replace(ctx, fx.OwnerID+1, fx.CourtID, tomorrow, ok, testNow)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	overlapping := []domain.SlotDraft{
		{StartTime: "10:00", EndTime: "11:00"},
		{StartTime: "10:30", EndTime: "11:30"},
	}
	existing := storagetest.SeedSlot(t, db, fx.CourtID, tomorrow, "12:00", "13:00")
	_, err = m.Replace(ctx, fx.OwnerID, fx.CourtID, tomorrow, overlapping, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Ничего не удалено
	slots, err := timeslot.NewRepository(db).ListByCourtAndDate(ctx, fx.CourtID, tomorrow)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, existing, slots[0].ID)

	require.NoError(t, m.Reserve(ctx, existing, testNow))
	_, err = m.Replace(ctx, fx.OwnerID, fx.CourtID, tomorrow, ok, testNow)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
}
