package facility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/storagetest"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

func TestRepository_ReadModel(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	storagetest.SeedDayHours(t, db, fx.FacilityID, time.Monday, "00:00", "00:00", true)
	repo := NewRepository(db)
	ctx := context.Background()

	f, err := repo.GetFacility(ctx, fx.FacilityID)
	require.NoError(t, err)
	assert.Equal(t, fx.OwnerID, f.OwnerID)

	c, err := repo.GetCourt(ctx, fx.CourtID)
	require.NoError(t, err)
	assert.Equal(t, fx.FacilityID, c.FacilityID)

	h, err := repo.GetOperatingHours(ctx, fx.FacilityID, time.Tuesday)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("06:00"), h.OpenTime)
	assert.Equal(t, types.TimeString("22:00"), h.CloseTime)
	assert.False(t, h.IsClosed)

	monday, err := repo.GetOperatingHours(ctx, fx.FacilityID, time.Monday)
	require.NoError(t, err)
	assert.True(t, monday.IsClosed)

	_, err = repo.GetCourt(ctx, 999)
	assert.ErrorIs(t, err, ErrCourtNotFound)
	_, err = repo.GetFacility(ctx, 999)
	assert.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestRepository_GetActiveMaintenance(t *testing.T) {
	db := storagetest.NewDB(t)
	fx := storagetest.SeedFixture(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	start := types.NewDate(time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC))
	storagetest.SeedMaintenance(t, db, fx.CourtID, start, start.AddDays(2))

	m, err := repo.GetActiveMaintenance(ctx, fx.CourtID, start.AddDays(2))
	require.NoError(t, err)
	assert.True(t, m.Covers(start.AddDays(1)))

	_, err = repo.GetActiveMaintenance(ctx, fx.CourtID, start.AddDays(3))
	assert.ErrorIs(t, err, ErrMaintenanceNotFound)
}
