package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Repository репозиторий площадок, кортов, расписаний и обслуживания
// Данные принадлежат сервису площадок, здесь они только читаются
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetFacility получает площадку по ID
func (r *Repository) GetFacility(ctx context.Context, id int64) (*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "owner_id", "name", "is_active").
		From("facilities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetFacility - build select query: %v", ErrBuildQuery, err)
	}

	var f domain.Facility
	err = executor.QueryRowContext(ctx, query, args...).Scan(&f.ID, &f.OwnerID, &f.Name, &f.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetFacility - scan facility: %v", ErrScanRow, err)
	}

	return &f, nil
}

// GetCourt получает корт по ID
func (r *Repository) GetCourt(ctx context.Context, id int64) (*domain.Court, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "facility_id", "name", "price_per_hour", "is_active").
		From("courts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCourt - build select query: %v", ErrBuildQuery, err)
	}

	var c domain.Court
	err = executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.FacilityID, &c.Name, &c.PricePerHour, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourtNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCourt - scan court: %v", ErrScanRow, err)
	}

	return &c, nil
}

// GetOperatingHours получает расписание площадки на день недели
func (r *Repository) GetOperatingHours(ctx context.Context, facilityID int64, day time.Weekday) (*domain.OperatingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("facility_id", "day_of_week", "open_time", "close_time", "is_closed").
		From("operating_hours").
		Where(squirrel.Eq{"facility_id": facilityID, "day_of_week": int(day)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOperatingHours - build select query: %v", ErrBuildQuery, err)
	}

	var h domain.OperatingHours
	var dayOfWeek int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&h.FacilityID, &dayOfWeek, &h.OpenTime, &h.CloseTime, &h.IsClosed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperatingHoursNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOperatingHours - scan operating hours: %v", ErrScanRow, err)
	}
	h.DayOfWeek = time.Weekday(dayOfWeek)

	return &h, nil
}

// GetActiveMaintenance возвращает активное обслуживание корта, покрывающее дату
func (r *Repository) GetActiveMaintenance(ctx context.Context, courtID int64, date types.Date) (*domain.Maintenance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "court_id", "start_date", "end_date", "reason", "is_active").
		From("maintenances").
		Where(squirrel.Eq{"court_id": courtID, "is_active": true}).
		Where(squirrel.LtOrEq{"start_date": date}).
		Where(squirrel.GtOrEq{"end_date": date}).
		OrderBy("start_date ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveMaintenance - build select query: %v", ErrBuildQuery, err)
	}

	var m domain.Maintenance
	err = executor.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.CourtID, &m.StartDate, &m.EndDate, &m.Reason, &m.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMaintenanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveMaintenance - scan maintenance: %v", ErrScanRow, err)
	}

	return &m, nil
}
