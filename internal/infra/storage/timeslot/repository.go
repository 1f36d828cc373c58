package timeslot

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

// notUnderMaintenance исключает слоты, попадающие в активное окно обслуживания корта
const notUnderMaintenance = `NOT EXISTS (
	SELECT 1 FROM maintenances m
	WHERE m.court_id = time_slots.court_id
	  AND m.is_active
	  AND m.start_date <= time_slots.slot_date
	  AND m.end_date >= time_slots.slot_date)`

// referencedByBooking слот, на который ссылается хотя бы одно бронирование, в том числе завершенное
const referencedByBooking = `EXISTS (SELECT 1 FROM bookings b WHERE b.time_slot_id = time_slots.id)`

var slotColumns = []string{
	"id",
	"court_id",
	"slot_date",
	"start_time",
	"end_time",
	"price",
	"is_booked",
	"is_blocked",
	"block_reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий временных слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("time_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// GetDetails получает слот вместе с кортом и площадкой
func (r *Repository) GetDetails(ctx context.Context, id int64) (*domain.SlotDetails, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"ts.id", "ts.court_id", "ts.slot_date", "ts.start_time", "ts.end_time", "ts.price",
		"ts.is_booked", "ts.is_blocked", "ts.block_reason", "ts.created_at", "ts.updated_at",
		"c.id", "c.facility_id", "c.name", "c.price_per_hour", "c.is_active",
		"f.id", "f.owner_id", "f.name", "f.is_active",
	).
		From("time_slots ts").
		Join("courts c ON c.id = ts.court_id").
		Join("facilities f ON f.id = c.facility_id").
		Where(squirrel.Eq{"ts.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetDetails - build select query: %v", ErrBuildQuery, err)
	}

	var d domain.SlotDetails
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&d.Slot.ID, &d.Slot.CourtID, &d.Slot.SlotDate, &d.Slot.StartTime, &d.Slot.EndTime, &d.Slot.Price,
		&d.Slot.IsBooked, &d.Slot.IsBlocked, &d.Slot.BlockReason, &d.Slot.CreatedAt, &d.Slot.UpdatedAt,
		&d.Court.ID, &d.Court.FacilityID, &d.Court.Name, &d.Court.PricePerHour, &d.Court.IsActive,
		&d.Facility.ID, &d.Facility.OwnerID, &d.Facility.Name, &d.Facility.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetDetails - scan row: %v", ErrScanRow, err)
	}

	return &d, nil
}

// ListByCourtAndDate возвращает слоты корта на дату, отсортированные по времени начала
func (r *Repository) ListByCourtAndDate(ctx context.Context, courtID int64, date types.Date) ([]*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("time_slots").
		Where(squirrel.Eq{"court_id": courtID, "slot_date": date}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCourtAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCourtAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByCourtAndDate - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByCourtAndDate - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// CreateBatch вставляет слоты, пропуская уже существующие (court_id, slot_date, start_time)
// Возвращает количество реально вставленных строк
func (r *Repository) CreateBatch(ctx context.Context, slots []*domain.TimeSlot, now time.Time) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)
	now = now.UTC()

	insert := psqlbuilder.Insert("time_slots").
		Columns("court_id", "slot_date", "start_time", "end_time", "price",
			"is_booked", "is_blocked", "block_reason", "created_at", "updated_at")
	for _, s := range slots {
		insert = insert.Values(s.CourtID, s.SlotDate, s.StartTime, s.EndTime, s.Price,
			s.IsBooked, s.IsBlocked, s.BlockReason, now, now)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (court_id, slot_date, start_time) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - get rows affected: %v", ErrExecQuery, err)
	}

	return int(inserted), nil
}

// Reserve атомарно занимает слот: UPDATE выполняется только для свободного,
// незаблокированного слота вне окна обслуживания. Ноль затронутых строк означает конфликт.
func (r *Repository) Reserve(ctx context.Context, id int64, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("time_slots").
		Set("is_booked", true).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"id": id, "is_booked": false, "is_blocked": false}).
		Where(notUnderMaintenance).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reserve - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reserve - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reserve - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSlotNotAvailable
	}

	return nil
}

// Release освобождает слот
func (r *Repository) Release(ctx context.Context, id int64, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("time_slots").
		Set("is_booked", false).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTimeSlotNotFound
	}

	return nil
}

// CountBooked считает занятые слоты корта на дату
func (r *Repository) CountBooked(ctx context.Context, courtID int64, date types.Date) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("time_slots").
		Where(squirrel.Eq{"court_id": courtID, "slot_date": date, "is_booked": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountBooked - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountBooked - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// ListReferencedByCourtAndDate возвращает слоты корта на дату, на которые ссылаются бронирования
func (r *Repository) ListReferencedByCourtAndDate(ctx context.Context, courtID int64, date types.Date) ([]*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("time_slots").
		Where(squirrel.Eq{"court_id": courtID, "slot_date": date}).
		Where(squirrel.Expr(referencedByBooking)).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListReferencedByCourtAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListReferencedByCourtAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListReferencedByCourtAndDate - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListReferencedByCourtAndDate - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// DeleteFreeByCourtAndDate удаляет незанятые слоты корта на дату, на которые не ссылается ни одно бронирование
func (r *Repository) DeleteFreeByCourtAndDate(ctx context.Context, courtID int64, date types.Date) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("time_slots").
		Where(squirrel.Eq{"court_id": courtID, "slot_date": date, "is_booked": false}).
		Where(squirrel.Expr("NOT " + referencedByBooking)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteFreeByCourtAndDate - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteFreeByCourtAndDate - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteFreeByCourtAndDate - get rows affected: %v", ErrExecQuery, err)
	}

	return int(deleted), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	err := row.Scan(
		&s.ID,
		&s.CourtID,
		&s.SlotDate,
		&s.StartTime,
		&s.EndTime,
		&s.Price,
		&s.IsBooked,
		&s.IsBlocked,
		&s.BlockReason,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
