package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dberrors"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"user_id",
	"facility_id",
	"court_id",
	"time_slot_id",
	"booking_date",
	"start_time",
	"end_time",
	"total_hours",
	"price_per_hour",
	"total_amount",
	"platform_fee",
	"tax",
	"discount_amount",
	"final_amount",
	"status",
	"special_requests",
	"cancellation_reason",
	"created_at",
	"updated_at",
	"confirmed_at",
	"cancelled_at",
	"completed_at",
	"no_show_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Частичный уникальный индекс ux_bookings_active_slot не допускает второго
// активного бронирования на тот же слот, в этом случае возвращается ErrSlotAlreadyHeld.
// Вызывать внутри транзакции вместе с резервированием слота.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"facility_id",
			"court_id",
			"time_slot_id",
			"booking_date",
			"start_time",
			"end_time",
			"total_hours",
			"price_per_hour",
			"total_amount",
			"platform_fee",
			"tax",
			"discount_amount",
			"final_amount",
			"status",
			"special_requests",
			"created_at",
			"updated_at",
		).
		Values(
			booking.UserID,
			booking.FacilityID,
			booking.CourtID,
			booking.TimeSlotID,
			booking.BookingDate,
			booking.StartTime,
			booking.EndTime,
			booking.TotalHours,
			booking.PricePerHour,
			booking.TotalAmount,
			booking.PlatformFee,
			booking.Tax,
			booking.DiscountAmount,
			booking.FinalAmount,
			booking.Status,
			booking.SpecialRequests,
			booking.CreatedAt.UTC(),
			booking.UpdatedAt.UTC(),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, ErrSlotAlreadyHeld
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования с гибкой фильтрацией
// Поддерживает фильтрацию по:
// - пользователю, площадке, корту
// - периоду (StartDate, EndDate)
// - статусу (Status)
// - включению завершенных бронирований (IncludeInactive)
//
// Если конкретный статус не задан и IncludeInactive = false,
// возвращаются только PENDING и CONFIRMED.
func (r *Repository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.FacilityID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"facility_id": *filter.FacilityID})
	}
	if filter.CourtID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"court_id": *filter.CourtID})
	}

	// Фильтрация по периоду
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if !filter.IncludeInactive {
		active := make([]string, len(domain.ActiveStatuses))
		for i, s := range domain.ActiveStatuses {
			active[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": active})
	}

	// Для конкретной даты сортируем по времени начала, иначе сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC", "start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListExpiredPending возвращает PENDING бронирования, созданные раньше createdBefore
func (r *Repository) ListExpiredPending(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": string(domain.StatusPending)}).
		Where(squirrel.Lt{"created_at": createdBefore.UTC()}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus переводит бронирование из статуса from в статус to
// UPDATE условный: если статус уже изменился, возвращается ErrStatusChanged.
// Для CONFIRMED, COMPLETED и NO_SHOW проставляется соответствующая отметка времени.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	now = now.UTC()

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", string(to)).
		Set("updated_at", now)

	switch to {
	case domain.StatusConfirmed:
		updateBuilder = updateBuilder.Set("confirmed_at", now)
	case domain.StatusCompleted:
		updateBuilder = updateBuilder.Set("completed_at", now)
	case domain.StatusNoShow:
		updateBuilder = updateBuilder.Set("no_show_at", now)
	}

	query, args, err := updateBuilder.
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, executor, "UpdateStatus", query, args)
}

// Cancel отменяет бронирование, находящееся в статусе from, с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	now = now.UTC()

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", string(domain.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, executor, "Cancel", query, args)
}

func (r *Repository) execConditional(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if rowsAffected == 0 {
		return ErrStatusChanged
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.FacilityID,
		&b.CourtID,
		&b.TimeSlotID,
		&b.BookingDate,
		&b.StartTime,
		&b.EndTime,
		&b.TotalHours,
		&b.PricePerHour,
		&b.TotalAmount,
		&b.PlatformFee,
		&b.Tax,
		&b.DiscountAmount,
		&b.FinalAmount,
		&status,
		&b.SpecialRequests,
		&b.CancellationReason,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.ConfirmedAt,
		&b.CancelledAt,
		&b.CompletedAt,
		&b.NoShowAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
