package payment

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
)

var paymentColumns = []string{
	"id",
	"booking_id",
	"amount",
	"platform_fee",
	"tax",
	"discount_amount",
	"final_amount",
	"currency",
	"status",
	"gateway_session_id",
	"checkout_url",
	"failure_reason",
	"expires_at",
	"paid_at",
	"created_at",
	"updated_at",
}

// openStatuses статусы платежа, допускающие дальнейшую оплату
var openStatuses = []string{string(domain.PaymentPending), string(domain.PaymentFailed)}

// Repository репозиторий платежей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает платеж в статусе PENDING
// Частичный индекс ux_payments_open_booking допускает только один открытый платеж
// на бронирование: при конфликте строка не вставляется и возвращается ErrOpenPaymentExists.
func (r *Repository) Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns(
			"booking_id",
			"amount",
			"platform_fee",
			"tax",
			"discount_amount",
			"final_amount",
			"currency",
			"status",
			"expires_at",
			"created_at",
			"updated_at",
		).
		Values(
			p.BookingID,
			p.Amount,
			p.PlatformFee,
			p.Tax,
			p.DiscountAmount,
			p.FinalAmount,
			p.Currency,
			string(p.Status),
			p.ExpiresAt.UTC(),
			p.CreatedAt.UTC(),
			p.UpdatedAt.UTC(),
		).
		Suffix("ON CONFLICT DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOpenPaymentExists
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return p, nil
}

// GetLatestByBooking возвращает последнюю попытку оплаты бронирования
func (r *Repository) GetLatestByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLatestByBooking - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLatestByBooking - scan payment: %v", ErrScanRow, err)
	}

	return p, nil
}

// GetBySessionID возвращает платеж по идентификатору сессии шлюза
func (r *Repository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"gateway_session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySessionID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySessionID - scan payment: %v", ErrScanRow, err)
	}

	return p, nil
}

// HasCompleted проверяет, есть ли у бронирования успешный платеж
func (r *Repository) HasCompleted(ctx context.Context, bookingID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("payments").
		Where(squirrel.Eq{"booking_id": bookingID, "status": string(domain.PaymentCompleted)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasCompleted - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: HasCompleted - scan count: %v", ErrScanRow, err)
	}

	return count > 0, nil
}

// Reopen переводит FAILED платеж обратно в PENDING для повторной попытки
// Данные предыдущей сессии сбрасываются
func (r *Repository) Reopen(ctx context.Context, id int64, expiresAt, now time.Time) error {
	query, args, err := psqlbuilder.Update("payments").
		Set("status", string(domain.PaymentPending)).
		Set("gateway_session_id", nil).
		Set("checkout_url", nil).
		Set("failure_reason", nil).
		Set("expires_at", expiresAt.UTC()).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"id": id, "status": string(domain.PaymentFailed)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reopen - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, "Reopen", query, args)
}

// SetSession сохраняет данные сессии шлюза для PENDING платежа
func (r *Repository) SetSession(ctx context.Context, id int64, session domain.CheckoutSession, now time.Time) error {
	query, args, err := psqlbuilder.Update("payments").
		Set("gateway_session_id", session.SessionID).
		Set("checkout_url", session.CheckoutURL).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"id": id, "status": string(domain.PaymentPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetSession - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, "SetSession", query, args)
}

// MarkFailed помечает PENDING платеж как FAILED
func (r *Repository) MarkFailed(ctx context.Context, id int64, reason string, now time.Time) error {
	query, args, err := psqlbuilder.Update("payments").
		Set("status", string(domain.PaymentFailed)).
		Set("failure_reason", reason).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"id": id, "status": string(domain.PaymentPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, "MarkFailed", query, args)
}

// MarkCompleted помечает платеж как COMPLETED
// Успешная оплата фиксируется и для уже закрытого (EXPIRED, CANCELLED) платежа,
// повторный вызов возвращает ErrStatusChanged.
func (r *Repository) MarkCompleted(ctx context.Context, id int64, now time.Time) error {
	now = now.UTC()

	query, args, err := psqlbuilder.Update("payments").
		Set("status", string(domain.PaymentCompleted)).
		Set("failure_reason", nil).
		Set("paid_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": string(domain.PaymentCompleted)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkCompleted - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, "MarkCompleted", query, args)
}

// CloseOpenForBooking закрывает все открытые платежи бронирования статусом status
// (EXPIRED при истечении окна оплаты, CANCELLED при отмене пользователем)
func (r *Repository) CloseOpenForBooking(ctx context.Context, bookingID int64, status domain.PaymentStatus, now time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("status", string(status)).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"booking_id": bookingID, "status": openStatuses}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CloseOpenForBooking - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CloseOpenForBooking - execute update: %v", ErrExecQuery, err)
	}

	closed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CloseOpenForBooking - get rows affected: %v", ErrExecQuery, err)
	}

	return int(closed), nil
}

func (r *Repository) execConditional(ctx context.Context, method, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

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

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var status string
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&p.PlatformFee,
		&p.Tax,
		&p.DiscountAmount,
		&p.FinalAmount,
		&p.Currency,
		&status,
		&p.GatewaySessionID,
		&p.CheckoutURL,
		&p.FailureReason,
		&p.ExpiresAt,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	return &p, nil
}
