package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
)

// Repository репозиторий купонов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория купонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCode получает купон по коду
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"code",
		"valid_from",
		"valid_until",
		"usage_limit",
		"current_usage",
		"discount_type",
		"discount_value",
		"min_booking_amount",
		"max_discount_amount",
		"is_active",
	).
		From("coupons").
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - build select query: %v", ErrBuildQuery, err)
	}

	var c domain.Coupon
	var discountType string
	var usageLimit sql.NullInt64
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.Code,
		&c.ValidFrom,
		&c.ValidUntil,
		&usageLimit,
		&c.CurrentUsage,
		&discountType,
		&c.DiscountValue,
		&c.MinBookingAmount,
		&c.MaxDiscountAmount,
		&c.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - scan coupon: %v", ErrScanRow, err)
	}

	c.DiscountType = domain.DiscountType(discountType)
	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		c.UsageLimit = &limit
	}

	return &c, nil
}

// IncrementUsage атомарно увеличивает счетчик использований купона
// UPDATE выполняется только пока лимит не исчерпан, поэтому конкурентные
// бронирования не могут превысить usage_limit.
func (r *Repository) IncrementUsage(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("coupons").
		Set("current_usage", squirrel.Expr("current_usage + 1")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"usage_limit": nil},
			squirrel.Expr("current_usage < usage_limit"),
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: IncrementUsage - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementUsage - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementUsage - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrUsageLimitReached
	}

	return nil
}

// CreateBookingCoupon сохраняет примененную к бронированию скидку
func (r *Repository) CreateBookingCoupon(ctx context.Context, bc *domain.BookingCoupon) (*domain.BookingCoupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_coupons").
		Columns("booking_id", "coupon_id", "discount_amount", "created_at").
		Values(bc.BookingID, bc.CouponID, bc.DiscountAmount, bc.CreatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBookingCoupon - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&bc.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateBookingCoupon - execute insert: %v", ErrExecQuery, err)
	}

	return bc, nil
}

// GetBookingCoupon возвращает скидку, примененную к бронированию
func (r *Repository) GetBookingCoupon(ctx context.Context, bookingID int64) (*domain.BookingCoupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"bc.id", "bc.booking_id", "bc.coupon_id", "c.code", "bc.discount_amount", "bc.created_at",
	).
		From("booking_coupons bc").
		Join("coupons c ON c.id = bc.coupon_id").
		Where(squirrel.Eq{"bc.booking_id": bookingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookingCoupon - build select query: %v", ErrBuildQuery, err)
	}

	var bc domain.BookingCoupon
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&bc.ID,
		&bc.BookingID,
		&bc.CouponID,
		&bc.CouponCode,
		&bc.DiscountAmount,
		&bc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookingCoupon - scan row: %v", ErrScanRow, err)
	}

	return &bc, nil
}
