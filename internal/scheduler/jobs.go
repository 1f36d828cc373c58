package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/expire_bookings"
)

// ExpireBookingsJobName имя задачи освобождения неоплаченных слотов
const ExpireBookingsJobName = "expire-stale-bookings"

// BookingExpirer проход по неоплаченным бронированиям
type BookingExpirer interface {
	Execute(ctx context.Context) (*expire_bookings.Result, error)
}

// AddExpireBookingsJob регистрирует периодический проход expirer.
// Каждый запуск ограничен timeout, чтобы зависшая база не копила задачи.
func (s *Service) AddExpireBookingsJob(cronExpr string, expirer BookingExpirer, timeout time.Duration) (gocron.Job, error) {
	return s.AddJob(ExpireBookingsJobName, cronExpr, func() {
		RunExpireBookings(expirer, timeout, s.logger)
	})
}

// RunExpireBookings выполняет один проход с таймаутом и логирует итог
func RunExpireBookings(expirer BookingExpirer, timeout time.Duration, logger Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := expirer.Execute(ctx)
	if err != nil {
		logger.Error("%s: sweep failed: %v", ExpireBookingsJobName, err)
		return
	}
	if result.Failed > 0 {
		logger.Error("%s: %d of %d bookings failed to expire", ExpireBookingsJobName, result.Failed, result.Scanned)
	}
}
