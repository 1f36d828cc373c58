package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	couponRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/coupon"
	facilityRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями: чтение, статусы владельца и истечение окна оплаты
type Service struct {
	bookingRepo  BookingRepository
	facilityRepo FacilityRepository
	couponRepo   CouponRepository
	slots        SlotReleaser
	payments     PaymentService
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      Metrics
	policy       domain.BookingPolicy
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	facilityRepo FacilityRepository,
	couponRepo CouponRepository,
	slots SlotReleaser,
	payments PaymentService,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	policy domain.BookingPolicy,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		facilityRepo: facilityRepo,
		couponRepo:   couponRepo,
		slots:        slots,
		payments:     payments,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		policy:       policy,
		logger:       logger,
	}
}

// Get загружает бронирование без проверки прав
func (s *Service) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Get: booking id=%d not found", id)
			return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
		}
		s.logger.Error("Get: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", domain.ErrSystem, err)
	}
	return booking, nil
}

// GetByID получает бронирование по ID вместе с последним платежом и купоном
// Видеть бронирование может его автор или владелец площадки.
// Неоплаченное бронирование с истекшим окном оплаты сначала переводится в CANCELLED.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64, now time.Time) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	if err := s.ExpireIfElapsed(ctx, booking, now, TriggerLazy); err != nil {
		return nil, err
	}

	resp := models.FromDomainBooking(booking)

	payment, err := s.payments.Latest(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	resp.Payment = models.FromDomainPayment(payment)

	coupon, err := s.couponRepo.GetBookingCoupon(ctx, booking.ID)
	if err != nil && !errors.Is(err, couponRepo.ErrCouponNotFound) {
		s.logger.Error("GetByID: failed to get coupon of booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - coupon repository error: %v", domain.ErrSystem, err)
	}
	resp.Coupon = models.FromDomainBookingCoupon(coupon)

	if booking.Status == domain.StatusPending {
		deadline := s.policy.PaymentDeadline(booking)
		resp.PaymentDeadline = &deadline
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return resp, nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	userID := req.UserID
	filter := domain.BookingFilter{UserID: &userID, IncludeInactive: true}

	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, *req.Status)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", domain.ErrSystem, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetFacilityBookings получает бронирования площадки с фильтрацией
// Доступно только владельцу площадки.
// Без фильтра по статусу возвращаются только PENDING и CONFIRMED, если не задан IncludeInactive.
func (s *Service) GetFacilityBookings(ctx context.Context, req *models.GetFacilityBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetFacilityBookings: fetching bookings for facility=%d, user=%d", req.FacilityID, req.UserID)

	if err := s.checkOwnerAccess(ctx, req.FacilityID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetFacilityBookings: invalid filter for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetFacilityBookings: repository error for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: GetFacilityBookings - repository error: %v", domain.ErrSystem, err)
	}

	s.logger.Info("GetFacilityBookings: successfully fetched %d bookings for facility=%d", len(bookings), req.FacilityID)
	return models.FromDomainBookingList(bookings), nil
}

// UpdateStatus отмечает посещение: CONFIRMED -> COMPLETED или NO_SHOW
// Доступно только владельцу площадки. Слот остается занятым.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest, now time.Time) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d", bookingID, req.Status, req.UserID)

	booking, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnerAccess(ctx, booking.FacilityID, req.UserID); err != nil {
		return nil, err
	}

	target, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, req.Status)
	}

	if err := domain.CheckAttendance(booking, target); err != nil {
		s.logger.Warn("UpdateStatus: booking id=%d: %v", bookingID, err)
		return nil, err
	}

	from := booking.Status
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, target, now); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusChanged) {
			s.logger.Warn("UpdateStatus: booking id=%d changed concurrently", bookingID)
			return nil, fmt.Errorf("%w: booking %d is no longer %s", domain.ErrInvalidStateTransition, bookingID, from)
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", domain.ErrSystem, err)
	}

	updated, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.NewEvent(domain.EventBookingStatusChanged, updated, now, map[string]interface{}{
		"from":      string(from),
		"to":        string(target),
		"changedBy": req.UserID,
	}))

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, target)
	return models.FromDomainBooking(updated), nil
}

// Expire отменяет неоплаченное бронирование с истекшим окном оплаты
// В одной транзакции: бронирование -> CANCELLED, слот освобождается, открытые платежи -> EXPIRED.
// При успехе b обновляется на месте.
func (s *Service) Expire(ctx context.Context, b *domain.Booking, now time.Time, trigger string) error {
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		hasCompleted, err := s.payments.HasCompleted(ctx, b.ID)
		if err != nil {
			return err
		}

		if err := s.policy.CheckExpiry(b, now, hasCompleted); err != nil {
			return err
		}

		if err := s.bookingRepo.Cancel(ctx, b.ID, domain.StatusPending, domain.ReasonPaymentWindowExpired, now); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusChanged) {
				return fmt.Errorf("%w: booking %d changed concurrently", domain.ErrInvalidStateTransition, b.ID)
			}
			return fmt.Errorf("%w: Expire - repository error: %v", domain.ErrSystem, err)
		}

		if b.TimeSlotID != nil {
			if err := s.slots.Release(ctx, *b.TimeSlotID, now); err != nil {
				return err
			}
		}

		return s.payments.Close(ctx, b.ID, domain.PaymentExpired, now)
	})
	if err != nil {
		if domain.IsBusinessError(err) {
			s.logger.Warn("Expire: booking id=%d not expired: %v", b.ID, err)
		} else {
			s.logger.Error("Expire: failed to expire booking id=%d: %v", b.ID, err)
		}
		return err
	}

	reason := domain.ReasonPaymentWindowExpired
	b.Status = domain.StatusCancelled
	b.CancellationReason = &reason
	b.CancelledAt = &now
	b.UpdatedAt = now

	s.metrics.IncBookingExpired(trigger)
	s.publisher.Publish(ctx, domain.NewEvent(domain.EventBookingExpired, b, now, map[string]interface{}{
		"trigger":    trigger,
		"timeSlotId": b.TimeSlotID,
	}))

	s.logger.Info("Expire: booking id=%d expired by %s, slot released", b.ID, trigger)
	return nil
}

// ExpireIfElapsed возвращает ErrBookingExpired, если бронирование уже истекло
// или истекает прямо сейчас. Для остальных бронирований возвращает nil.
func (s *Service) ExpireIfElapsed(ctx context.Context, b *domain.Booking, now time.Time, trigger string) error {
	if b.IsExpiredHold() {
		return fmt.Errorf("%w: booking %d", domain.ErrBookingExpired, b.ID)
	}
	if b.Status != domain.StatusPending || !s.policy.IsPaymentWindowElapsed(b, now) {
		return nil
	}

	err := s.Expire(ctx, b, now, trigger)
	if err == nil {
		return fmt.Errorf("%w: booking %d", domain.ErrBookingExpired, b.ID)
	}
	if !errors.Is(err, domain.ErrInvalidStateTransition) {
		return err
	}

	// Бронирование изменилось параллельно (оплачено или уже истекло), смотрим актуальное состояние
	fresh, getErr := s.Get(ctx, b.ID)
	if getErr != nil {
		return getErr
	}
	*b = *fresh
	if b.IsExpiredHold() {
		return fmt.Errorf("%w: booking %d", domain.ErrBookingExpired, b.ID)
	}
	return nil
}

// Вспомогательные методы

// checkUserAccess проверяет, что пользователь автор бронирования или владелец площадки
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.UserID == userID {
		return nil
	}

	if err := s.checkOwnerAccess(ctx, booking.FacilityID, userID); err != nil {
		if errors.Is(err, domain.ErrSystem) {
			return err
		}
		return fmt.Errorf("%w: booking %d", domain.ErrAccessDenied, booking.ID)
	}

	return nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем площадки
func (s *Service) checkOwnerAccess(ctx context.Context, facilityID int64, userID int64) error {
	facility, err := s.facilityRepo.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			s.logger.Warn("checkOwnerAccess: facility id=%d not found", facilityID)
			return fmt.Errorf("%w: facility %d", domain.ErrNotFound, facilityID)
		}
		s.logger.Error("checkOwnerAccess: failed to get facility id=%d: %v", facilityID, err)
		return fmt.Errorf("%w: checkOwnerAccess - failed to get facility: %v", domain.ErrSystem, err)
	}

	if facility.OwnerID != userID {
		s.logger.Warn("checkOwnerAccess: user=%d is not the owner of facility=%d", userID, facilityID)
		return fmt.Errorf("%w: facility %d", domain.ErrAccessDenied, facilityID)
	}

	return nil
}
