package timeslots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	facilityRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/facility"
	slotRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Manager генерирует слоты кортов и гарантирует эксклюзивное владение слотом
type Manager struct {
	slotRepo     SlotRepository
	facilityRepo FacilityRepository
	txManager    TransactionManager
	config       Config
	logger       Logger
}

// NewManager создает новый экземпляр менеджера слотов
func NewManager(
	slotRepo SlotRepository,
	facilityRepo FacilityRepository,
	txManager TransactionManager,
	config Config,
	logger Logger,
) *Manager {
	if config.SlotDurationMinutes <= 0 {
		config.SlotDurationMinutes = domain.DefaultSlotDurationMinutes
	}
	return &Manager{
		slotRepo:     slotRepo,
		facilityRepo: facilityRepo,
		txManager:    txManager,
		config:       config,
		logger:       logger,
	}
}

// Lookup возвращает слот вместе с кортом и площадкой
func (m *Manager) Lookup(ctx context.Context, slotID int64) (*domain.SlotDetails, error) {
	details, err := m.slotRepo.GetDetails(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrTimeSlotNotFound) {
			m.logger.Warn("Lookup: time slot id=%d not found", slotID)
			return nil, fmt.Errorf("%w: time slot %d", domain.ErrNotFound, slotID)
		}
		m.logger.Error("Lookup: failed to get time slot id=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: Lookup - repository error: %v", domain.ErrSystem, err)
	}
	return details, nil
}

// CheckBookable проверяет окно бронирования: слот еще не начался
// и лежит не дальше AdvanceBookingDays от сегодняшнего дня
func (m *Manager) CheckBookable(slot *domain.TimeSlot, now time.Time) error {
	startsAt := slot.StartTime.OnDate(slot.SlotDate.Time, m.location())
	if !startsAt.After(now) {
		return fmt.Errorf("%w: slot %s %s has already started", domain.ErrInvalidInput, slot.SlotDate, slot.StartTime)
	}
	return m.checkDateWindow(slot.SlotDate, now)
}

// Reserve атомарно занимает слот
// Должен вызываться внутри транзакции создания бронирования
func (m *Manager) Reserve(ctx context.Context, slotID int64, now time.Time) error {
	if err := m.slotRepo.Reserve(ctx, slotID, now); err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotAvailable) {
			m.logger.Warn("Reserve: time slot id=%d is not available", slotID)
			return fmt.Errorf("%w: time slot %d", domain.ErrSlotUnavailable, slotID)
		}
		m.logger.Error("Reserve: failed to reserve time slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: Reserve - repository error: %v", domain.ErrSystem, err)
	}
	return nil
}

// Release освобождает слот
// Должен вызываться в той же транзакции, что и перевод бронирования в CANCELLED
func (m *Manager) Release(ctx context.Context, slotID int64, now time.Time) error {
	if err := m.slotRepo.Release(ctx, slotID, now); err != nil {
		if errors.Is(err, slotRepo.ErrTimeSlotNotFound) {
			m.logger.Warn("Release: time slot id=%d not found", slotID)
			return fmt.Errorf("%w: time slot %d", domain.ErrNotFound, slotID)
		}
		m.logger.Error("Release: failed to release time slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: Release - repository error: %v", domain.ErrSystem, err)
	}
	return nil
}

// DaySchedule возвращает слоты корта на дату
// Если слотов еще нет, они генерируются из рабочих часов площадки и сохраняются.
// При активном обслуживании все слоты возвращаются заблокированными и ничего не сохраняется.
// Для сегодняшней даты уже начавшиеся слоты исключаются из ответа, но не из базы.
func (m *Manager) DaySchedule(ctx context.Context, courtID int64, date types.Date, now time.Time) (*DaySchedule, error) {
	m.logger.Info("DaySchedule: court=%d, date=%s", courtID, date)

	// 1. Проверяем окно дат
	if err := m.checkDateWindow(date, now); err != nil {
		m.logger.Warn("DaySchedule: date validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем корт и рабочие часы площадки
	court, err := m.getCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}

	hours, err := m.getOperatingHours(ctx, court.FacilityID, date)
	if err != nil {
		return nil, err
	}

	schedule := &DaySchedule{
		CourtID:        courtID,
		Date:           date,
		CourtRate:      court.PricePerHour,
		OperatingHours: hours,
		IsClosed:       hours == nil || hours.IsClosed,
	}

	// 3. Существующие слоты
	slots, err := m.slotRepo.ListByCourtAndDate(ctx, courtID, date)
	if err != nil {
		m.logger.Error("DaySchedule: failed to list slots for court=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: DaySchedule - repository error: %v", domain.ErrSystem, err)
	}

	// 4. Обслуживание блокирует весь день
	underMaintenance, err := m.isUnderMaintenance(ctx, courtID, date)
	if err != nil {
		return nil, err
	}

	switch {
	case underMaintenance:
		schedule.IsUnderMaintenance = true
		if len(slots) == 0 {
			drafts, err := generateDrafts(hours, m.config.SlotDurationMinutes)
			if err != nil {
				return nil, err
			}
			slots = draftsToSlots(courtID, date, drafts)
		}
		slots = blockAll(slots)

	case len(slots) == 0 && !schedule.IsClosed:
		// 5. Ленивая генерация
		slots, err = m.generate(ctx, courtID, date, hours, now)
		if err != nil {
			return nil, err
		}
	}

	// 6. Сегодня показываем только еще не начавшиеся слоты
	local := now.In(m.location())
	if date.Equal(types.NewDate(m.config.Policy.Today(now))) {
		slots = dropStarted(slots, types.NewTimeString(local))
	}

	schedule.Slots = slots
	return schedule, nil
}

// Replace заменяет слоты корта на дату набором, заданным владельцем площадки
// Все проверки выполняются до записи; замена невозможна, если на дату есть занятые слоты.
// Свободные слоты, на которые ссылаются отмененные бронирования, не удаляются.
func (m *Manager) Replace(ctx context.Context, ownerID, courtID int64, date types.Date, drafts []domain.SlotDraft, now time.Time) (int, error) {
	m.logger.Info("Replace: owner=%d, court=%d, date=%s, slots=%d", ownerID, courtID, date, len(drafts))

	// 1. Корт и права владельца
	court, err := m.getCourt(ctx, courtID)
	if err != nil {
		return 0, err
	}

	facility, err := m.facilityRepo.GetFacility(ctx, court.FacilityID)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			m.logger.Warn("Replace: facility id=%d not found", court.FacilityID)
			return 0, fmt.Errorf("%w: facility %d", domain.ErrNotFound, court.FacilityID)
		}
		m.logger.Error("Replace: failed to get facility id=%d: %v", court.FacilityID, err)
		return 0, fmt.Errorf("%w: Replace - repository error: %v", domain.ErrSystem, err)
	}
	if facility.OwnerID != ownerID {
		m.logger.Warn("Replace: user=%d is not the owner of facility=%d", ownerID, facility.ID)
		return 0, fmt.Errorf("%w: user %d does not own facility %d", domain.ErrAccessDenied, ownerID, facility.ID)
	}

	// 2. Валидация до любой записи
	if date.Before(types.NewDate(m.config.Policy.Today(now))) {
		return 0, fmt.Errorf("%w: date %s is in the past", domain.ErrInvalidInput, date)
	}

	hours, err := m.getOperatingHours(ctx, court.FacilityID, date)
	if err != nil {
		return 0, err
	}

	sorted, err := validateDrafts(drafts, hours)
	if err != nil {
		m.logger.Warn("Replace: validation failed for court=%d: %v", courtID, err)
		return 0, err
	}

	// 3. Замена в одной транзакции
	var created int
	err = m.txManager.Do(ctx, func(txCtx context.Context) error {
		booked, err := m.slotRepo.CountBooked(txCtx, courtID, date)
		if err != nil {
			return fmt.Errorf("%w: Replace - count booked: %v", domain.ErrSystem, err)
		}
		if booked > 0 {
			return fmt.Errorf("%w: %d slots on %s are already booked", domain.ErrSlotUnavailable, booked, date)
		}

		// Слоты из истории бронирований остаются, новые не должны с ними пересекаться
		kept, err := m.slotRepo.ListReferencedByCourtAndDate(txCtx, courtID, date)
		if err != nil {
			return fmt.Errorf("%w: Replace - list referenced slots: %v", domain.ErrSystem, err)
		}
		if err := checkAgainstKept(sorted, kept); err != nil {
			return err
		}

		deleted, err := m.slotRepo.DeleteFreeByCourtAndDate(txCtx, courtID, date)
		if err != nil {
			return fmt.Errorf("%w: Replace - delete slots: %v", domain.ErrSystem, err)
		}
		m.logger.Info("Replace: removed %d existing slots for court=%d on %s", deleted, courtID, date)

		created, err = m.slotRepo.CreateBatch(txCtx, draftsToSlots(courtID, date, sorted), now)
		if err != nil {
			return fmt.Errorf("%w: Replace - insert slots: %v", domain.ErrSystem, err)
		}
		return nil
	})
	if err != nil {
		if domain.IsBusinessError(err) {
			m.logger.Warn("Replace: court=%d, date=%s: %v", courtID, date, err)
		} else {
			m.logger.Error("Replace: court=%d, date=%s: %v", courtID, date, err)
		}
		return 0, err
	}

	m.logger.Info("Replace: created %d slots for court=%d on %s", created, courtID, date)
	return created, nil
}

func (m *Manager) generate(ctx context.Context, courtID int64, date types.Date, hours *domain.OperatingHours, now time.Time) ([]*domain.TimeSlot, error) {
	drafts, err := generateDrafts(hours, m.config.SlotDurationMinutes)
	if err != nil {
		return nil, err
	}

	// Конкурентная генерация безопасна: дубликаты отбрасываются ON CONFLICT
	inserted, err := m.slotRepo.CreateBatch(ctx, draftsToSlots(courtID, date, drafts), now)
	if err != nil {
		m.logger.Error("DaySchedule: failed to persist generated slots for court=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: DaySchedule - repository error: %v", domain.ErrSystem, err)
	}
	m.logger.Info("DaySchedule: generated %d slots for court=%d on %s", inserted, courtID, date)

	slots, err := m.slotRepo.ListByCourtAndDate(ctx, courtID, date)
	if err != nil {
		m.logger.Error("DaySchedule: failed to reload slots for court=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: DaySchedule - repository error: %v", domain.ErrSystem, err)
	}
	return slots, nil
}

func (m *Manager) checkDateWindow(date types.Date, now time.Time) error {
	today := types.NewDate(m.config.Policy.Today(now))
	if date.Before(today) {
		return fmt.Errorf("%w: date %s is in the past", domain.ErrInvalidInput, date)
	}
	if m.config.AdvanceBookingDays > 0 && date.After(today.AddDays(m.config.AdvanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", domain.ErrInvalidInput, m.config.AdvanceBookingDays)
	}
	return nil
}

func (m *Manager) getCourt(ctx context.Context, courtID int64) (*domain.Court, error) {
	court, err := m.facilityRepo.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrCourtNotFound) {
			m.logger.Warn("getCourt: court id=%d not found", courtID)
			return nil, fmt.Errorf("%w: court %d", domain.ErrNotFound, courtID)
		}
		m.logger.Error("getCourt: failed to get court id=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: getCourt - repository error: %v", domain.ErrSystem, err)
	}
	return court, nil
}

// getOperatingHours возвращает nil, если расписание на день не задано
func (m *Manager) getOperatingHours(ctx context.Context, facilityID int64, date types.Date) (*domain.OperatingHours, error) {
	hours, err := m.facilityRepo.GetOperatingHours(ctx, facilityID, date.Weekday())
	if err != nil {
		if errors.Is(err, facilityRepo.ErrOperatingHoursNotFound) {
			return nil, nil
		}
		m.logger.Error("getOperatingHours: failed for facility=%d: %v", facilityID, err)
		return nil, fmt.Errorf("%w: getOperatingHours - repository error: %v", domain.ErrSystem, err)
	}
	return hours, nil
}

func (m *Manager) isUnderMaintenance(ctx context.Context, courtID int64, date types.Date) (bool, error) {
	_, err := m.facilityRepo.GetActiveMaintenance(ctx, courtID, date)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, facilityRepo.ErrMaintenanceNotFound) {
		return false, nil
	}
	m.logger.Error("isUnderMaintenance: failed for court=%d: %v", courtID, err)
	return false, fmt.Errorf("%w: isUnderMaintenance - repository error: %v", domain.ErrSystem, err)
}

func (m *Manager) location() *time.Location {
	if m.config.Policy.Location == nil {
		return time.UTC
	}
	return m.config.Policy.Location
}
