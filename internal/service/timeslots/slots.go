package timeslots

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// generateDrafts нарезает рабочий день на последовательные слоты длительностью slotDuration
// Последний слот, выходящий за время закрытия, отбрасывается
func generateDrafts(hours *domain.OperatingHours, slotDuration int) ([]domain.SlotDraft, error) {
	if hours == nil || hours.IsClosed {
		return []domain.SlotDraft{}, nil
	}
	if slotDuration <= 0 {
		return nil, fmt.Errorf("%w: slot duration must be positive, got %d", domain.ErrInvalidInput, slotDuration)
	}

	drafts := make([]domain.SlotDraft, 0)
	closeAt := hours.CloseTime.Minutes()

	for start := hours.OpenTime.Minutes(); start+slotDuration <= closeAt; start += slotDuration {
		startTime, err := types.NewTimeStringFromMinutes(start)
		if err != nil {
			return nil, err
		}
		endTime, err := startTime.AddMinutes(slotDuration)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, domain.SlotDraft{StartTime: startTime, EndTime: endTime})
	}

	return drafts, nil
}

// validateDrafts проверяет набор слотов, заданный владельцем:
// формат времени, start < end, попадание в рабочие часы и отсутствие пересечений
// Возвращает копию, отсортированную по времени начала
func validateDrafts(drafts []domain.SlotDraft, hours *domain.OperatingHours) ([]domain.SlotDraft, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: at least one slot is required", domain.ErrInvalidInput)
	}
	if len(drafts) > domain.MaxSlotsPerDay {
		return nil, fmt.Errorf("%w: at most %d slots per day", domain.ErrInvalidInput, domain.MaxSlotsPerDay)
	}
	if hours == nil || hours.IsClosed {
		return nil, fmt.Errorf("%w: facility is closed on this day", domain.ErrInvalidInput)
	}

	sorted := make([]domain.SlotDraft, len(drafts))
	copy(sorted, drafts)

	for i, d := range sorted {
		if err := d.StartTime.Validate(); err != nil {
			return nil, fmt.Errorf("%w: slot %d: invalid start time: %v", domain.ErrInvalidInput, i, err)
		}
		if err := d.EndTime.Validate(); err != nil {
			return nil, fmt.Errorf("%w: slot %d: invalid end time: %v", domain.ErrInvalidInput, i, err)
		}
		if !d.StartTime.IsBefore(d.EndTime) {
			return nil, fmt.Errorf("%w: slot %d: start %s must be before end %s", domain.ErrInvalidInput, i, d.StartTime, d.EndTime)
		}
		if !hours.Contains(d.StartTime, d.EndTime) {
			return nil, fmt.Errorf("%w: slot %s-%s is outside operating hours %s-%s",
				domain.ErrInvalidInput, d.StartTime, d.EndTime, hours.OpenTime, hours.CloseTime)
		}
		if d.Price.Valid && d.Price.Decimal.IsNegative() {
			return nil, fmt.Errorf("%w: slot %s-%s has negative price", domain.ErrInvalidInput, d.StartTime, d.EndTime)
		}
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.IsBefore(sorted[j].StartTime)
	})

	// Соседние слоты могут граничить, но не пересекаться
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.StartTime.IsBefore(prev.EndTime) {
			return nil, fmt.Errorf("%w: slot %s-%s overlaps %s-%s",
				domain.ErrInvalidInput, cur.StartTime, cur.EndTime, prev.StartTime, prev.EndTime)
		}
	}

	return sorted, nil
}

// checkAgainstKept проверяет, что новые слоты не пересекаются с сохраняемыми
func checkAgainstKept(drafts []domain.SlotDraft, kept []*domain.TimeSlot) error {
	for _, d := range drafts {
		for _, k := range kept {
			if d.StartTime.IsBefore(k.EndTime) && k.StartTime.IsBefore(d.EndTime) {
				return fmt.Errorf("%w: slot %s-%s overlaps %s-%s referenced by a booking",
					domain.ErrInvalidInput, d.StartTime, d.EndTime, k.StartTime, k.EndTime)
			}
		}
	}
	return nil
}

// blockAll помечает слоты как заблокированные обслуживанием, не изменяя исходные
func blockAll(slots []*domain.TimeSlot) []*domain.TimeSlot {
	reason := domain.ReasonUnderMaintenance
	result := make([]*domain.TimeSlot, len(slots))
	for i, s := range slots {
		blocked := *s
		blocked.IsBlocked = true
		blocked.BlockReason = &reason
		result[i] = &blocked
	}
	return result
}

// draftsToSlots превращает черновики в слоты корта на дату
func draftsToSlots(courtID int64, date types.Date, drafts []domain.SlotDraft) []*domain.TimeSlot {
	slots := make([]*domain.TimeSlot, len(drafts))
	for i, d := range drafts {
		slots[i] = &domain.TimeSlot{
			CourtID:   courtID,
			SlotDate:  date,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			Price:     d.Price,
		}
	}
	return slots
}

// dropStarted отбрасывает слоты, время начала которых уже наступило
func dropStarted(slots []*domain.TimeSlot, current types.TimeString) []*domain.TimeSlot {
	result := make([]*domain.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.StartTime.IsAfter(current) {
			result = append(result, s)
		}
	}
	return result
}
