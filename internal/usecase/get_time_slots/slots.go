package get_time_slots

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/service/timeslots"
)

// toResponse переводит расписание дня в ответ
func toResponse(schedule *timeslots.DaySchedule) *Response {
	resp := &Response{
		CourtID:            schedule.CourtID,
		Date:               schedule.Date,
		IsClosed:           schedule.IsClosed,
		IsUnderMaintenance: schedule.IsUnderMaintenance,
		Slots:              make([]Slot, 0, len(schedule.Slots)),
	}

	if !schedule.IsClosed && schedule.OperatingHours != nil {
		resp.OperatingHours = &OperatingHours{
			OpenTime:  schedule.OperatingHours.OpenTime,
			CloseTime: schedule.OperatingHours.CloseTime,
		}
	}

	for _, s := range schedule.Slots {
		resp.Slots = append(resp.Slots, Slot{
			ID:          s.ID,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			Price:       s.PricePerHour(schedule.CourtRate),
			Available:   s.IsAvailable(),
			IsBlocked:   s.IsBlocked,
			BlockReason: s.BlockReason,
		})
	}

	return resp
}
