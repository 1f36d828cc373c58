package get_time_slots

import (
	getTimeSlots "github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_time_slots"
)

// TimeSlotsResponse HTTP response model
type TimeSlotsResponse struct {
	CourtID            int64                   `json:"courtId"`
	Date               string                  `json:"date"` // "2025-10-15"
	OperatingHours     *OperatingHoursResponse `json:"operatingHours,omitempty"`
	IsClosed           bool                    `json:"isClosed"`
	IsUnderMaintenance bool                    `json:"isUnderMaintenance"`
	Slots              []TimeSlotResponse      `json:"slots"`
}

// OperatingHoursResponse часы работы площадки
type OperatingHoursResponse struct {
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

// TimeSlotResponse слот корта
type TimeSlotResponse struct {
	ID          int64   `json:"id,omitempty"`
	StartTime   string  `json:"startTime"` // "10:00"
	EndTime     string  `json:"endTime"`
	Price       string  `json:"price"`
	Available   bool    `json:"available"`
	IsBlocked   bool    `json:"isBlocked"`
	BlockReason *string `json:"blockReason,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getTimeSlots.Response) *TimeSlotsResponse {
	out := &TimeSlotsResponse{
		CourtID:            resp.CourtID,
		Date:               resp.Date.String(),
		IsClosed:           resp.IsClosed,
		IsUnderMaintenance: resp.IsUnderMaintenance,
		Slots:              make([]TimeSlotResponse, 0, len(resp.Slots)),
	}

	if resp.OperatingHours != nil {
		out.OperatingHours = &OperatingHoursResponse{
			OpenTime:  resp.OperatingHours.OpenTime.String(),
			CloseTime: resp.OperatingHours.CloseTime.String(),
		}
	}

	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, TimeSlotResponse{
			ID:          s.ID,
			StartTime:   s.StartTime.String(),
			EndTime:     s.EndTime.String(),
			Price:       s.Price.StringFixed(2),
			Available:   s.Available,
			IsBlocked:   s.IsBlocked,
			BlockReason: s.BlockReason,
		})
	}

	return out
}
