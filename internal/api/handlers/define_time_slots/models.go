package define_time_slots

import (
	"fmt"

	"github.com/shopspring/decimal"

	defineTimeSlots "github.com/m04kA/SMC-CourtBookingService/internal/usecase/define_time_slots"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// DefineTimeSlotsRequest HTTP request model
type DefineTimeSlotsRequest struct {
	Date  string        `json:"date"` // "2025-10-15"
	Slots []SlotRequest `json:"slots"`
}

// SlotRequest слот, задаваемый владельцем
type SlotRequest struct {
	StartTime string           `json:"startTime"` // "10:00"
	EndTime   string           `json:"endTime"`
	Price     *decimal.Decimal `json:"price,omitempty"` // по умолчанию почасовая ставка корта
}

// DefineTimeSlotsResponse HTTP response model
type DefineTimeSlotsResponse struct {
	CourtID      int64  `json:"courtId"`
	Date         string `json:"date"`
	SlotsCreated int    `json:"slotsCreated"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *DefineTimeSlotsRequest) ToUseCaseRequest(ownerID, courtID int64) (*defineTimeSlots.Request, error) {
	date, err := types.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	slots := make([]defineTimeSlots.SlotInput, 0, len(r.Slots))
	for i, s := range r.Slots {
		start, err := types.NewTimeStringFromString(s.StartTime)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		end, err := types.NewTimeStringFromString(s.EndTime)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		slots = append(slots, defineTimeSlots.SlotInput{StartTime: start, EndTime: end, Price: s.Price})
	}

	return &defineTimeSlots.Request{
		OwnerID: ownerID,
		CourtID: courtID,
		Date:    date,
		Slots:   slots,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *defineTimeSlots.Response) *DefineTimeSlotsResponse {
	return &DefineTimeSlotsResponse{
		CourtID:      resp.CourtID,
		Date:         resp.Date.String(),
		SlotsCreated: resp.SlotsCreated,
	}
}
