package define_time_slots

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Request модель запроса на замену слотов корта
type Request struct {
	OwnerID int64      // ID владельца площадки
	CourtID int64      // ID корта
	Date    types.Date // Дата, на которую задаются слоты
	Slots   []SlotInput
}

// SlotInput слот, заданный владельцем
type SlotInput struct {
	StartTime types.TimeString
	EndTime   types.TimeString
	Price     *decimal.Decimal // nil = почасовая ставка корта
}

// Response модель ответа
type Response struct {
	CourtID      int64
	Date         types.Date
	SlotsCreated int
}

// toDrafts переводит входные слоты в черновики домена
func (r *Request) toDrafts() []domain.SlotDraft {
	drafts := make([]domain.SlotDraft, 0, len(r.Slots))
	for _, s := range r.Slots {
		draft := domain.SlotDraft{StartTime: s.StartTime, EndTime: s.EndTime}
		if s.Price != nil {
			draft.Price = decimal.NewNullDecimal(*s.Price)
		}
		drafts = append(drafts, draft)
	}
	return drafts
}
