package define_time_slots

import (
	"context"

	defineTimeSlots "github.com/m04kA/SMC-CourtBookingService/internal/usecase/define_time_slots"
)

type DefineTimeSlotsUseCase interface {
	Execute(ctx context.Context, req *defineTimeSlots.Request) (*defineTimeSlots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
