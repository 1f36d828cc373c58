package omisepay

import (
	"testing"

	"github.com/omise/omise-go"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

func TestChargeToEvent(t *testing.T) {
	code := "insufficient_fund"

	tests := []struct {
		name    string
		charge  omise.Charge
		kind    domain.GatewayEventKind
		booking int64
		reason  string
	}{
		{
			name: "successful charge",
			charge: omise.Charge{
				Base:     omise.Base{ID: "chrg_1"},
				Status:   omise.ChargeSuccessful,
				Metadata: map[string]interface{}{"booking_id": "42"},
			},
			kind:    domain.GatewayPaymentSucceeded,
			booking: 42,
		},
		{
			name: "failed charge carries failure code",
			charge: omise.Charge{
				Base:        omise.Base{ID: "chrg_2"},
				Status:      omise.ChargeFailed,
				FailureCode: &code,
				Metadata:    map[string]interface{}{"booking_id": "7"},
			},
			kind:    domain.GatewayPaymentFailed,
			booking: 7,
			reason:  code,
		},
		{
			name: "pending charge without metadata",
			charge: omise.Charge{
				Base:   omise.Base{ID: "chrg_3"},
				Status: omise.ChargePending,
			},
			kind: domain.GatewayPaymentPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := chargeToEvent("evnt_1", &tt.charge)
			assert.Equal(t, "evnt_1", event.EventID)
			assert.Equal(t, tt.charge.ID, event.SessionID)
			assert.Equal(t, tt.kind, event.Kind)
			assert.Equal(t, tt.booking, event.BookingID)
			assert.Equal(t, tt.reason, event.FailureReason)
		})
	}
}
