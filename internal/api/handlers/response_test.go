package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

type countingLogger struct {
	warns, errors int
}

func (l *countingLogger) Warn(string, ...interface{})  { l.warns++ }
func (l *countingLogger) Error(string, ...interface{}) { l.errors++ }

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
		{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{domain.ErrAccessDenied, http.StatusForbidden, CodeForbidden},
		{domain.ErrSlotUnavailable, http.StatusConflict, CodeSlotUnavailable},
		{domain.ErrCouponInvalid, http.StatusUnprocessableEntity, CodeCouponInvalid},
		{domain.ErrBookingExpired, http.StatusGone, CodeBookingExpired},
		{domain.ErrInvalidStateTransition, http.StatusConflict, CodeInvalidStateTransition},
		{domain.ErrCancellationWindowClosed, http.StatusConflict, CodeCancellationWindowClosed},
		{domain.ErrPaymentInProgress, http.StatusConflict, CodePaymentInProgress},
		{domain.ErrGateway, http.StatusBadGateway, CodeGatewayError},
		{domain.ErrSystem, http.StatusInternalServerError, CodeSystemError},
		{errors.New("boom"), http.StatusInternalServerError, CodeSystemError},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code := ErrorStatus(fmt.Errorf("%w: wrapped", tt.err))
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestRespondDomainError(t *testing.T) {
	t.Run("business error is exposed and logged as warn", func(t *testing.T) {
		log := &countingLogger{}
		rec := httptest.NewRecorder()
		err := fmt.Errorf("%w: time slot 5 is already booked", domain.ErrSlotUnavailable)

		RespondDomainError(rec, httptest.NewRequest(http.MethodPost, "/", nil), log, "POST /bookings", err)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, CodeSlotUnavailable, body.Code)
		assert.Contains(t, body.Message, "already booked")
		assert.Equal(t, 1, log.warns)
		assert.Zero(t, log.errors)
	})

	t.Run("system error is hidden and logged as error", func(t *testing.T) {
		log := &countingLogger{}
		rec := httptest.NewRecorder()
		err := fmt.Errorf("%w: pq: connection refused", domain.ErrSystem)

		RespondDomainError(rec, httptest.NewRequest(http.MethodPost, "/", nil), log, "POST /bookings", err)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
		assert.Equal(t, 1, log.errors)
	})

	t.Run("gateway error hides provider details", func(t *testing.T) {
		log := &countingLogger{}
		rec := httptest.NewRecorder()
		err := fmt.Errorf("%w: omisepay: create charge: authentication_failure: skey_test_5xyz is invalid", domain.ErrGateway)

		RespondDomainError(rec, httptest.NewRequest(http.MethodPost, "/", nil), log, "POST /payments/webhook", err)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, CodeGatewayError, body.Code)
		assert.Equal(t, msgGatewayError, body.Message)
		assert.NotContains(t, rec.Body.String(), "omisepay")
		assert.NotContains(t, rec.Body.String(), "skey_test")
		assert.Equal(t, 1, log.errors)
	})
}

func TestRespondGatewayError(t *testing.T) {
	log := &countingLogger{}
	rec := httptest.NewRecorder()

	RespondGatewayError(rec, httptest.NewRequest(http.MethodPost, "/", nil), log, "POST /bookings", 17,
		fmt.Errorf("%w: omisepay: create source: invalid_card: skey_test_5xyz", domain.ErrGateway))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, CodeGatewayError, body.Code)
	assert.Equal(t, msgGatewayError, body.Message)
	assert.NotContains(t, rec.Body.String(), "skey_test")
	assert.Equal(t, 1, log.errors)
	require.NotNil(t, body.BookingID)
	assert.Equal(t, int64(17), *body.BookingID)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	require.NoError(t, DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`)), &dst))
	assert.Equal(t, "x", dst.Name)

	assert.ErrorIs(t, DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``)), &dst), ErrEmptyBody)
	assert.Error(t, DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`)), &dst))
	assert.Error(t, DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &dst))
}

func TestPathID(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": "12"})
	id, err := PathID(req, "bookingId")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, raw := range []string{"", "0", "-1", "x"} {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": raw})
		_, err := PathID(req, "bookingId")
		assert.Error(t, err, raw)
	}
}
