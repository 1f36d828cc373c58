package retry_payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	retryPayment "github.com/m04kA/SMC-CourtBookingService/internal/usecase/retry_payment"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type stubUseCase struct {
	got  *retryPayment.Request
	resp *retryPayment.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *retryPayment.Request) (*retryPayment.Response, error) {
	s.got = req
	return s.resp, s.err
}

func post(h *Handler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/api/v1/bookings/{bookingId}/retry-payment", h.Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.Header.Set(middleware.HeaderUserID, "7")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	uc := &stubUseCase{resp: &retryPayment.Response{
		BookingID:       12,
		PaymentID:       4,
		FinalAmount:     decimal.RequireFromString("1215.4"),
		Currency:        "INR",
		PaymentDeadline: time.Date(2030, 3, 14, 11, 0, 0, 0, time.UTC),
		CheckoutURL:     "http://sandbox.local/checkout/sess_2",
		SessionID:       "sess_2",
	}}

	rec := post(NewHandler(uc, logger.NewNop()), "/api/v1/bookings/12/retry-payment")
	require.Equal(t, http.StatusOK, rec.Code)

	var body RetryPaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body.PaymentID)
	assert.Equal(t, "1215.40", body.FinalAmount)
	assert.Equal(t, "sess_2", body.SessionID)
	assert.Equal(t, &retryPayment.Request{UserID: 7, BookingID: 12}, uc.got)
}

func TestHandle_GatewayFailure(t *testing.T) {
	uc := &stubUseCase{
		resp: &retryPayment.Response{BookingID: 12, PaymentID: 4},
		err:  fmt.Errorf("%w: declined by provider", domain.ErrGateway),
	}

	rec := post(NewHandler(uc, logger.NewNop()), "/api/v1/bookings/12/retry-payment")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.BookingID)
	assert.Equal(t, int64(12), *body.BookingID)
}

func TestHandle_Errors(t *testing.T) {
	rec := post(NewHandler(&stubUseCase{}, logger.NewNop()), "/api/v1/bookings/-4/retry-payment")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrBookingExpired, http.StatusGone, handlers.CodeBookingExpired},
		{domain.ErrPaymentInProgress, http.StatusConflict, handlers.CodePaymentInProgress},
		{domain.ErrInvalidStateTransition, http.StatusConflict, handlers.CodeInvalidStateTransition},
		{domain.ErrSlotUnavailable, http.StatusConflict, handlers.CodeSlotUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			uc := &stubUseCase{err: fmt.Errorf("%w: booking 12", tt.err)}
			rec := post(NewHandler(uc, logger.NewNop()), "/api/v1/bookings/12/retry-payment")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}
