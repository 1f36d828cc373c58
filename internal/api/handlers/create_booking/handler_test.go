package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type stubUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

func post(h *Handler, userID string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(h.Handle)).ServeHTTP(rec, req)
	return rec
}

const validBody = `{"facilityId":1,"courtId":2,"timeSlotId":5,"couponCode":"SAVE10","specialRequests":"left court"}`

func TestHandle_Created(t *testing.T) {
	deadline := time.Date(2030, 3, 14, 11, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &createBooking.Response{
		BookingID:       41,
		Status:          string(domain.StatusPending),
		FinalAmount:     decimal.RequireFromString("1115.4"),
		DiscountAmount:  decimal.NewFromInt(100),
		Currency:        "INR",
		PaymentDeadline: deadline,
		CheckoutURL:     "http://sandbox.local/checkout/sess_1",
		SessionID:       "sess_1",
	}}

	rec := post(NewHandler(uc, logger.NewNop()), "7", validBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body CreateBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(41), body.BookingID)
	assert.Equal(t, "1115.40", body.FinalAmount)
	assert.Equal(t, "100.00", body.DiscountAmount)
	assert.Equal(t, "2030-03-14T11:00:00Z", body.PaymentDeadline)
	assert.Equal(t, "sess_1", body.SessionID)

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(7), uc.got.UserID)
	assert.Equal(t, int64(5), uc.got.TimeSlotID)
	assert.Equal(t, "SAVE10", *uc.got.CouponCode)
}

func TestHandle_GatewayFailureReturnsBookingID(t *testing.T) {
	uc := &stubUseCase{
		resp: &createBooking.Response{BookingID: 41, Status: string(domain.StatusPending)},
		err:  fmt.Errorf("%w: connection reset", domain.ErrGateway),
	}

	rec := post(NewHandler(uc, logger.NewNop()), "7", validBody)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, handlers.CodeGatewayError, body.Code)
	require.NotNil(t, body.BookingID)
	assert.Equal(t, int64(41), *body.BookingID)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "no user", body: validBody, wantStatus: http.StatusUnauthorized, wantCode: handlers.CodeUnauthorized},
		{name: "bad body", userID: "7", body: `{"timeSlotId":"five"}`, wantStatus: http.StatusBadRequest, wantCode: handlers.CodeInvalidInput},
		{name: "slot taken", userID: "7", body: validBody, err: domain.ErrSlotUnavailable, wantStatus: http.StatusConflict, wantCode: handlers.CodeSlotUnavailable},
		{name: "coupon", userID: "7", body: validBody, err: domain.ErrCouponInvalid, wantStatus: http.StatusUnprocessableEntity, wantCode: handlers.CodeCouponInvalid},
		{name: "not found", userID: "7", body: validBody, err: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: handlers.CodeNotFound},
		{name: "system", userID: "7", body: validBody, err: domain.ErrSystem, wantStatus: http.StatusInternalServerError, wantCode: handlers.CodeSystemError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{}
			if tt.err != nil {
				uc.err = fmt.Errorf("%w: details", tt.err)
			}

			rec := post(NewHandler(uc, logger.NewNop()), tt.userID, tt.body)

			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Nil(t, body.BookingID)
		})
	}
}
