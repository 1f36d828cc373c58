package cancel_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	cancelBooking "github.com/m04kA/SMC-CourtBookingService/internal/usecase/cancel_booking"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type stubUseCase struct {
	got *cancelBooking.Request
	err error
}

func (s *stubUseCase) Execute(_ context.Context, req *cancelBooking.Request) (*cancelBooking.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	reason := cancelBooking.DefaultReason
	if req.Reason != nil {
		reason = *req.Reason
	}
	return &cancelBooking.Response{
		BookingID:   req.BookingID,
		Status:      string(domain.StatusCancelled),
		Reason:      reason,
		CancelledAt: time.Date(2030, 3, 14, 10, 30, 0, 0, time.UTC),
	}, nil
}

func patch(h *Handler, body io.Reader) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/api/v1/bookings/{bookingId}/cancel", h.Handle).Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/12/cancel", body)
	req.Header.Set(middleware.HeaderUserID, "7")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_WithReason(t *testing.T) {
	uc := &stubUseCase{}
	rec := patch(NewHandler(uc, logger.NewNop()), strings.NewReader(`{"cancellationReason":"rain"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var body CancelBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CANCELLED", body.Status)
	assert.Equal(t, "rain", body.CancellationReason)
	assert.Equal(t, "2030-03-14T10:30:00Z", body.CancelledAt)
	assert.Equal(t, int64(7), uc.got.UserID)
	assert.Equal(t, int64(12), uc.got.BookingID)
}

func TestHandle_EmptyBody(t *testing.T) {
	uc := &stubUseCase{}
	rec := patch(NewHandler(uc, logger.NewNop()), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, uc.got)
	assert.Nil(t, uc.got.Reason)
	assert.Contains(t, rec.Body.String(), cancelBooking.DefaultReason)
}

func TestHandle_Errors(t *testing.T) {
	rec := patch(NewHandler(&stubUseCase{}, logger.NewNop()), strings.NewReader(`{"reason":1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrCancellationWindowClosed, http.StatusConflict, handlers.CodeCancellationWindowClosed},
		{domain.ErrInvalidStateTransition, http.StatusConflict, handlers.CodeInvalidStateTransition},
		{domain.ErrAccessDenied, http.StatusForbidden, handlers.CodeForbidden},
		{domain.ErrNotFound, http.StatusNotFound, handlers.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			uc := &stubUseCase{err: fmt.Errorf("%w: booking 12", tt.err)}
			rec := patch(NewHandler(uc, logger.NewNop()), nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}
