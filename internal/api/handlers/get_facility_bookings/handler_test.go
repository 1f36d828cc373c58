package get_facility_bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type stubService struct {
	got *models.GetFacilityBookingsRequest
	err error
}

func (s *stubService) GetFacilityBookings(_ context.Context, req *models.GetFacilityBookingsRequest) (*models.BookingListResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 5}}}, nil
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/api/v1/facilities/{facilityId}/bookings", h.Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(middleware.HeaderUserID, "9")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestToServiceRequest(t *testing.T) {
	query := url.Values{
		"courtId":         {"2"},
		"startDate":       {"2030-03-01"},
		"endDate":         {"2030-03-31"},
		"status":          {"no_show"},
		"includeInactive": {"true"},
	}

	req, err := ToServiceRequest(1, 9, query)
	require.NoError(t, err)
	assert.Equal(t, int64(2), *req.CourtID)
	assert.Equal(t, "2030-03-01", req.StartDate.String())
	assert.Equal(t, "2030-03-31", req.EndDate.String())
	assert.Equal(t, "NO_SHOW", *req.Status)
	assert.True(t, req.IncludeInactive)

	for _, bad := range []url.Values{
		{"courtId": {"x"}},
		{"startDate": {"01.03.2030"}},
		{"includeInactive": {"maybe"}},
	} {
		_, err := ToServiceRequest(1, 9, bad)
		assert.Error(t, err, bad.Encode())
	}
}

func TestHandle(t *testing.T) {
	svc := &stubService{}
	rec := serve(NewHandler(svc, logger.NewNop()), "/api/v1/facilities/1/bookings?status=pending")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), svc.got.FacilityID)
	assert.Equal(t, int64(9), svc.got.UserID)

	var body []models.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, int64(5), body[0].ID)
}

func TestHandle_Errors(t *testing.T) {
	rec := serve(NewHandler(&stubService{}, logger.NewNop()), "/api/v1/facilities/1/bookings?courtId=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc := &stubService{err: fmt.Errorf("%w: user 9 does not own facility 1", domain.ErrAccessDenied)}
	rec = serve(NewHandler(svc, logger.NewNop()), "/api/v1/facilities/1/bookings")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
