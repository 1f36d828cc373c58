package get_facility_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// ToServiceRequest собирает запрос к сервису из query параметров
// courtId, startDate, endDate, status, includeInactive - все опциональны
func ToServiceRequest(facilityID, userID int64, query url.Values) (*models.GetFacilityBookingsRequest, error) {
	req := &models.GetFacilityBookingsRequest{
		UserID:     userID,
		FacilityID: facilityID,
	}

	if raw := query.Get("courtId"); raw != "" {
		courtID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || courtID <= 0 {
			return nil, fmt.Errorf("invalid courtId %q", raw)
		}
		req.CourtID = &courtID
	}

	if raw := query.Get("startDate"); raw != "" {
		date, err := types.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
	}

	if raw := query.Get("endDate"); raw != "" {
		date, err := types.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		req.EndDate = &date
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status := strings.ToUpper(raw)
		req.Status = &status
	}

	if raw := query.Get("includeInactive"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive %q", raw)
		}
		req.IncludeInactive = include
	}

	return req, nil
}
