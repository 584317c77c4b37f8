package get_listing_bookings

import (
	"net/url"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/internal/service/bookings/models"
)

// ToServiceRequest собирает запрос сервиса из query параметров
func ToServiceRequest(listingID, userID int64, query url.Values) (*models.GetListingBookingsRequest, error) {
	req := &models.GetListingBookingsRequest{
		UserID:    userID,
		ListingID: listingID,
	}

	if startStr := query.Get("start_date"); startStr != "" {
		start, err := time.Parse(domain.DateFormat, startStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &start
	}

	if endStr := query.Get("end_date"); endStr != "" {
		end, err := time.Parse(domain.DateFormat, endStr)
		if err != nil {
			return nil, err
		}
		req.EndDate = &end
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	req.IncludeInactive = query.Get("include_inactive") == "true"

	return req, nil
}
