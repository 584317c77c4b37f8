package create_hold

import (
	"fmt"
	"time"

	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ListingID <= 0 {
		return fmt.Errorf("%w: listingID must be positive", ErrInvalidInput)
	}

	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}

	if !req.End.After(req.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, req.Timezone)
		}
	}

	return nil
}

// validateService проверяет, что услугу можно бронировать и что она
// принадлежит листингу из запроса
func validateService(service *catalogservice.Service, listingID int64) error {
	if !service.IsActive() {
		return ErrServiceNotBookable
	}

	if service.IsAddon {
		return ErrServiceNotBookable
	}

	if service.ListingID != listingID {
		return ErrListingMismatch
	}

	return nil
}
