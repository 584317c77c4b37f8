package get_available_slots

import (
	"fmt"

	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.DurationMinutes < 0 {
		return fmt.Errorf("%w: durationMinutes must not be negative", ErrInvalidInput)
	}

	return nil
}

// validateService проверяет, что услугу можно бронировать напрямую
func validateService(service *catalogservice.Service) error {
	if !service.IsActive() {
		return ErrServiceNotBookable
	}

	// Аддоны бронируются только вместе с основной услугой
	if service.IsAddon {
		return ErrServiceNotBookable
	}

	if service.ListingID <= 0 {
		return ErrListingNotLinked
	}

	return nil
}
