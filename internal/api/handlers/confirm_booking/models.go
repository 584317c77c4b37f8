package confirm_booking

import (
	"github.com/andmv/LDM-BookingService/internal/service/bookings/models"
)

// ConfirmBookingRequest HTTP request model
type ConfirmBookingRequest struct {
	ExternalOrderRef *string `json:"externalOrderRef,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *ConfirmBookingRequest) ToServiceRequest(userID int64) *models.ConfirmBookingRequest {
	return &models.ConfirmBookingRequest{
		UserID:           userID,
		ExternalOrderRef: r.ExternalOrderRef,
	}
}
