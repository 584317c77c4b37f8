package reschedule_booking

import (
	"time"

	"github.com/andmv/LDM-BookingService/internal/service/bookings/models"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewStart time.Time `json:"newStart"`
	NewEnd   time.Time `json:"newEnd"`
	Timezone string    `json:"timezone,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RescheduleBookingRequest) ToServiceRequest(userID int64) *models.RescheduleBookingRequest {
	return &models.RescheduleBookingRequest{
		UserID:   userID,
		NewStart: r.NewStart,
		NewEnd:   r.NewEnd,
		Timezone: r.Timezone,
	}
}
