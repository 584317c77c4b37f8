package update_schedule_config

import (
	"github.com/andmv/LDM-BookingService/internal/service/schedule/models"
)

// UpdateScheduleConfigRequest HTTP request model.
// Несет полную конфигурацию расписания листинга.
type UpdateScheduleConfigRequest struct {
	Enabled  bool   `json:"enabled"`
	Timezone string `json:"timezone,omitempty"`

	Hours   map[string][]models.ClockRange `json:"hours,omitempty"`
	Breaks  map[string][]models.ClockRange `json:"breaks,omitempty"`
	DaysOff []string                       `json:"daysOff,omitempty"`

	SlotIntervalMinutes int `json:"slotIntervalMinutes"`
	BufferBeforeMinutes int `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int `json:"bufferAfterMinutes"`

	RescheduleEnabled         bool   `json:"rescheduleEnabled"`
	RescheduleRestrictEnabled bool   `json:"rescheduleRestrictEnabled"`
	RescheduleCutoffValue     int    `json:"rescheduleCutoffValue"`
	RescheduleCutoffUnit      string `json:"rescheduleCutoffUnit,omitempty"`

	PendingBlocksSlots bool `json:"pendingBlocksSlots"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateScheduleConfigRequest) ToServiceRequest(listingID, userID int64) *models.UpdateScheduleConfigRequest {
	return &models.UpdateScheduleConfigRequest{
		UserID:                    userID,
		ListingID:                 listingID,
		Enabled:                   r.Enabled,
		Timezone:                  r.Timezone,
		Hours:                     r.Hours,
		Breaks:                    r.Breaks,
		DaysOff:                   r.DaysOff,
		SlotIntervalMinutes:       r.SlotIntervalMinutes,
		BufferBeforeMinutes:       r.BufferBeforeMinutes,
		BufferAfterMinutes:        r.BufferAfterMinutes,
		RescheduleEnabled:         r.RescheduleEnabled,
		RescheduleRestrictEnabled: r.RescheduleRestrictEnabled,
		RescheduleCutoffValue:     r.RescheduleCutoffValue,
		RescheduleCutoffUnit:      r.RescheduleCutoffUnit,
		PendingBlocksSlots:        r.PendingBlocksSlots,
	}
}
