package get_available_slots

import (
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	getAvailableSlots "github.com/andmv/LDM-BookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ServiceID           int64           `json:"serviceId"`
	ListingID           int64           `json:"listingId"`
	Date                string          `json:"date"`
	Timezone            string          `json:"timezone"`
	DurationMinutes     int             `json:"durationMinutes"`
	SlotIntervalMinutes int             `json:"slotIntervalMinutes"`
	Slots               []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"` // Локальное время начала "HH:MM"
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Start: slot.Start,
			End:   slot.End,
			Label: slot.Label,
		}
	}

	return &AvailableSlotsResponse{
		ServiceID:           resp.ServiceID,
		ListingID:           resp.ListingID,
		Date:                resp.Date.Format(domain.DateFormat),
		Timezone:            resp.Timezone,
		DurationMinutes:     resp.DurationMinutes,
		SlotIntervalMinutes: resp.SlotIntervalMinutes,
		Slots:               slots,
	}
}

// ToUseCaseRequest создает запрос use case из параметров запроса
func ToUseCaseRequest(serviceID int64, dateStr string, durationMinutes int) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		ServiceID:       serviceID,
		Date:            date,
		DurationMinutes: durationMinutes,
	}, nil
}
