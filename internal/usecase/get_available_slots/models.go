package get_available_slots

import (
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ServiceID       int64     // ID услуги
	Date            time.Time // Дата, на которую запрашиваются слоты (без времени)
	DurationMinutes int       // Переопределение длительности (0 = брать из услуги)
}

// Response модель ответа со списком доступных слотов и echo-метаданными
type Response struct {
	ServiceID           int64
	ListingID           int64
	Date                time.Time
	Timezone            string
	DurationMinutes     int
	SlotIntervalMinutes int
	Slots               []domain.Slot
}
