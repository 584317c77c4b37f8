package domain

// Default configuration values
const (
	DefaultDurationMinutes = 30
	DefaultTimezone        = "UTC"
	DefaultHoldTTLMinutes  = 60
	DefaultCurrency        = "USD"
)

// Business validation constants
const (
	MinDurationMinutes          = 5
	MaxDurationMinutes          = 1440 // сутки
	MinSlotIntervalMinutes      = 0    // 0 = использовать длительность услуги
	MaxSlotIntervalMinutes      = 480
	MaxBufferMinutes            = 480
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses терминальные статусы, не участвующие в проверках занятости
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusRefunded,
	StatusExpired,
	StatusCompleted,
}
