package domain

import (
	"time"

	"github.com/andmv/LDM-BookingService/pkg/types"
)

// CutoffUnit единица измерения для reschedule cutoff
type CutoffUnit string

const (
	CutoffUnitMinutes CutoffUnit = "minutes"
	CutoffUnitHours   CutoffUnit = "hours"
	CutoffUnitDays    CutoffUnit = "days"
)

// ClockRange диапазон локального времени суток внутри одного дня
type ClockRange struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// WeekSchedule расписание по дням недели (ключи mon..sun).
// На день допускается несколько диапазонов (сменный график).
type WeekSchedule map[string][]ClockRange

// ScheduleConfig represents the booking configuration for a single listing.
// Hour/break ranges are local clock times; they are reinterpreted against the
// target date in the listing's timezone at evaluation time.
type ScheduleConfig struct {
	ID        int64
	ListingID int64

	Enabled  bool
	Timezone string // IANA zone id, пустое значение = DefaultTimezone

	Hours   WeekSchedule
	Breaks  WeekSchedule
	DaysOff []string // даты YYYY-MM-DD, полностью закрывают день

	SlotIntervalMinutes int // 0 = шаг равен длительности услуги
	BufferBeforeMinutes int
	BufferAfterMinutes  int

	RescheduleEnabled         bool
	RescheduleRestrictEnabled bool
	RescheduleCutoffValue     int
	RescheduleCutoffUnit      CutoffUnit

	// Считать ли неоплаченные холды занимающими слот
	PendingBlocksSlots bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// weekdayKeys порядок ключей соответствует time.Weekday (Sunday = 0)
var weekdayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WeekdayKey возвращает ключ расписания для дня недели
func WeekdayKey(w time.Weekday) string {
	return weekdayKeys[int(w)]
}

// Location возвращает таймзону листинга (UTC при пустой или неизвестной зоне)
func (c *ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// HoursFor возвращает рабочие диапазоны на день недели
func (c *ScheduleConfig) HoursFor(w time.Weekday) []ClockRange {
	return c.Hours[WeekdayKey(w)]
}

// BreaksFor возвращает перерывы на день недели
func (c *ScheduleConfig) BreaksFor(w time.Weekday) []ClockRange {
	return c.Breaks[WeekdayKey(w)]
}

// IsDayOff проверяет, закрыт ли день полностью (date в формате YYYY-MM-DD)
func (c *ScheduleConfig) IsDayOff(date string) bool {
	for _, d := range c.DaysOff {
		if d == date {
			return true
		}
	}
	return false
}

// RescheduleCutoffMinutes возвращает cutoff политики переноса в минутах
func (c *ScheduleConfig) RescheduleCutoffMinutes() int {
	switch c.RescheduleCutoffUnit {
	case CutoffUnitHours:
		return c.RescheduleCutoffValue * 60
	case CutoffUnitDays:
		return c.RescheduleCutoffValue * 24 * 60
	default:
		return c.RescheduleCutoffValue
	}
}

// CanReschedule проверяет политику переноса для бронирования, начинающегося в start.
// Если перенос ограничен по времени, запрещает его ближе cutoff к началу.
func (c *ScheduleConfig) CanReschedule(start, now time.Time) bool {
	if !c.RescheduleEnabled {
		return false
	}
	if !c.RescheduleRestrictEnabled {
		return true
	}
	cutoff := time.Duration(c.RescheduleCutoffMinutes()) * time.Minute
	return start.Sub(now) >= cutoff
}
