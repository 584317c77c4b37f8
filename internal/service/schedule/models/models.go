package models

import (
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/pkg/types"
)

// Request модели

// ClockRange диапазон локального времени "HH:MM"
type ClockRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UpdateScheduleConfigRequest запрос на обновление расписания листинга.
// Запрос всегда несет полную конфигурацию: частичных обновлений нет,
// клиент читает текущее состояние и отправляет его целиком.
type UpdateScheduleConfigRequest struct {
	UserID    int64 `json:"userId"`
	ListingID int64 `json:"listingId"`

	Enabled  bool   `json:"enabled"`
	Timezone string `json:"timezone,omitempty"`

	Hours   map[string][]ClockRange `json:"hours,omitempty"`
	Breaks  map[string][]ClockRange `json:"breaks,omitempty"`
	DaysOff []string                `json:"daysOff,omitempty"`

	SlotIntervalMinutes int `json:"slotIntervalMinutes"`
	BufferBeforeMinutes int `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int `json:"bufferAfterMinutes"`

	RescheduleEnabled         bool   `json:"rescheduleEnabled"`
	RescheduleRestrictEnabled bool   `json:"rescheduleRestrictEnabled"`
	RescheduleCutoffValue     int    `json:"rescheduleCutoffValue"`
	RescheduleCutoffUnit      string `json:"rescheduleCutoffUnit,omitempty"`

	PendingBlocksSlots bool `json:"pendingBlocksSlots"`
}

// ToDomainConfig конвертирует запрос в domain модель
func (r *UpdateScheduleConfigRequest) ToDomainConfig() *domain.ScheduleConfig {
	cutoffUnit := domain.CutoffUnit(r.RescheduleCutoffUnit)
	if r.RescheduleCutoffUnit == "" {
		cutoffUnit = domain.CutoffUnitMinutes
	}

	return &domain.ScheduleConfig{
		ListingID:                 r.ListingID,
		Enabled:                   r.Enabled,
		Timezone:                  r.Timezone,
		Hours:                     toWeekSchedule(r.Hours),
		Breaks:                    toWeekSchedule(r.Breaks),
		DaysOff:                   r.DaysOff,
		SlotIntervalMinutes:       r.SlotIntervalMinutes,
		BufferBeforeMinutes:       r.BufferBeforeMinutes,
		BufferAfterMinutes:        r.BufferAfterMinutes,
		RescheduleEnabled:         r.RescheduleEnabled,
		RescheduleRestrictEnabled: r.RescheduleRestrictEnabled,
		RescheduleCutoffValue:     r.RescheduleCutoffValue,
		RescheduleCutoffUnit:      cutoffUnit,
		PendingBlocksSlots:        r.PendingBlocksSlots,
	}
}

// Response модели

// ScheduleConfigResponse ответ с конфигурацией расписания листинга
type ScheduleConfigResponse struct {
	ListingID int64 `json:"listingId"`

	Enabled  bool   `json:"enabled"`
	Timezone string `json:"timezone"`

	Hours   map[string][]ClockRange `json:"hours"`
	Breaks  map[string][]ClockRange `json:"breaks"`
	DaysOff []string                `json:"daysOff"`

	SlotIntervalMinutes int `json:"slotIntervalMinutes"`
	BufferBeforeMinutes int `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int `json:"bufferAfterMinutes"`

	RescheduleEnabled         bool   `json:"rescheduleEnabled"`
	RescheduleRestrictEnabled bool   `json:"rescheduleRestrictEnabled"`
	RescheduleCutoffValue     int    `json:"rescheduleCutoffValue"`
	RescheduleCutoffUnit      string `json:"rescheduleCutoffUnit"`

	PendingBlocksSlots bool `json:"pendingBlocksSlots"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Методы конвертации

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.ScheduleConfig) *ScheduleConfigResponse {
	if c == nil {
		return nil
	}

	return &ScheduleConfigResponse{
		ListingID:                 c.ListingID,
		Enabled:                   c.Enabled,
		Timezone:                  c.Timezone,
		Hours:                     fromWeekSchedule(c.Hours),
		Breaks:                    fromWeekSchedule(c.Breaks),
		DaysOff:                   daysOffOrEmpty(c.DaysOff),
		SlotIntervalMinutes:       c.SlotIntervalMinutes,
		BufferBeforeMinutes:       c.BufferBeforeMinutes,
		BufferAfterMinutes:        c.BufferAfterMinutes,
		RescheduleEnabled:         c.RescheduleEnabled,
		RescheduleRestrictEnabled: c.RescheduleRestrictEnabled,
		RescheduleCutoffValue:     c.RescheduleCutoffValue,
		RescheduleCutoffUnit:      string(c.RescheduleCutoffUnit),
		PendingBlocksSlots:        c.PendingBlocksSlots,
		CreatedAt:                 c.CreatedAt,
		UpdatedAt:                 c.UpdatedAt,
	}
}

func toWeekSchedule(m map[string][]ClockRange) domain.WeekSchedule {
	if m == nil {
		return domain.WeekSchedule{}
	}
	out := make(domain.WeekSchedule, len(m))
	for day, ranges := range m {
		converted := make([]domain.ClockRange, len(ranges))
		for i, r := range ranges {
			converted[i] = domain.ClockRange{
				Start: types.TimeString(r.Start),
				End:   types.TimeString(r.End),
			}
		}
		out[day] = converted
	}
	return out
}

func fromWeekSchedule(m domain.WeekSchedule) map[string][]ClockRange {
	out := make(map[string][]ClockRange, len(m))
	for day, ranges := range m {
		converted := make([]ClockRange, len(ranges))
		for i, r := range ranges {
			converted[i] = ClockRange{
				Start: r.Start.String(),
				End:   r.End.String(),
			}
		}
		out[day] = converted
	}
	return out
}

func daysOffOrEmpty(d []string) []string {
	if d == nil {
		return []string{}
	}
	return d
}
