package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andmv/LDM-BookingService/internal/domain"
	scheduleRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/schedule"
	catalogClient "github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
	"github.com/andmv/LDM-BookingService/pkg/types"
)

type mockBookingRepo struct {
	busy       []timerange.Range
	err        error
	lastFilter domain.BlockingRangesFilter
}

func (m *mockBookingRepo) FindBlockingRanges(_ context.Context, filter domain.BlockingRangesFilter) ([]timerange.Range, error) {
	m.lastFilter = filter
	return m.busy, m.err
}

type mockScheduleRepo struct {
	cfg *domain.ScheduleConfig
	err error
}

func (m *mockScheduleRepo) GetByListingID(_ context.Context, _ int64) (*domain.ScheduleConfig, error) {
	return m.cfg, m.err
}

type mockCatalog struct {
	service *catalogClient.Service
	err     error
}

func (m *mockCatalog) GetService(_ context.Context, _ int64) (*catalogClient.Service, error) {
	return m.service, m.err
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func clockRange(start, end string) domain.ClockRange {
	return domain.ClockRange{Start: types.TimeString(start), End: types.TimeString(end)}
}

func activeService(listingID int64, durationMinutes int) *catalogClient.Service {
	return &catalogClient.Service{
		ID:              10,
		ListingID:       listingID,
		Name:            "Deep tissue massage",
		DurationMinutes: durationMinutes,
		Price:           60,
		Currency:        "USD",
		Status:          "active",
	}
}

func defaultConfig() *domain.ScheduleConfig {
	return &domain.ScheduleConfig{
		Enabled:  true,
		Timezone: "UTC",
		Hours: domain.WeekSchedule{
			"mon": {clockRange("09:00", "12:00")},
		},
		SlotIntervalMinutes: 0,
		PendingBlocksSlots:  true,
	}
}

func newTestUseCase(bookings *mockBookingRepo, schedules *mockScheduleRepo, catalog *mockCatalog, now time.Time) *UseCase {
	uc := NewUseCase(bookings, schedules, catalog, time.Hour, noopLogger{})
	uc.timeProvider = &fixedTime{now: now}
	return uc
}

// 2026-09-07 is a Monday.
var testDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func TestExecute_BasicDay(t *testing.T) {
	bookings := &mockBookingRepo{}
	schedules := &mockScheduleRepo{cfg: defaultConfig()}
	catalog := &mockCatalog{service: activeService(7, 60)}

	uc := newTestUseCase(bookings, schedules, catalog, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// 09:00-12:00, 60-минутные слоты с шагом 60: 09:00, 10:00, 11:00
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "10:00", resp.Slots[1].Label)
	assert.Equal(t, "11:00", resp.Slots[2].Label)
	assert.Equal(t, int64(7), resp.ListingID)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, "UTC", resp.Timezone)
}

func TestExecute_BusyRangeFiltersOverlapping(t *testing.T) {
	day := testDate
	bookings := &mockBookingRepo{busy: []timerange.Range{
		{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
	}}
	schedules := &mockScheduleRepo{cfg: defaultConfig()}
	catalog := &mockCatalog{service: activeService(7, 60)}

	uc := newTestUseCase(bookings, schedules, catalog, day)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: day})
	require.NoError(t, err)

	// Полуоткрытые интервалы: бронь 10:00-11:00 не трогает слоты 09:00 и 11:00
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "11:00", resp.Slots[1].Label)
}

func TestExecute_SlotIntervalShorterThanDuration(t *testing.T) {
	cfg := defaultConfig()
	cfg.SlotIntervalMinutes = 30

	bookings := &mockBookingRepo{}
	schedules := &mockScheduleRepo{cfg: cfg}
	catalog := &mockCatalog{service: activeService(7, 60)}

	uc := newTestUseCase(bookings, schedules, catalog, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// Шаг 30, длительность 60: 09:00, 09:30, ..., 11:00 - последний старт,
	// помещающийся до 12:00
	require.Len(t, resp.Slots, 5)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "09:30", resp.Slots[1].Label)
	assert.Equal(t, "11:00", resp.Slots[4].Label)
	assert.Equal(t, 30, resp.SlotIntervalMinutes)
}

func TestExecute_BreaksExcluded(t *testing.T) {
	cfg := defaultConfig()
	cfg.Breaks = domain.WeekSchedule{
		"mon": {clockRange("10:00", "11:00")},
	}

	bookings := &mockBookingRepo{}
	schedules := &mockScheduleRepo{cfg: cfg}
	catalog := &mockCatalog{service: activeService(7, 60)}

	uc := newTestUseCase(bookings, schedules, catalog, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "11:00", resp.Slots[1].Label)
}

func TestExecute_BuffersAdditive(t *testing.T) {
	cfg := defaultConfig()
	cfg.SlotIntervalMinutes = 30
	cfg.BufferAfterMinutes = 15

	service := activeService(7, 30)
	service.BufferAfterMinutes = 15

	day := testDate
	bookings := &mockBookingRepo{busy: []timerange.Range{
		{Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 30*time.Minute)},
	}}
	schedules := &mockScheduleRepo{cfg: cfg}
	catalog := &mockCatalog{service: service}

	uc := newTestUseCase(bookings, schedules, catalog, day)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: day})
	require.NoError(t, err)

	// Занято 10:00-10:30, суммарный буфер после 30 минут: 10:30 тоже выпадает
	labels := make([]string, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		labels = append(labels, s.Label)
	}
	assert.NotContains(t, labels, "10:00")
	assert.NotContains(t, labels, "10:30")
	assert.Contains(t, labels, "09:30")
	assert.Contains(t, labels, "11:00")
}

func TestExecute_DurationOverride(t *testing.T) {
	bookings := &mockBookingRepo{}
	schedules := &mockScheduleRepo{cfg: defaultConfig()}
	catalog := &mockCatalog{service: activeService(7, 60)}

	uc := newTestUseCase(bookings, schedules, catalog, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate, DurationMinutes: 90})
	require.NoError(t, err)

	assert.Equal(t, 90, resp.DurationMinutes)
	// 09:00-12:00, 90 минут с шагом 90: 09:00 и 10:30
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "10:30", resp.Slots[1].Label)
}

func TestExecute_DisabledListingReturnsEmpty(t *testing.T) {
	cfg := defaultConfig()
	cfg.Enabled = false

	uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{cfg: cfg}, &mockCatalog{service: activeService(7, 60)}, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_MissingConfigReturnsEmpty(t *testing.T) {
	schedules := &mockScheduleRepo{err: scheduleRepo.ErrConfigNotFound}

	uc := newTestUseCase(&mockBookingRepo{}, schedules, &mockCatalog{service: activeService(7, 60)}, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.Equal(t, domain.DefaultTimezone, resp.Timezone)
}

func TestExecute_DayOffReturnsEmpty(t *testing.T) {
	cfg := defaultConfig()
	cfg.DaysOff = []string{"2026-09-07"}

	uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{cfg: cfg}, &mockCatalog{service: activeService(7, 60)}, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	catalog := &mockCatalog{err: catalogClient.ErrServiceNotFound}

	uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{}, catalog, testDate)
	_, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_InactiveServiceRejected(t *testing.T) {
	service := activeService(7, 60)
	service.Status = "archived"

	uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{}, &mockCatalog{service: service}, testDate)
	_, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	assert.ErrorIs(t, err, ErrServiceNotBookable)
}

func TestExecute_AddonRejected(t *testing.T) {
	service := activeService(7, 60)
	service.IsAddon = true

	uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{}, &mockCatalog{service: service}, testDate)
	_, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	assert.ErrorIs(t, err, ErrServiceNotBookable)
}

func TestExecute_ServiceWithoutListingRejected(t *testing.T) {
	uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{}, &mockCatalog{service: activeService(0, 60)}, testDate)
	_, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	assert.ErrorIs(t, err, ErrListingNotLinked)
}

func TestExecute_TimezoneWeekdayResolution(t *testing.T) {
	// 2026-09-07 00:00 в Нью-Йорке - понедельник, часы листинга должны
	// применяться по локальному дню, а не по UTC
	cfg := defaultConfig()
	cfg.Timezone = "America/New_York"

	bookings := &mockBookingRepo{}
	uc := newTestUseCase(bookings, &mockScheduleRepo{cfg: cfg}, &mockCatalog{service: activeService(7, 60)}, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "America/New_York", resp.Timezone)

	loc, _ := time.LoadLocation("America/New_York")
	expected := time.Date(2026, 9, 7, 9, 0, 0, 0, loc)
	assert.True(t, resp.Slots[0].Start.Equal(expected))

	// Окно занятости - весь локальный день
	assert.True(t, bookings.lastFilter.WindowStart.Equal(time.Date(2026, 9, 7, 0, 0, 0, 0, loc)))
	assert.True(t, bookings.lastFilter.WindowEnd.Equal(time.Date(2026, 9, 8, 0, 0, 0, 0, loc)))
}

func TestExecute_PendingBlocksSlotsFlag(t *testing.T) {
	cfg := defaultConfig()
	cfg.PendingBlocksSlots = false

	bookings := &mockBookingRepo{}
	uc := newTestUseCase(bookings, &mockScheduleRepo{cfg: cfg}, &mockCatalog{service: activeService(7, 60)}, testDate)
	_, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, []domain.BookingStatus{domain.StatusConfirmed}, bookings.lastFilter.Statuses)
}

func TestExecute_StaleHoldCutoffPassedToRepo(t *testing.T) {
	now := testDate.Add(8 * time.Hour)

	bookings := &mockBookingRepo{}
	uc := newTestUseCase(bookings, &mockScheduleRepo{cfg: defaultConfig()}, &mockCatalog{service: activeService(7, 60)}, now)
	_, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	assert.True(t, bookings.lastFilter.StalePendingBefore.Equal(now.Add(-time.Hour)))
}

func TestExecute_OverlappingHourRangesDeduped(t *testing.T) {
	cfg := defaultConfig()
	cfg.Hours = domain.WeekSchedule{
		"mon": {clockRange("09:00", "11:00"), clockRange("10:00", "12:00")},
	}

	uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{cfg: cfg}, &mockCatalog{service: activeService(7, 60)}, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// 10:00 генерируется из обоих диапазонов, но в ответе один раз
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "10:00", resp.Slots[1].Label)
	assert.Equal(t, "11:00", resp.Slots[2].Label)
}

func TestExecute_InvalidRequest(t *testing.T) {
	uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{}, &mockCatalog{}, testDate)

	_, err := uc.Execute(context.Background(), &Request{ServiceID: 0, Date: testDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{ServiceID: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate, DurationMinutes: -5})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_FullWorkingDay(t *testing.T) {
	cfg := defaultConfig()
	cfg.Hours = domain.WeekSchedule{"mon": {clockRange("09:00", "17:00")}}
	cfg.SlotIntervalMinutes = 30

	bookings := &mockBookingRepo{}
	schedules := &mockScheduleRepo{cfg: cfg}
	catalog := &mockCatalog{service: activeService(7, 30)}

	uc := newTestUseCase(bookings, schedules, catalog, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// 8 часов по 30 минут: 09:00 ... 16:30
	require.Len(t, resp.Slots, 16)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "16:30", resp.Slots[15].Label)
}

func TestExecute_IntervalLargerThanDurationClamped(t *testing.T) {
	cfg := defaultConfig()
	cfg.Hours = domain.WeekSchedule{"mon": {clockRange("09:00", "11:00")}}
	cfg.SlotIntervalMinutes = 60 // больше длительности услуги

	bookings := &mockBookingRepo{}
	schedules := &mockScheduleRepo{cfg: cfg}
	catalog := &mockCatalog{service: activeService(7, 30)}

	uc := newTestUseCase(bookings, schedules, catalog, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// Шаг ограничивается длительностью: слоты каждые 30 минут
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "10:30", resp.Slots[3].Label)
	assert.Equal(t, 30, resp.SlotIntervalMinutes)
}

func TestExecute_SpringForwardDayKeepsWallClock(t *testing.T) {
	cfg := defaultConfig()
	cfg.Timezone = "America/New_York"
	cfg.Hours = domain.WeekSchedule{"sun": {clockRange("09:00", "12:00")}}

	// 2026-03-08 - воскресенье с весенним переводом часов (02:00 -> 03:00)
	day := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	bookings := &mockBookingRepo{}
	schedules := &mockScheduleRepo{cfg: cfg}
	catalog := &mockCatalog{service: activeService(7, 60)}

	uc := newTestUseCase(bookings, schedules, catalog, day)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: day})
	require.NoError(t, err)

	// Рабочие часы не смещаются на пропущенный час
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "09:00", resp.Slots[0].Label)
	assert.Equal(t, "10:00", resp.Slots[1].Label)
	assert.Equal(t, "11:00", resp.Slots[2].Label)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.True(t, resp.Slots[0].Start.Equal(time.Date(2026, 3, 8, 9, 0, 0, 0, loc)))
}

func TestExecute_EmptyResultEchoesConfiguredInterval(t *testing.T) {
	cfg := defaultConfig()
	cfg.Enabled = false
	cfg.SlotIntervalMinutes = 30

	bookings := &mockBookingRepo{}
	schedules := &mockScheduleRepo{cfg: cfg}
	catalog := &mockCatalog{service: activeService(7, 60)}

	uc := newTestUseCase(bookings, schedules, catalog, testDate)
	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// Метаданные пустого ответа совпадают с метаданными обычного
	assert.Empty(t, resp.Slots)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, 30, resp.SlotIntervalMinutes)
}
