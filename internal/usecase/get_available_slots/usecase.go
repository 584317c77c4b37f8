package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	scheduleRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/schedule"
	catalogClient "github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
)

// UseCase use case вычисления доступных слотов для (услуга, дата).
// Никаких побочных эффектов: чтение конфигурации и занятых диапазонов,
// чистая интервальная арифметика, выдача результата.
type UseCase struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	catalog      CatalogClient
	timeProvider TimeProvider
	holdTTL      time.Duration
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	catalog CatalogClient,
	holdTTL time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		catalog:      catalog,
		timeProvider: &RealTimeProvider{},
		holdTTL:      holdTTL,
		logger:       logger,
	}
}

// Execute вычисляет отсортированный список свободных слотов на дату.
//
// Два случая намеренно возвращают успех с пустым списком вместо ошибки:
// выключенные бронирования листинга и выходной день. UI должен уметь
// показать "нет доступности", не путая её с отказом сервиса.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: service=%d, date=%s, duration_override=%d",
		req.ServiceID, req.Date.Format(domain.DateFormat), req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу из каталога
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Услуга должна быть активной, не-аддоном и привязанной к листингу
	if err := validateService(service); err != nil {
		uc.logger.Warn("GetAvailableSlots: service id=%d rejected: %v", req.ServiceID, err)
		return nil, err
	}

	// 4. Получаем конфигурацию расписания листинга.
	// Отсутствующая конфигурация эквивалентна выключенным бронированиям.
	cfg, err := uc.scheduleRepo.GetByListingID(ctx, service.ListingID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			uc.logger.Info("GetAvailableSlots: listing id=%d has no schedule config", service.ListingID)
			return uc.emptyResponse(req, service, domain.DefaultTimezone, 0), nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule for listing id=%d: %v", service.ListingID, err)
		return nil, fmt.Errorf("%w: failed to get schedule config: %v", ErrInternal, err)
	}

	if !cfg.Enabled {
		uc.logger.Info("GetAvailableSlots: bookings disabled for listing id=%d", service.ListingID)
		return uc.emptyResponse(req, service, cfg.Timezone, cfg.SlotIntervalMinutes), nil
	}

	// 5. Выходной день - тоже успех с пустым списком
	if cfg.IsDayOff(req.Date.Format(domain.DateFormat)) {
		uc.logger.Info("GetAvailableSlots: %s is a day off for listing id=%d",
			req.Date.Format(domain.DateFormat), service.ListingID)
		return uc.emptyResponse(req, service, cfg.Timezone, cfg.SlotIntervalMinutes), nil
	}

	loc, err := cfg.Location()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: invalid timezone %q for listing id=%d: %v",
			cfg.Timezone, service.ListingID, err)
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfiguration, cfg.Timezone)
	}

	// 6. Разрешаем длительность и шаг
	durationMinutes := resolveDuration(req.DurationMinutes, service)
	intervalMinutes := resolveInterval(cfg.SlotIntervalMinutes, durationMinutes)
	duration := time.Duration(durationMinutes) * time.Minute
	interval := time.Duration(intervalMinutes) * time.Minute

	// 7. Границы дня и день недели считаются в таймзоне листинга
	y, m, d := req.Date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekday := dayStart.Weekday()

	hourRanges, err := clockRangesToAbsolute(cfg.HoursFor(weekday), dayStart, loc)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: bad hour range for listing id=%d: %v", service.ListingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	breakRanges, err := clockRangesToAbsolute(cfg.BreaksFor(weekday), dayStart, loc)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: bad break range for listing id=%d: %v", service.ListingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	// 8. Занятые диапазоны: блокирующие статусы, окно - весь локальный день.
	// Выборка по пересечению с окном, а не только по началу: бронирование,
	// начавшееся накануне и перешедшее через полночь, тоже занимает утро.
	now := uc.timeProvider.Now()
	busy, err := uc.bookingRepo.FindBlockingRanges(ctx, domain.BlockingRangesFilter{
		ListingID:          service.ListingID,
		WindowStart:        dayStart,
		WindowEnd:          dayEnd,
		Statuses:           domain.BlockingStatuses(cfg.PendingBlocksSlots),
		StalePendingBefore: now.Add(-uc.holdTTL),
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get busy ranges for listing id=%d: %v", service.ListingID, err)
		return nil, fmt.Errorf("%w: failed to get busy ranges: %v", ErrInternal, err)
	}

	// 9. Буферы листинга и услуги складываются
	bufferBefore := time.Duration(cfg.BufferBeforeMinutes+service.BufferBeforeMinutes) * time.Minute
	bufferAfter := time.Duration(cfg.BufferAfterMinutes+service.BufferAfterMinutes) * time.Minute
	busy = applyBuffers(busy, bufferBefore, bufferAfter)

	// 10. Кандидаты -> минус перерывы -> дедуп -> сортировка -> минус занятые
	candidates := buildCandidateSlots(hourRanges, breakRanges, duration, interval)
	free := filterBusy(candidates, busy)

	uc.logger.Info("GetAvailableSlots: %d slots for service=%d, listing=%d, date=%s",
		len(free), req.ServiceID, service.ListingID, req.Date.Format(domain.DateFormat))

	return &Response{
		ServiceID:           req.ServiceID,
		ListingID:           service.ListingID,
		Date:                req.Date,
		Timezone:            cfg.Timezone,
		DurationMinutes:     durationMinutes,
		SlotIntervalMinutes: intervalMinutes,
		Slots:               toSlots(free, loc),
	}, nil
}

func (uc *UseCase) emptyResponse(req *Request, service *catalogClient.Service, timezone string, configuredInterval int) *Response {
	durationMinutes := resolveDuration(req.DurationMinutes, service)
	return &Response{
		ServiceID:           req.ServiceID,
		ListingID:           service.ListingID,
		Date:                req.Date,
		Timezone:            timezone,
		DurationMinutes:     durationMinutes,
		SlotIntervalMinutes: resolveInterval(configuredInterval, durationMinutes),
		Slots:               []domain.Slot{},
	}
}
