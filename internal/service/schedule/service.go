package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	scheduleRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/schedule"
	catalogClient "github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/internal/service/schedule/models"
	"github.com/andmv/LDM-BookingService/pkg/types"
)

// Service сервис для работы с конфигурацией расписаний листингов
type Service struct {
	scheduleRepo ScheduleRepository
	catalog      CatalogClient
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	catalog CatalogClient,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		catalog:      catalog,
		logger:       logger,
	}
}

// GetConfig получает конфигурацию расписания листинга.
// Публичный метод - доступен всем
func (s *Service) GetConfig(ctx context.Context, listingID int64) (*models.ScheduleConfigResponse, error) {
	s.logger.Info("GetConfig: fetching schedule config for listing=%d", listingID)

	cfg, err := s.scheduleRepo.GetByListingID(ctx, listingID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			s.logger.Warn("GetConfig: config for listing=%d not found", listingID)
			return nil, ErrConfigNotFound
		}
		s.logger.Error("GetConfig: repository error for listing=%d: %v", listingID, err)
		return nil, fmt.Errorf("%w: GetConfig - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainConfig(cfg), nil
}

// UpdateConfig создает или полностью заменяет конфигурацию расписания.
// Доступно только владельцам листинга
func (s *Service) UpdateConfig(ctx context.Context, req *models.UpdateScheduleConfigRequest) (*models.ScheduleConfigResponse, error) {
	s.logger.Info("UpdateConfig: updating schedule config for listing=%d by user=%d", req.ListingID, req.UserID)

	// 1. Валидируем входные данные
	if err := s.validateConfig(req); err != nil {
		s.logger.Warn("UpdateConfig: validation failed for listing=%d: %v", req.ListingID, err)
		return nil, err
	}

	// 2. Проверяем права доступа (только владелец листинга)
	if err := s.checkOwnerAccess(ctx, req.ListingID, req.UserID); err != nil {
		return nil, err
	}

	// 3. Сохраняем конфигурацию
	saved, err := s.scheduleRepo.Upsert(ctx, req.ToDomainConfig())
	if err != nil {
		s.logger.Error("UpdateConfig: repository error for listing=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: UpdateConfig - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateConfig: successfully updated schedule config for listing=%d", req.ListingID)
	return models.FromDomainConfig(saved), nil
}

// validateConfig проверяет корректность конфигурации расписания
func (s *Service) validateConfig(req *models.UpdateScheduleConfigRequest) error {
	if req.ListingID <= 0 {
		return fmt.Errorf("%w: listingID must be positive", ErrInvalidInput)
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, req.Timezone)
		}
	}

	if req.SlotIntervalMinutes < domain.MinSlotIntervalMinutes || req.SlotIntervalMinutes > domain.MaxSlotIntervalMinutes {
		return fmt.Errorf("%w: slotIntervalMinutes out of range", ErrInvalidInput)
	}

	if req.BufferBeforeMinutes < 0 || req.BufferBeforeMinutes > domain.MaxBufferMinutes ||
		req.BufferAfterMinutes < 0 || req.BufferAfterMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: buffer minutes out of range", ErrInvalidInput)
	}

	if req.RescheduleCutoffValue < 0 {
		return fmt.Errorf("%w: rescheduleCutoffValue must not be negative", ErrInvalidInput)
	}

	switch domain.CutoffUnit(req.RescheduleCutoffUnit) {
	case "", domain.CutoffUnitMinutes, domain.CutoffUnitHours, domain.CutoffUnitDays:
	default:
		return fmt.Errorf("%w: unknown rescheduleCutoffUnit %q", ErrInvalidInput, req.RescheduleCutoffUnit)
	}

	if err := validateWeekSchedule(req.Hours); err != nil {
		return fmt.Errorf("%w: hours: %v", ErrInvalidInput, err)
	}
	if err := validateWeekSchedule(req.Breaks); err != nil {
		return fmt.Errorf("%w: breaks: %v", ErrInvalidInput, err)
	}

	for _, d := range req.DaysOff {
		if _, err := time.Parse(domain.DateFormat, d); err != nil {
			return fmt.Errorf("%w: invalid day off date %q", ErrInvalidInput, d)
		}
	}

	return nil
}

// validateWeekSchedule проверяет ключи дней недели и формат диапазонов
func validateWeekSchedule(m map[string][]models.ClockRange) error {
	for day, ranges := range m {
		if !isWeekdayKey(day) {
			return fmt.Errorf("unknown weekday key %q", day)
		}
		for _, r := range ranges {
			start := types.TimeString(r.Start)
			end := types.TimeString(r.End)
			if err := start.Validate(); err != nil {
				return err
			}
			if err := end.Validate(); err != nil {
				return err
			}
			if !start.IsBefore(end) {
				return fmt.Errorf("range %s-%s is empty or inverted", r.Start, r.End)
			}
		}
	}
	return nil
}

func isWeekdayKey(day string) bool {
	for w := time.Sunday; w <= time.Saturday; w++ {
		if domain.WeekdayKey(w) == day {
			return true
		}
	}
	return false
}

// checkOwnerAccess проверяет, что пользователь является владельцем листинга
func (s *Service) checkOwnerAccess(ctx context.Context, listingID int64, userID int64) error {
	listing, err := s.catalog.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrListingNotFound) {
			s.logger.Warn("checkOwnerAccess: listing id=%d not found", listingID)
			return ErrListingNotFound
		}
		s.logger.Error("checkOwnerAccess: failed to get listing id=%d: %v", listingID, err)
		return fmt.Errorf("%w: checkOwnerAccess - failed to get listing: %v", ErrInternal, err)
	}

	if !listing.IsOwnedBy(userID) {
		s.logger.Warn("checkOwnerAccess: user=%d is not an owner of listing=%d", userID, listingID)
		return ErrAccessDenied
	}

	return nil
}
