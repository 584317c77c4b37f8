package create_hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	bookingRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/booking"
	scheduleRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/schedule"
	catalogClient "github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

// UseCase use case для создания холда слота.
// Холд - это бронирование в статусе pending_payment: оно резервирует
// диапазон до завершения оплаты и протухает по TTL.
type UseCase struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	catalog      CatalogClient
	txManager    TransactionManager
	timeProvider TimeProvider
	holdTTL      time.Duration
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	catalog CatalogClient,
	txManager TransactionManager,
	holdTTL time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		catalog:      catalog,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		holdTTL:      holdTTL,
		logger:       logger,
	}
}

// Execute выполняет use case создания холда.
// Проверка пересечений и вставка выполняются в одной сериализуемой
// транзакции: из двух одновременных холдов на пересекающиеся диапазоны
// ровно один получает ErrSlotConflict.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateHold: customer=%d, listing=%d, service=%d, start=%s",
		req.CustomerID, req.ListingID, req.ServiceID, req.Start.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateHold: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу из каталога
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateHold: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateHold: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Услуга должна быть активной и принадлежать листингу из запроса
	if err := validateService(service, req.ListingID); err != nil {
		uc.logger.Warn("CreateHold: service id=%d rejected: %v", req.ServiceID, err)
		return nil, err
	}

	// 4. Бронирования листинга должны быть включены.
	// Отсутствующая конфигурация эквивалентна выключенным бронированиям.
	cfg, err := uc.scheduleRepo.GetByListingID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			uc.logger.Warn("CreateHold: listing id=%d has no schedule config", req.ListingID)
			return nil, ErrBookingsDisabled
		}
		uc.logger.Error("CreateHold: failed to get schedule for listing id=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: failed to get schedule config: %v", ErrInternal, err)
	}

	if !cfg.Enabled {
		uc.logger.Warn("CreateHold: bookings disabled for listing id=%d", req.ListingID)
		return nil, ErrBookingsDisabled
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = cfg.Timezone
	}

	now := uc.timeProvider.Now()

	var result *domain.Booking

	// 5. Проверка пересечений и вставка одной атомарной единицей
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Занятые диапазоны, пересекающие запрошенный, с блокировкой строк.
		// Протухшие неоплаченные pending-холды не считаются занятыми.
		busy, err := uc.bookingRepo.FindBlockingRanges(txCtx, domain.BlockingRangesFilter{
			ListingID:          req.ListingID,
			WindowStart:        req.Start,
			WindowEnd:          req.End,
			Statuses:           domain.BlockingStatuses(cfg.PendingBlocksSlots),
			StalePendingBefore: now.Add(-uc.holdTTL),
		})
		if err != nil {
			uc.logger.Error("CreateHold: failed to get busy ranges: %v", err)
			return fmt.Errorf("%w: failed to get busy ranges: %v", ErrInternal, err)
		}

		// 5.2. Полуоткрытые интервалы: совпадение конца с началом - не конфликт
		for _, r := range busy {
			if timerange.Overlaps(req.Start, req.End, r.Start, r.End) {
				uc.logger.Warn("CreateHold: range %s-%s conflicts with existing booking",
					req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))
				return ErrSlotConflict
			}
		}

		// 5.3. Вставляем холд со снимком цены услуги
		booking := &domain.Booking{
			ListingID:     req.ListingID,
			ServiceID:     req.ServiceID,
			CustomerID:    req.CustomerID,
			StartDatetime: req.Start,
			EndDatetime:   req.End,
			Timezone:      timezone,
			Status:        domain.StatusPendingPayment,
			Price:         service.Price,
			Currency:      service.Currency,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			// Констрейнт БД - вторая линия обороны от гонки
			if errors.Is(err, bookingRepo.ErrSlotConflict) {
				uc.logger.Warn("CreateHold: insert rejected by storage conflict constraint")
				return ErrSlotConflict
			}
			uc.logger.Error("CreateHold: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateHold: successfully created hold id=%d", result.ID)

	return &Response{
		ID:            result.ID,
		ListingID:     result.ListingID,
		ServiceID:     result.ServiceID,
		CustomerID:    result.CustomerID,
		StartDatetime: result.StartDatetime,
		EndDatetime:   result.EndDatetime,
		Timezone:      result.Timezone,
		Status:        string(result.Status),
		Price:         result.Price,
		Currency:      result.Currency,
		ExpiresAt:     result.CreatedAt.Add(uc.holdTTL),
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}, nil
}
