package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	bookingRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/booking"
	catalogClient "github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/internal/refund"
	"github.com/andmv/LDM-BookingService/internal/service/bookings/models"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

// Service сервис жизненного цикла бронирований.
// Владеет переходами статусов, политикой возвратов и переносов.
type Service struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	catalog      CatalogClient
	gateway      PaymentGatewayClient
	txManager    TransactionManager
	refundPolicy refund.Policy
	timeProvider TimeProvider
	holdTTL      time.Duration
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	catalog CatalogClient,
	gateway PaymentGatewayClient,
	txManager TransactionManager,
	refundPolicy refund.Policy,
	holdTTL time.Duration,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		catalog:      catalog,
		gateway:      gateway,
		txManager:    txManager,
		refundPolicy: refundPolicy,
		timeProvider: &RealTimeProvider{},
		holdTTL:      holdTTL,
		logger:       logger,
	}
}

// Confirm подтверждает оплату холда: pending_payment -> confirmed.
// Повторное подтверждение уже подтвержденного бронирования - no-op.
func (s *Service) Confirm(ctx context.Context, bookingID int64, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: confirming booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.getBooking(ctx, "Confirm", bookingID)
	if err != nil {
		return nil, err
	}

	if booking.CustomerID != req.UserID {
		s.logger.Warn("Confirm: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	// Идемпотентность: повторный колбэк оплаты не должен падать
	if booking.Status == domain.StatusConfirmed {
		s.logger.Info("Confirm: booking id=%d is already confirmed", bookingID)
		return models.FromDomainBooking(booking), nil
	}

	if !booking.Status.CanTransitionTo(domain.StatusConfirmed) {
		s.logger.Warn("Confirm: booking id=%d cannot be confirmed from status=%s", bookingID, booking.Status)
		return nil, fmt.Errorf("%w: %s -> confirmed", ErrInvalidTransition, booking.Status)
	}

	if err := s.bookingRepo.ConfirmPayment(ctx, bookingID, req.ExternalOrderRef); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Confirm: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusConfirmed
	if req.ExternalOrderRef != nil {
		booking.ExternalOrderRef = req.ExternalOrderRef
	}

	s.logger.Info("Confirm: successfully confirmed booking id=%d", bookingID)
	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование.
// Клиент может отменить только своё бронирование, владелец листинга - любое.
// Если к бронированию привязана оплата, перед изменением статуса считается
// возврат по политике. Отмена проходит независимо от исхода возврата:
// ошибка шлюза возвращается в Warning, а не откатывает статус.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingAccess(ctx, booking, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCancel
	}

	now := s.timeProvider.Now()

	// 1. Считаем возврат до изменения статуса
	var refundResp *models.RefundResponse
	var warning string
	finalStatus := domain.StatusCancelled

	if booking.HasPayment() {
		result := s.refundPolicy.CalculateRefund(booking.Price, booking.StartDatetime, now)
		s.logger.Info("Cancel: booking id=%d refund calculated: amount=%.2f (%s)",
			bookingID, result.Amount, result.Reason)

		if result.Amount > 0 {
			refundResp = &models.RefundResponse{
				Amount:  result.Amount,
				Percent: result.Percent,
				Reason:  result.Reason,
			}

			// Полный возврат подтвержденного бронирования фиксируется
			// отдельным статусом
			if booking.Status == domain.StatusConfirmed && result.Amount >= booking.Price {
				finalStatus = domain.StatusRefunded
			}

			// 2. Запускаем возврат в шлюзе; его отказ не блокирует отмену
			gwResult, gwErr := s.gateway.RefundWithGracefulDegradation(ctx, *booking.ExternalOrderRef, result.Amount, req.CancellationReason)
			if gwErr != nil {
				s.logger.Warn("Cancel: refund for booking id=%d failed, cancelling anyway: %v", bookingID, gwErr)
				warning = "refund could not be processed automatically, manual refund required"
				finalStatus = domain.StatusCancelled
			} else {
				refundResp.Automatic = gwResult.Automatic
			}
		}
	}

	// 3. Меняем статус
	if err := s.bookingRepo.Cancel(ctx, bookingID, finalStatus, req.CancellationReason); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	booking.Status = finalStatus
	booking.CancellationReason = &req.CancellationReason
	booking.CancelledAt = &now

	s.logger.Info("Cancel: successfully cancelled booking id=%d with status=%s", bookingID, finalStatus)
	return &models.CancelBookingResponse{
		Booking: models.FromDomainBooking(booking),
		Refund:  refundResp,
		Warning: warning,
	}, nil
}

// Reschedule переносит подтвержденное бронирование на новый диапазон.
// Перенос разрешен политикой листинга (reschedule_enabled + cutoff),
// новый диапазон перепроверяется на конфликты без учета собственного.
func (s *Service) Reschedule(ctx context.Context, bookingID int64, req *models.RescheduleBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Reschedule: booking id=%d to %s by user=%d",
		bookingID, req.NewStart.Format(time.RFC3339), req.UserID)

	if req.NewStart.IsZero() || req.NewEnd.IsZero() || !req.NewEnd.After(req.NewStart) {
		s.logger.Warn("Reschedule: invalid range for booking id=%d", bookingID)
		return nil, fmt.Errorf("%w: invalid new range", ErrInvalidInput)
	}

	booking, err := s.getBooking(ctx, "Reschedule", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingAccess(ctx, booking, req.UserID); err != nil {
		s.logger.Warn("Reschedule: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	// Переносятся только подтвержденные бронирования
	if booking.Status != domain.StatusConfirmed {
		s.logger.Warn("Reschedule: booking id=%d is not confirmed, status=%s", bookingID, booking.Status)
		return nil, fmt.Errorf("%w: only confirmed bookings can be rescheduled", ErrInvalidTransition)
	}

	cfg, err := s.scheduleRepo.GetByListingID(ctx, booking.ListingID)
	if err != nil {
		s.logger.Error("Reschedule: failed to get schedule for listing id=%d: %v", booking.ListingID, err)
		return nil, fmt.Errorf("%w: Reschedule - failed to get schedule config: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	// Cutoff считается от текущего начала бронирования: чем ближе визит,
	// тем раньше закрывается окно переноса
	if !cfg.CanReschedule(booking.StartDatetime, now) {
		s.logger.Warn("Reschedule: booking id=%d is too close to start or policy disabled", bookingID)
		return nil, ErrRescheduleNotAllowed
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = booking.Timezone
	}

	// Проверка конфликтов и обновление диапазона одной атомарной единицей
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		busy, err := s.bookingRepo.FindBlockingRanges(txCtx, domain.BlockingRangesFilter{
			ListingID:          booking.ListingID,
			WindowStart:        req.NewStart,
			WindowEnd:          req.NewEnd,
			Statuses:           domain.BlockingStatuses(cfg.PendingBlocksSlots),
			StalePendingBefore: now.Add(-s.holdTTL),
			ExcludeBookingID:   &bookingID,
		})
		if err != nil {
			s.logger.Error("Reschedule: failed to get busy ranges: %v", err)
			return fmt.Errorf("%w: Reschedule - failed to get busy ranges: %v", ErrInternal, err)
		}

		for _, r := range busy {
			if timerange.Overlaps(req.NewStart, req.NewEnd, r.Start, r.End) {
				s.logger.Warn("Reschedule: new range for booking id=%d conflicts with existing booking", bookingID)
				return ErrSlotConflict
			}
		}

		if err := s.bookingRepo.UpdateRange(txCtx, bookingID, req.NewStart, req.NewEnd, timezone); err != nil {
			if errors.Is(err, bookingRepo.ErrSlotConflict) {
				return ErrSlotConflict
			}
			s.logger.Error("Reschedule: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Reschedule - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.StartDatetime = req.NewStart
	booking.EndDatetime = req.NewEnd
	booking.Timezone = timezone

	s.logger.Info("Reschedule: successfully rescheduled booking id=%d", bookingID)
	return models.FromDomainBooking(booking), nil
}

// ExpireStaleHolds переводит протухшие неоплаченные холды в expired.
// Идемпотентна: повторный запуск по уже обработанным строкам - no-op.
func (s *Service) ExpireStaleHolds(ctx context.Context) (*models.ExpireStaleHoldsResponse, error) {
	now := s.timeProvider.Now()
	olderThan := now.Add(-s.holdTTL)

	stale, err := s.bookingRepo.FindStalePending(ctx, olderThan)
	if err != nil {
		s.logger.Error("ExpireStaleHolds: failed to find stale holds: %v", err)
		return nil, fmt.Errorf("%w: ExpireStaleHolds - repository error: %v", ErrInternal, err)
	}

	if len(stale) == 0 {
		return &models.ExpireStaleHoldsResponse{ExpiredCount: 0}, nil
	}

	ids := make([]int64, 0, len(stale))
	for _, b := range stale {
		ids = append(ids, b.ID)
	}

	expired, err := s.bookingRepo.MarkExpired(ctx, ids)
	if err != nil {
		s.logger.Error("ExpireStaleHolds: failed to mark %d holds expired: %v", len(ids), err)
		return nil, fmt.Errorf("%w: ExpireStaleHolds - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ExpireStaleHolds: expired %d of %d stale holds", expired, len(ids))
	return &models.ExpireStaleHoldsResponse{ExpiredCount: expired}, nil
}

// GetByID получает бронирование по ID.
// Пользователь видит только своё бронирование или бронирования своего листинга.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя.
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetListingBookings получает бронирования листинга с фильтрацией
// по периоду, статусу и включению неактивных. Доступно только владельцам.
func (s *Service) GetListingBookings(ctx context.Context, req *models.GetListingBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetListingBookings: fetching bookings for listing=%d, user=%d", req.ListingID, req.UserID)

	if err := s.checkOwnerAccess(ctx, req.ListingID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetListingBookings: invalid filter for listing=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByListingWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetListingBookings: repository error for listing=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: GetListingBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetListingBookings: successfully fetched %d bookings for listing=%d", len(bookings), req.ListingID)
	return models.FromDomainBookingList(bookings), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkBookingAccess проверяет, что пользователь имеет доступ к бронированию:
// либо он его клиент, либо владелец листинга
func (s *Service) checkBookingAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.CustomerID == userID {
		return nil
	}

	if err := s.checkOwnerAccess(ctx, booking.ListingID, userID); err != nil {
		return ErrAccessDenied
	}

	return nil
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
