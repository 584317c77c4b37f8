package create_hold

import (
	"errors"
	"net/http"

	"github.com/andmv/LDM-BookingService/internal/api/handlers"
	"github.com/andmv/LDM-BookingService/internal/api/middleware"
	createHold "github.com/andmv/LDM-BookingService/internal/usecase/create_hold"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidData        = "некорректные данные бронирования"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceNotBookable = "услуга недоступна для бронирования"
	msgBookingsDisabled   = "бронирования для этого листинга отключены"
	msgSlotTaken          = "слот уже занят, обновите список доступных слотов и выберите другой"
)

type Handler struct {
	useCase CreateHoldUseCase
	logger  Logger
}

func NewHandler(useCase CreateHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Декодируем body
	var req CreateHoldRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, createHold.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, createHold.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createHold.ErrServiceNotBookable),
			errors.Is(err, createHold.ErrListingMismatch):
			h.logger.Warn("POST /bookings - Service not bookable: service_id=%d, listing_id=%d, error=%v",
				req.ServiceID, req.ListingID, err)
			handlers.RespondBadRequest(w, msgServiceNotBookable)

		case errors.Is(err, createHold.ErrBookingsDisabled):
			h.logger.Warn("POST /bookings - Bookings disabled: listing_id=%d", req.ListingID)
			handlers.RespondBadRequest(w, msgBookingsDisabled)

		case errors.Is(err, createHold.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot conflict: listing_id=%d, user_id=%d", req.ListingID, userID)
			handlers.RespondConflict(w, msgSlotTaken)

		default:
			h.logger.Error("POST /bookings - Failed to create hold: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Hold created successfully: booking_id=%d, user_id=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
