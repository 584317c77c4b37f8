package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/andmv/LDM-BookingService/internal/api/handlers"
	"github.com/andmv/LDM-BookingService/internal/api/middleware"
	"github.com/andmv/LDM-BookingService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "ID бронирования должен быть положительным числом"
	msgNotFound         = "бронирование не найдено"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "нет прав на просмотр этого бронирования"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
//
// Видят бронирование только его клиент и владельцы листинга,
// разграничение делает сервисный слой.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// userID кладет в контекст middleware Auth
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id} - no user ID in context")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("GET /bookings/{id} - bad booking ID %q from user_id=%d", mux.Vars(r)["bookingId"], userID)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{id} - booking_id=%d not found", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id} - user_id=%d has no access to booking_id=%d", userID, bookingID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/{id} - booking_id=%d: %v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/{id} - booking_id=%d returned to user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
