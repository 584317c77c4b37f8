package get_schedule_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/andmv/LDM-BookingService/internal/api/handlers"
	"github.com/andmv/LDM-BookingService/internal/service/schedule"
)

const (
	msgInvalidListingID = "некорректный ID листинга"
	msgNotFound         = "расписание листинга не найдено"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/listings/{listingId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	listingIDStr := vars["listingId"]

	listingID, err := strconv.ParseInt(listingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /listings/{id}/schedule - Invalid listing ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidListingID)
		return
	}

	config, err := h.service.GetConfig(r.Context(), listingID)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrConfigNotFound):
			h.logger.Warn("GET /listings/{id}/schedule - Config not found: listing_id=%d", listingID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /listings/{id}/schedule - Failed to get config: listing_id=%d, error=%v",
				listingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /listings/{id}/schedule - Config retrieved successfully: listing_id=%d", listingID)
	handlers.RespondJSON(w, http.StatusOK, config)
}
