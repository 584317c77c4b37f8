package get_schedule_config

import (
	"context"

	"github.com/andmv/LDM-BookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	GetConfig(ctx context.Context, listingID int64) (*models.ScheduleConfigResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
