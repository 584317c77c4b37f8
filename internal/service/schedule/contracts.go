package schedule

import (
	"context"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
)

// ScheduleRepository интерфейс хранилища конфигурации расписаний
type ScheduleRepository interface {
	GetByListingID(ctx context.Context, listingID int64) (*domain.ScheduleConfig, error)
	Upsert(ctx context.Context, config *domain.ScheduleConfig) (*domain.ScheduleConfig, error)
}

// CatalogClient интерфейс клиента каталога листингов и услуг
type CatalogClient interface {
	GetListing(ctx context.Context, listingID int64) (*catalogservice.Listing, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
