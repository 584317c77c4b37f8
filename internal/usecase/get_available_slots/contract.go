package get_available_slots

import (
	"context"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// FindBlockingRanges получает занятые диапазоны листинга, пересекающие окно
	FindBlockingRanges(ctx context.Context, filter domain.BlockingRangesFilter) ([]timerange.Range, error)
}

// ScheduleRepository интерфейс хранилища конфигурации расписаний
type ScheduleRepository interface {
	GetByListingID(ctx context.Context, listingID int64) (*domain.ScheduleConfig, error)
}

// CatalogClient интерфейс клиента каталога листингов и услуг
type CatalogClient interface {
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
