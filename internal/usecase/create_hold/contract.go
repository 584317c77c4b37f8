package create_hold

import (
	"context"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// Create вставляет бронирование; на конфликте диапазонов возвращает ошибку хранилища
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	// FindBlockingRanges получает занятые диапазоны листинга с блокировкой внутри транзакции
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

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
