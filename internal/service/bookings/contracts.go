package bookings

import (
	"context"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/internal/integrations/paymentgateway"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByListingWithFilter(ctx context.Context, filter domain.ListingBookingsFilter) ([]*domain.Booking, error)
	FindBlockingRanges(ctx context.Context, filter domain.BlockingRangesFilter) ([]timerange.Range, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	ConfirmPayment(ctx context.Context, id int64, orderRef *string) error
	Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason string) error
	UpdateRange(ctx context.Context, id int64, start, end time.Time, timezone string) error
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*domain.Booking, error)
	MarkExpired(ctx context.Context, ids []int64) (int64, error)
}

// ScheduleRepository интерфейс хранилища конфигурации расписаний
type ScheduleRepository interface {
	GetByListingID(ctx context.Context, listingID int64) (*domain.ScheduleConfig, error)
}

// CatalogClient интерфейс клиента каталога листингов и услуг
type CatalogClient interface {
	GetListing(ctx context.Context, listingID int64) (*catalogservice.Listing, error)
}

// PaymentGatewayClient интерфейс клиента платежного шлюза
type PaymentGatewayClient interface {
	RefundWithGracefulDegradation(ctx context.Context, orderRef string, amount float64, reason string) (*paymentgateway.RefundResult, error)
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
