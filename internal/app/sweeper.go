package app

import (
	"context"
	"time"

	"github.com/andmv/LDM-BookingService/internal/service/bookings/models"
)

// BookingService интерфейс сервиса бронирований для фоновой зачистки
type BookingService interface {
	ExpireStaleHolds(ctx context.Context) (*models.ExpireStaleHoldsResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sweeper периодически переводит протухшие неоплаченные холды в expired.
// Операция идемпотентна, поэтому наложение запусков (в том числе с других
// инстансов сервиса) безопасно.
type Sweeper struct {
	service  BookingService
	interval time.Duration
	logger   Logger
	stopChan chan struct{}
}

// NewSweeper создает новый экземпляр фоновой зачистки
func NewSweeper(service BookingService, interval time.Duration, logger Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновую зачистку
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting stale hold sweeper (interval=%s)", s.interval)
	go s.run(ctx)
}

// Stop останавливает фоновую зачистку
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping stale hold sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// Первый запуск сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Stale hold sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Stale hold sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.service.ExpireStaleHolds(ctx)
	if err != nil {
		s.logger.Error("Stale hold sweep failed: %v", err)
		return
	}

	if result.ExpiredCount > 0 {
		s.logger.Info("Stale hold sweep expired %d holds", result.ExpiredCount)
	}
}
