package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/confirm_booking"
	createHoldHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/create_hold"
	getAvailableSlotsHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/get_booking"
	getListingBookingsHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/get_listing_bookings"
	getScheduleConfigHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/get_schedule_config"
	getUserBookingsHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/get_user_bookings"
	rescheduleBookingHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/reschedule_booking"
	updateScheduleConfigHandler "github.com/andmv/LDM-BookingService/internal/api/handlers/update_schedule_config"
	"github.com/andmv/LDM-BookingService/internal/api/middleware"
	"github.com/andmv/LDM-BookingService/internal/app"
	"github.com/andmv/LDM-BookingService/internal/config"
	bookingRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/booking"
	scheduleRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	paymentGatewayClient "github.com/andmv/LDM-BookingService/internal/integrations/paymentgateway"
	bookingsService "github.com/andmv/LDM-BookingService/internal/service/bookings"
	scheduleService "github.com/andmv/LDM-BookingService/internal/service/schedule"
	createHoldUC "github.com/andmv/LDM-BookingService/internal/usecase/create_hold"
	getAvailableSlotsUC "github.com/andmv/LDM-BookingService/internal/usecase/get_available_slots"
	"github.com/andmv/LDM-BookingService/pkg/dbmetrics"
	"github.com/andmv/LDM-BookingService/pkg/logger"
	"github.com/andmv/LDM-BookingService/pkg/metrics"
	"github.com/andmv/LDM-BookingService/pkg/simpletxmanager"
	"github.com/andmv/LDM-BookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting LDM-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	gatewayClient := paymentGatewayClient.NewClient(
		cfg.PaymentGateway.URL,
		time.Duration(cfg.PaymentGateway.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds, PaymentGateway=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout, cfg.PaymentGateway.URL, cfg.PaymentGateway.Timeout)

	// Инициализируем репозитории и сервисы (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		scheduleRepository *scheduleRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		// Инициализируем репозитории с обёрткой метрик
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		// Инициализируем репозитории без метрик
		bookingRepository = bookingRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	holdTTL := time.Duration(cfg.Bookings.HoldTTLMinutes) * time.Minute
	refundPolicy := cfg.Refunds.ToPolicy()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		scheduleRepository,
		catalogClient,
		gatewayClient,
		txMgr,
		refundPolicy,
		holdTTL,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		catalogClient,
		log,
	)

	// Инициализируем use cases
	createHoldUseCase := createHoldUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		catalogClient,
		txMgr,
		holdTTL,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		catalogClient,
		holdTTL,
		log,
	)

	// Инициализируем handlers
	createHold := createHoldHandler.NewHandler(createHoldUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getListingBookings := getListingBookingsHandler.NewHandler(bookingSvc, log)
	getScheduleConfig := getScheduleConfigHandler.NewHandler(scheduleSvc, log)
	updateScheduleConfig := updateScheduleConfigHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты услуги на дату
	api.HandleFunc("/availability/by-service/{serviceId}",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Конфигурация расписания листинга
	api.HandleFunc("/listings/{listingId}/schedule",
		getScheduleConfig.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание холда на слот
	protected.HandleFunc("/bookings", createHold.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Подтверждение оплаты холда
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)

	// Отмена бронирования (с расчетом возврата)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// Перенос бронирования на другой слот
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление листингом (для владельцев) ---
	// Список бронирований листинга
	protected.HandleFunc("/listings/{listingId}/bookings", getListingBookings.Handle).Methods(http.MethodGet)

	// Обновление конфигурации расписания
	protected.HandleFunc("/listings/{listingId}/schedule", updateScheduleConfig.Handle).Methods(http.MethodPut)

	// Фоновая экспирация просроченных холдов
	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())
	defer cancelSweeper()

	sweeper := app.NewSweeper(
		bookingSvc,
		time.Duration(cfg.Bookings.SweepIntervalSeconds)*time.Second,
		log,
	)
	sweeper.Start(sweeperCtx)
	log.Info("Stale hold sweeper started (interval=%ds, ttl=%dm)",
		cfg.Bookings.SweepIntervalSeconds, cfg.Bookings.HoldTTLMinutes)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновую экспирацию холдов
	sweeper.Stop()
	cancelSweeper()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
