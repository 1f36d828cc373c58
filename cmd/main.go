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
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/cancel_booking"
	confirmPaymentHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/confirm_payment"
	createBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/create_booking"
	defineTimeSlotsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/define_time_slots"
	getBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_booking"
	getFacilityBookingsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_facility_bookings"
	getTimeSlotsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_time_slots"
	getUserBookingsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_user_bookings"
	retryPaymentHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/retry_payment"
	updateBookingStatusHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/config"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	couponRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/coupon"
	facilityRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/migrations"
	paymentRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/payment"
	timeSlotRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/omisepay"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/sandboxpay"
	"github.com/m04kA/SMC-CourtBookingService/internal/scheduler"
	bookingsService "github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	paymentsService "github.com/m04kA/SMC-CourtBookingService/internal/service/payments"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
	timeSlotsService "github.com/m04kA/SMC-CourtBookingService/internal/service/timeslots"
	cancelBookingUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/cancel_booking"
	confirmPaymentUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/confirm_payment"
	createBookingUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
	defineTimeSlotsUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/define_time_slots"
	expireBookingsUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/expire_bookings"
	getTimeSlotsUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_time_slots"
	retryPaymentUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/retry_payment"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/txmanager"
)

// Один проход по неоплаченным бронированиям не должен пересекаться со следующим запуском
const expireJobTimeout = 50 * time.Second

// EventPublisher общий порт публикации для всех сервисов
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

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

	log.Info("Starting SMC-CourtBookingService...")

	policy, err := cfg.Booking.Policy()
	if err != nil {
		log.Fatal("Invalid booking config: %v", err)
	}

	// Инициализируем метрики (если включены); nil-коллектор просто ничего не пишет
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database: %v", err)
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
	log.Info("Connected to database (driver=%s)", cfg.Database.Driver)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(db, cfg.Database.Driver); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	timeSlotRepository := timeSlotRepo.NewRepository(wrappedDB)
	paymentRepository := paymentRepo.NewRepository(wrappedDB)
	couponRepository := couponRepo.NewRepository(wrappedDB)
	facilityRepository := facilityRepo.NewRepository(wrappedDB)

	// Платежный шлюз
	var (
		gateway paymentsService.Gateway
		sandbox *sandboxpay.Gateway
	)
	switch cfg.Payments.Provider {
	case config.ProviderOmise:
		omiseClient, err := omisepay.NewClient(omisepay.Config{
			PublicKey:  cfg.Payments.PublicKey,
			SecretKey:  cfg.Payments.SecretKey,
			SourceType: cfg.Payments.SourceType,
			ReturnURI:  cfg.Payments.ReturnURI,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize Omise client: %v", err)
		}
		gateway = omiseClient
	default:
		sandbox = sandboxpay.New(cfg.Payments.SandboxBaseURL)
		gateway = sandbox
		log.Warn("Sandbox payment gateway enabled, payments are not charged")
	}
	log.Info("Payment gateway: %s", cfg.Payments.Provider)

	// Публикация аудит-событий
	var publisher EventPublisher
	switch cfg.Events.Driver {
	case config.EventsAMQP:
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange, cfg.Events.BufferSize, log)
		if err != nil {
			log.Fatal("Failed to connect to message broker: %v", err)
		}
		defer func() {
			if err := amqpPublisher.Close(); err != nil {
				log.Error("Failed to close event publisher: %v", err)
			}
		}()
		publisher = amqpPublisher
	case config.EventsMemory:
		publisher = events.NewMemory()
	default:
		publisher = events.Noop{}
	}
	log.Info("Event publisher: %s", cfg.Events.Driver)

	// Инициализируем сервисы
	pricingEngine := pricing.NewEngine(cfg.Pricing.PlatformFeeRate, cfg.Pricing.TaxRate)
	slotManager := timeSlotsService.NewManager(
		timeSlotRepository,
		facilityRepository,
		txMgr,
		timeSlotsService.Config{
			Policy:              policy,
			SlotDurationMinutes: cfg.Booking.SlotDurationMinutes,
			AdvanceBookingDays:  cfg.Booking.AdvanceBookingDays,
		},
		log,
	)
	paymentOrchestrator := paymentsService.NewOrchestrator(
		paymentRepository,
		gateway,
		publisher,
		metricsCollector,
		paymentsService.Config{
			Currency:      cfg.Pricing.Currency,
			PaymentWindow: cfg.Booking.PaymentWindow,
		},
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		facilityRepository,
		couponRepository,
		slotManager,
		paymentOrchestrator,
		txMgr,
		publisher,
		metricsCollector,
		policy,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		slotManager,
		pricingEngine,
		bookingRepository,
		couponRepository,
		paymentOrchestrator,
		txMgr,
		publisher,
		metricsCollector,
		policy,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingSvc,
		bookingRepository,
		slotManager,
		paymentOrchestrator,
		txMgr,
		publisher,
		policy,
		log,
	)
	retryPaymentUseCase := retryPaymentUC.NewUseCase(
		bookingSvc,
		slotManager,
		paymentOrchestrator,
		txMgr,
		policy,
		log,
	)
	confirmPaymentUseCase := confirmPaymentUC.NewUseCase(
		paymentOrchestrator,
		bookingSvc,
		bookingRepository,
		txMgr,
		publisher,
		log,
	)
	expireBookingsUseCase := expireBookingsUC.NewUseCase(
		bookingRepository,
		bookingSvc,
		policy,
		cfg.Scheduler.ExpireBatchSize,
		log,
	)
	getTimeSlotsUseCase := getTimeSlotsUC.NewUseCase(slotManager, log)
	defineTimeSlotsUseCase := defineTimeSlotsUC.NewUseCase(slotManager, log)

	// Инициализируем handlers
	getTimeSlots := getTimeSlotsHandler.NewHandler(getTimeSlotsUseCase, log)
	defineTimeSlots := defineTimeSlotsHandler.NewHandler(defineTimeSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	retryPayment := retryPaymentHandler.NewHandler(retryPaymentUseCase, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getFacilityBookings := getFacilityBookingsHandler.NewHandler(bookingSvc, log)
	confirmPayment := confirmPaymentHandler.NewHandler(confirmPaymentUseCase, log)

	// Фоновое освобождение слотов неоплаченных бронирований
	var jobs *scheduler.Service
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(log)
		if err != nil {
			log.Fatal("Failed to create scheduler: %v", err)
		}
		if _, err := jobs.AddExpireBookingsJob(cfg.Scheduler.ExpireBookingsCron, expireBookingsUseCase, expireJobTimeout); err != nil {
			log.Fatal("Failed to schedule booking expiry: %v", err)
		}
		jobs.Start()
		log.Info("Scheduler started (expire bookings: %s)", cfg.Scheduler.ExpireBookingsCron)
	}

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Страница оплаты sandbox-шлюза сразу доставляет событие в обработчик webhook
	if sandbox != nil {
		sandbox.Register(r.PathPrefix("/sandbox").Subrouter(), func(ctx context.Context, eventID string) error {
			_, err := confirmPaymentUseCase.Execute(ctx, &confirmPaymentUC.Request{EventID: eventID})
			return err
		}, log)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Слоты корта на дату
	api.HandleFunc("/courts/{courtId}/time-slots", getTimeSlots.Handle).Methods(http.MethodGet)

	// Webhook платежного шлюза; событие перепроверяется запросом к шлюзу
	api.HandleFunc("/payments/webhook", confirmPayment.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/retry-payment", retryPayment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/me/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление площадкой (для владельцев) ---
	protected.HandleFunc("/courts/{courtId}/time-slots", defineTimeSlots.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/facilities/{facilityId}/bookings", getFacilityBookings.Handle).Methods(http.MethodGet)

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if jobs != nil {
		if err := jobs.Stop(); err != nil {
			log.Error("Failed to stop scheduler: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
