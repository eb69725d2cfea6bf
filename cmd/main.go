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

	createAppointmentHandler "github.com/salonflow/scheduling-service/internal/api/handlers/create_appointment"
	createScheduleHandler "github.com/salonflow/scheduling-service/internal/api/handlers/create_schedule"
	createServiceHandler "github.com/salonflow/scheduling-service/internal/api/handlers/create_service"
	deleteScheduleHandler "github.com/salonflow/scheduling-service/internal/api/handlers/delete_schedule"
	findAvailableSlotsHandler "github.com/salonflow/scheduling-service/internal/api/handlers/find_available_slots"
	getAppointmentHandler "github.com/salonflow/scheduling-service/internal/api/handlers/get_appointment"
	getClientAppointmentsHandler "github.com/salonflow/scheduling-service/internal/api/handlers/get_client_appointments"
	getStaffAppointmentsHandler "github.com/salonflow/scheduling-service/internal/api/handlers/get_staff_appointments"
	listSchedulesHandler "github.com/salonflow/scheduling-service/internal/api/handlers/list_schedules"
	updateAppointmentStatusHandler "github.com/salonflow/scheduling-service/internal/api/handlers/update_appointment_status"
	updatePaymentStatusHandler "github.com/salonflow/scheduling-service/internal/api/handlers/update_payment_status"
	"github.com/salonflow/scheduling-service/internal/api/middleware"
	"github.com/salonflow/scheduling-service/internal/automation"
	"github.com/salonflow/scheduling-service/internal/config"
	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/internal/infra/cache"
	appointmentRepo "github.com/salonflow/scheduling-service/internal/infra/storage/appointment"
	catalogRepo "github.com/salonflow/scheduling-service/internal/infra/storage/catalog"
	scheduleRepo "github.com/salonflow/scheduling-service/internal/infra/storage/schedule"
	settingsRepo "github.com/salonflow/scheduling-service/internal/infra/storage/settings"
	notifygateClient "github.com/salonflow/scheduling-service/internal/integrations/notifygate"
	appointmentsService "github.com/salonflow/scheduling-service/internal/service/appointments"
	catalogService "github.com/salonflow/scheduling-service/internal/service/catalog"
	schedulesService "github.com/salonflow/scheduling-service/internal/service/schedules"
	createAppointmentUC "github.com/salonflow/scheduling-service/internal/usecase/create_appointment"
	findAvailableSlotsUC "github.com/salonflow/scheduling-service/internal/usecase/find_available_slots"
	"github.com/salonflow/scheduling-service/pkg/dbmetrics"
	"github.com/salonflow/scheduling-service/pkg/logger"
	"github.com/salonflow/scheduling-service/pkg/metrics"
	"github.com/salonflow/scheduling-service/pkg/simpletxmanager"
	"github.com/salonflow/scheduling-service/pkg/txmanager"
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

	log.Info("Starting scheduling-service...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
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

	// Инициализируем кэш слотов. При отключенном Redis кэш превращается
	// в no-op, сервис остается полностью работоспособным.
	var slotsCache *cache.SlotsCache
	if cfg.Redis.Enabled {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		slotsCache = cache.NewSlotsCache(client, time.Duration(cfg.Redis.TTLSeconds)*time.Second)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := slotsCache.Ping(pingCtx); err != nil {
			log.Warn("Redis unavailable, slots cache degraded: %v", err)
		} else {
			log.Info("Slots cache connected (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTLSeconds)
		}
		cancel()
	} else {
		slotsCache = cache.NewSlotsCache(nil, 0)
		log.Info("Slots cache disabled")
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		catalogRepository     *catalogRepo.Repository
		settingsRepository    *settingsRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		settingsRepository = settingsRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		settingsRepository = settingsRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем диспетчер автоматизаций и шлюз уведомлений
	var dispatcherMetrics automation.Metrics
	if cfg.Metrics.Enabled {
		dispatcherMetrics = metricsCollector
	}
	dispatcher := automation.NewDispatcher(log, dispatcherMetrics)

	notifyClient := notifygateClient.NewClient(
		cfg.Automation.WebhookURL,
		time.Duration(cfg.Automation.WebhookTimeout)*time.Second,
		log,
	)
	for _, trigger := range []domain.Trigger{
		domain.TriggerBookingConfirmation,
		domain.TriggerAppointmentReminder,
		domain.TriggerAfterPayment,
		domain.TriggerCancellation,
		domain.TriggerNoShow,
		domain.TriggerFollowUp,
	} {
		dispatcher.Register(trigger, notifyClient)
	}
	log.Info("Automation dispatcher initialized (webhook=%s)", cfg.Automation.WebhookURL)

	// Сканер временных триггеров: напоминания и follow-up
	scanner := automation.NewScanner(appointmentRepository, dispatcher, &automation.RealTimeProvider{}, log).
		WithIntervals(
			time.Duration(cfg.Automation.ScanInterval)*time.Second,
			time.Duration(cfg.Automation.ReminderWindowMinutes)*time.Minute,
			time.Duration(cfg.Automation.FollowUpDelayMinutes)*time.Minute,
		)

	scannerCtx, stopScanner := context.WithCancel(context.Background())
	go scanner.Run(scannerCtx)
	log.Info("Automation scanner started (interval=%ds)", cfg.Automation.ScanInterval)

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		dispatcher,
		slotsCache,
		log,
	)
	scheduleSvc := schedulesService.NewService(
		scheduleRepository,
		catalogRepository,
		slotsCache,
		log,
	)
	catalogSvc := catalogService.NewService(catalogRepository, log)

	// Инициализируем use cases
	var slotsMetrics findAvailableSlotsUC.Metrics
	var appointmentMetrics createAppointmentUC.Metrics
	if cfg.Metrics.Enabled {
		slotsMetrics = metricsCollector
		appointmentMetrics = metricsCollector
	}

	findAvailableSlotsUseCase := findAvailableSlotsUC.NewUseCase(
		scheduleRepository,
		appointmentRepository,
		catalogRepository,
		settingsRepository,
		slotsCache,
		slotsMetrics,
		log,
	)

	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		scheduleRepository,
		appointmentRepository,
		catalogRepository,
		settingsRepository,
		txMgr,
		dispatcher,
		slotsCache,
		appointmentMetrics,
		log,
	)

	// Инициализируем handlers
	findAvailableSlots := findAvailableSlotsHandler.NewHandler(findAvailableSlotsUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(appointmentSvc, log)
	getStaffAppointments := getStaffAppointmentsHandler.NewHandler(appointmentSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentSvc, log)
	updatePaymentStatus := updatePaymentStatusHandler.NewHandler(appointmentSvc, log)
	createSchedule := createScheduleHandler.NewHandler(scheduleSvc, log)
	listSchedules := listSchedulesHandler.NewHandler(scheduleSvc, log)
	deleteSchedule := deleteScheduleHandler.NewHandler(scheduleSvc, log)
	createService := createServiceHandler.NewHandler(catalogSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		r.Use(limiter.Middleware)
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты мастера на дату
	api.HandleFunc("/staff/{staffId}/available-slots",
		findAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/payment", updatePaymentStatus.Handle).Methods(http.MethodPatch)

	// История записей клиента и рабочий график мастера
	protected.HandleFunc("/clients/{clientId}/appointments", getClientAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/staff/{staffId}/appointments", getStaffAppointments.Handle).Methods(http.MethodGet)

	// --- Расписания (админский контур) ---
	protected.HandleFunc("/staff/{staffId}/schedules", createSchedule.HandleWindow).Methods(http.MethodPost)
	protected.HandleFunc("/staff/{staffId}/schedules", listSchedules.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/staff/{staffId}/blocks", createSchedule.HandleBlock).Methods(http.MethodPost)
	protected.HandleFunc("/schedules/{scheduleId}", deleteSchedule.Handle).Methods(http.MethodDelete)

	// --- Справочник услуг ---
	protected.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)

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

	// Сначала дожидаемся запросов в полете: они еще могут породить автоматизации
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Затем останавливаем сканер и ждем запущенные автоматизации
	stopScanner()
	dispatcher.Wait()
	log.Info("Automation dispatcher drained")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	log.Info("Server stopped gracefully")
}
