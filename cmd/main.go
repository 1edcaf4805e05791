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

	bookSlotHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/book_slot"
	cancelBookingHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/cancel_booking"
	getAvailabilityHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/get_availability"
	getAvailableSlotsHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/get_booking"
	getStudentBookingsHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/get_student_bookings"
	getTeacherBookingsHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/get_teacher_bookings"
	updateAvailabilityHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/update_availability"
	updateBookingStatusHandler "github.com/ekazarov/TMS-BookingService/internal/api/handlers/update_booking_status"
	"github.com/ekazarov/TMS-BookingService/internal/api/middleware"
	"github.com/ekazarov/TMS-BookingService/internal/availability"
	"github.com/ekazarov/TMS-BookingService/internal/config"
	availabilityRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/availability"
	bookingRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/booking"
	notifyServiceClient "github.com/ekazarov/TMS-BookingService/internal/integrations/notifyservice"
	profileServiceClient "github.com/ekazarov/TMS-BookingService/internal/integrations/profileservice"
	availabilityService "github.com/ekazarov/TMS-BookingService/internal/service/availability"
	bookingsService "github.com/ekazarov/TMS-BookingService/internal/service/bookings"
	"github.com/ekazarov/TMS-BookingService/internal/timezone"
	bookSlotUC "github.com/ekazarov/TMS-BookingService/internal/usecase/book_slot"
	getAvailableSlotsUC "github.com/ekazarov/TMS-BookingService/internal/usecase/get_available_slots"
	"github.com/ekazarov/TMS-BookingService/pkg/dbmetrics"
	"github.com/ekazarov/TMS-BookingService/pkg/logger"
	"github.com/ekazarov/TMS-BookingService/pkg/metrics"
	"github.com/ekazarov/TMS-BookingService/pkg/simpletxmanager"
	"github.com/ekazarov/TMS-BookingService/pkg/txmanager"
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

	log.Info("Starting TMS-BookingService...")
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
	profileClient := profileServiceClient.NewClient(
		cfg.ProfileService.URL,
		time.Duration(cfg.ProfileService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ProfileService=%s timeout=%ds, NotifyService=%s timeout=%ds)",
		cfg.ProfileService.URL, cfg.ProfileService.Timeout, cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository      *bookingRepo.Repository
		availabilityRepository *availabilityRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		availabilityRepository = availabilityRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		availabilityRepository = availabilityRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Вычисление расписания и конвертация часовых поясов
	resolver := availability.NewResolver()
	converter := timezone.NewConverter()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		notifyClient,
		log,
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		profileClient,
		txMgr,
		log,
	)

	// Инициализируем use cases
	bookSlotUseCase := bookSlotUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		profileClient,
		resolver,
		converter,
		txMgr,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		availabilityRepository,
		profileClient,
		resolver,
		cfg.Booking.DefaultHorizonDays,
		cfg.Booking.MaxHorizonDays,
		log,
	)

	// Инициализируем handlers
	bookSlot := bookSlotHandler.NewHandler(bookSlotUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getTeacherBookings := getTeacherBookingsHandler.NewHandler(bookingSvc, log)
	getStudentBookings := getStudentBookingsHandler.NewHandler(bookingSvc, log)
	getAvailability := getAvailabilityHandler.NewHandler(availabilitySvc, log)
	updateAvailability := updateAvailabilityHandler.NewHandler(availabilitySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
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

	// Правила доступности преподавателя
	api.HandleFunc("/teachers/{teacherId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(log))

	// --- Расписание ---
	// Доступные слоты преподавателя в его часовом поясе
	protected.HandleFunc("/teachers/{teacherId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Обновление правил доступности (только сам преподаватель)
	protected.HandleFunc("/teachers/{teacherId}/availability",
		updateAvailability.Handle).Methods(http.MethodPut)

	// --- Бронирования ---
	// Бронирование слота студентом
	protected.HandleFunc("/bookings", bookSlot.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Смена статуса бронирования (подтверждение/отклонение преподавателем)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// Отмена бронирования любой из сторон
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// Занятия преподавателя
	protected.HandleFunc("/teachers/{teacherId}/bookings", getTeacherBookings.Handle).Methods(http.MethodGet)

	// Занятия студента
	protected.HandleFunc("/students/{studentId}/bookings", getStudentBookings.Handle).Methods(http.MethodGet)

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
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
