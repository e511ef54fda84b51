package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"umrahdesk/internal/api"
	"umrahdesk/internal/config"
	"umrahdesk/internal/database"
	"umrahdesk/internal/domain"
	"umrahdesk/internal/events"
	"umrahdesk/internal/export"
	"umrahdesk/internal/logging"
	"umrahdesk/internal/metrics"
	"umrahdesk/internal/notify"
	"umrahdesk/internal/repository"
	"umrahdesk/internal/service"
	"umrahdesk/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateRepo := initStateRepository(ctx, cfg, &logger)

	sender, alerter := initNotifyChannels(cfg, &logger)

	notifyWorker := worker.NewNotifyWorker(db, sender, alerter, redisClient, worker.DefaultRetryPolicy(), &logger)
	go notifyWorker.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	bookingService := service.NewBookingService(db, eventBus, notifyWorker, &logger)
	wizardService := service.NewWizardService(stateRepo, db, &logger)
	exporter := export.NewManifestExporter(db, cfg.Exports.Path, &logger)

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		startPrometheus(cfg, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	apiServer := api.NewHTTPServer(
		cfg.API, cfg.Booking,
		bookingService, wizardService,
		db, stateRepo, exporter, &logger,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down...")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
			return err
		}
	}
	return nil
}

func initStateRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.StateRepository) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(cfg.Booking.DraftTTLSeconds) * time.Second
	primaryRepo := repository.NewRedisStateRepository(redisClient, ttl)
	fallbackRepo := repository.NewMemoryStateRepository(ttl)
	return redisClient, repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
}

func initNotifyChannels(cfg *config.Config, logger *zerolog.Logger) (domain.MessageSender, domain.ManagerAlerter) {
	var sender domain.MessageSender
	if cfg.WhatsApp.Enabled {
		sender = notify.NewWhatsAppClient(cfg.WhatsApp)
		logger.Info().Str("gateway", cfg.WhatsApp.BaseURL).Msg("WhatsApp gateway enabled")
	}

	var alerter domain.ManagerAlerter
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramAlerter(cfg.Telegram.BotToken, cfg.Telegram.ManagerChatID)
		if err != nil {
			logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		} else {
			alerter = tg
			logger.Info().Int64("chat_id", cfg.Telegram.ManagerChatID).Msg("Telegram manager alerts enabled")
		}
	}

	return sender, alerter
}

func startPrometheus(cfg *config.Config, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
	go func() {
		logger.Info().Str("addr", addr).Msg("Prometheus metrics listening")
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Prometheus server error")
		}
	}()
}

// subscribeBookingEvents wires audit logging of booking lifecycle events.
// Notifications go through the worker queue, not the bus.
func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	logEvent := func(ev *events.Event) error {
		logger.Info().
			Str("event", ev.Type).
			RawJSON("payload", ev.Payload).
			Msg("booking event")
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, logEvent)
	bus.Subscribe(events.EventBookingConfirmed, logEvent)
	bus.Subscribe(events.EventBookingCancelled, logEvent)
	bus.Subscribe(events.EventPaymentReceived, logEvent)
}
