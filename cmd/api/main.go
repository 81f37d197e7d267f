package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barberia/internal/api"
	"barberia/internal/broker"
	"barberia/internal/config"
	"barberia/internal/database"
	"barberia/internal/domain"
	"barberia/internal/events"
	"barberia/internal/google"
	"barberia/internal/logging"
	"barberia/internal/metrics"
	"barberia/internal/notify"
	"barberia/internal/repository"
	"barberia/internal/service"
	"barberia/internal/worker"

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
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, &logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	store := initStore(redisClient, &logger)

	eventBus := events.NewEventBus()
	initNotifier(ctx, cfg, eventBus, &logger)
	if publisher := initBroker(ctx, cfg, eventBus, &logger); publisher != nil {
		defer publisher.Close()
	}
	syncWorker := initSheetsWorker(ctx, cfg, db, redisClient, &logger)

	catalog := service.NewCatalogService(db, store, cfg.Booking.CatalogTTL, &logger)
	deps := api.Deps{
		Reservations: service.NewReservationService(db, eventBus, syncWorker, catalog, cfg.Booking, cfg.App.Location(), &logger),
		Catalog:      catalog,
		Discounts:    service.NewDiscountService(db, &logger),
		Auth:         service.NewAuthService(db, store, cfg.Auth, &logger),
		Settings:     service.NewSettingsService(db, store, cfg.Booking.CatalogTTL, &logger),
		DB:           db,
	}
	if err := deps.Auth.EnsureBootstrapAdmin(ctx); err != nil {
		logger.Error().Err(err).Msg("bootstrap admin")
		return err
	}

	if cfg.Backup.Enabled && db.Driver() != "postgres" {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, api.NewServer(cfg, deps, &logger), cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, cache falls back to memory until it recovers")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return redisClient
}

func initStore(redisClient *redis.Client, logger *zerolog.Logger) domain.KeyValueStore {
	memory := repository.NewMemoryStore()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverStore(repository.NewRedisStore(redisClient), memory, logger)
}

func initNotifier(ctx context.Context, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || len(cfg.Telegram.ChatIDs) == 0 {
		return
	}

	bot, err := notify.NewBotSender(cfg.Telegram)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notifier := notify.NewNotifier(bot, cfg.Telegram.ChatIDs, logger)
	notifier.Subscribe(bus)
	go notifier.Run(ctx)
	logger.Info().Int("chats", len(cfg.Telegram.ChatIDs)).Msg("telegram notifications enabled")
}

func initBroker(ctx context.Context, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) *broker.Publisher {
	if cfg.AMQP.URL == "" {
		return nil
	}

	publisher, err := broker.Dial(cfg.AMQP, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("amqp connection failed, continuing without event publishing")
		return nil
	}

	publisher.Subscribe(bus)
	go publisher.Run(ctx)
	logger.Info().Str("exchange", cfg.AMQP.Exchange).Msg("amqp publisher started")
	return publisher
}

// initSheetsWorker returns nil when Google Sheets is not configured or not
// reachable.
func initSheetsWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if cfg.Google.CredentialsFile == "" || cfg.Google.SpreadsheetID == "" {
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(ctx, cfg.Google, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets connection test failed, continuing without sheets")
		return nil
	}
	if err := sheetsSvc.EnsureHeader(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets header write failed")
	}
	go sheetsSvc.StartCacheRefresh(ctx, 10*time.Minute)

	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	sheetsWorker := worker.NewSheetsWorker(db, sheetsSvc, redisClient, retryPolicy, logger)
	go sheetsWorker.Start(ctx)

	logger.Info().Str("sheet", cfg.Google.SheetName).Msg("google sheets sync enabled")
	return sheetsWorker
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, server *api.Server, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info().Int("http_port", cfg.HTTP.Port).Str("environment", cfg.App.Environment).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
