package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hellmusic/internal/api"
	"hellmusic/internal/config"
	"hellmusic/internal/database"
	"hellmusic/internal/domain"
	"hellmusic/internal/events"
	"hellmusic/internal/export"
	"hellmusic/internal/logging"
	"hellmusic/internal/metrics"
	"hellmusic/internal/models"
	"hellmusic/internal/mongodb"
	"hellmusic/internal/repository"
	"hellmusic/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	exportOnly := flag.Bool("export", false, "write an xlsx snapshot to exports.path and exit")
	flag.Parse()

	if err := run(*exportOnly); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(exportOnly bool) error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, sqliteDB, err := initStore(ctx, cfg, &logger)
	if err != nil {
		return err
	}

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	runtime, err := repository.NewRuntimeRepository(cfg.Runtime, redisClient, &logger)
	if err != nil {
		return fmt.Errorf("init runtime state: %w", err)
	}

	eventBus := events.NewEventBus()
	subscribeAccessEvents(eventBus, &logger)

	metrics.Register()
	db := service.NewDatabase(store, runtime, eventBus, &logger).WithTimeout(cfg.Database.Timeout)
	if err := db.Connect(ctx); err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Database connection failed")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("close database")
		}
	}()

	if exportOnly {
		path, err := export.Snapshot(ctx, db, cfg.Exports.Path)
		if err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
		logger.Info().Str("file_path", path).Msg("Excel snapshot created")
		return nil
	}

	if cfg.Backup.Enabled && sqliteDB != nil {
		backupService := database.NewBackupService(sqliteDB, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, cfg, db, &logger)
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
	logger := baseLogger.With().Str("component", "musicdb-main").Logger()

	return cfg, logger, closer, nil
}

// initStore opens the configured document store. The sqlite handle is also
// returned so the backup service can snapshot it.
func initStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.Store, *database.DB, error) {
	switch cfg.Database.Driver {
	case models.DriverSQLite:
		db, err := database.NewDB(cfg.Database.Path, logger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
			return nil, nil, err
		}
		return db, db, nil
	case models.DriverMongo:
		store, err := mongodb.Connect(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error().Err(err).Str("db_name", cfg.Database.Name).Msg("init mongo")
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("database driver %q: %w", cfg.Database.Driver, models.ErrUnknownBackend)
	}
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		// The failover backend starts on memory and probes redis later.
		logger.Warn().Err(err).Msg("redis connection failed")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

func subscribeAccessEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bus.SubscribeAll(func(event *events.Event) error {
		var payload events.AccessEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			logger.Warn().Err(err).Str("event", event.Type).Msg("malformed event payload")
			return err
		}
		ev := logger.Info().Str("event", event.Type).Str("event_id", event.ID)
		if payload.Set != "" {
			ev = ev.Str("set", payload.Set)
		}
		if payload.ChatID != 0 {
			ev = ev.Int64("chat_id", payload.ChatID)
		}
		if payload.MemberID != 0 {
			ev = ev.Int64("member_id", payload.MemberID)
		}
		if payload.Enabled != nil {
			ev = ev.Bool("enabled", *payload.Enabled)
		}
		ev.Msg("access changed")
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = models.DefaultMetricsPort
	}
	go startMetricsServer(ctx, port, logger)
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
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, cfg *config.Config, db *service.Database, logger *zerolog.Logger) error {
	var httpServer *api.HTTPServer
	if cfg.API.Enabled {
		httpServer = api.NewHTTPServer(cfg.API, db, logger)
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	logger.Info().Str("backend", db.Backend()).Bool("api", cfg.API.Enabled).Msg("musicdb started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}

	logger.Info().Msg("musicdb stopped")
	return nil
}
