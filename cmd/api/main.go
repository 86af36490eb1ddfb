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

	"rentease/internal/api"
	"rentease/internal/auth"
	"rentease/internal/catalog"
	"rentease/internal/config"
	"rentease/internal/database"
	"rentease/internal/domain"
	"rentease/internal/events"
	"rentease/internal/idgen"
	"rentease/internal/logging"
	"rentease/internal/metrics"
	"rentease/internal/repository"
	"rentease/internal/seed"
	"rentease/internal/service"
	"rentease/internal/store"
	"rentease/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	kv, db, cleanup, err := initKeyValueStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	eventBus := events.NewEventBus()
	subscribeAudit(eventBus, logger)

	st := store.New(eventBus, logger)
	gens, err := initGenerators(cfg.Booking.IDStrategy)
	if err != nil {
		return err
	}

	data, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	seed.Apply(st, data)
	gens.Observe(data)
	logger.Info().
		Int("users", len(data.Users)).
		Int("bookings", len(data.Bookings)).
		Int("listings", len(data.Listings)).
		Msg("seed data loaded")

	snapshots := worker.NewSnapshotWorker(kv, worker.RetryPolicy{}, 0, logging.Component(logger, "snapshot-worker"))
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		snapshots.Start(workerCtx)
	}()
	defer func() {
		stopWorker()
		<-workerDone
	}()

	svc, err := initServices(ctx, cfg, st, gens, kv, snapshots, eventBus, logger)
	if err != nil {
		return err
	}

	if db != nil && cfg.Backup.Enabled {
		backup := database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup"))
		go func() {
			if err := backup.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("backup service stopped")
			}
		}()
	}

	go svc.Catalog.Feed().RunDemo(ctx, catalog.DemoNotifications)

	startMetrics(ctx, cfg, logger)

	httpServer := api.NewHTTPServer(cfg.HTTP, svc, logging.Component(logger, "http"))
	return startServer(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, baseLogger, closer, nil
}

// initKeyValueStore opens the configured backend. Redis degrades to an
// in-memory store while it is unreachable.
func initKeyValueStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.KeyValueStore, *database.DB, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := database.NewDB(cfg.Storage.Path, logging.Component(logger, "sqlite"))
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Storage.Path).Msg("init database")
			return nil, nil, nil, err
		}
		return db, db, func() { _ = db.Close() }, nil

	case config.BackendRedis:
		client := repository.NewRedisClient(cfg.Redis)
		primary := repository.NewRedisKV(client, cfg.Redis.KeyPrefix)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := primary.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Msg("redis connection failed, continuing on the in-memory fallback")
		} else {
			logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
		}
		kv := repository.NewFailoverKV(primary, repository.NewMemoryKV(), logging.Component(logger, "kv-failover"))
		return kv, nil, func() { _ = client.Close() }, nil

	default:
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return repository.NewMemoryKV(), nil, func() {}, nil
	}
}

func initGenerators(strategy string) (seed.Generators, error) {
	var gens seed.Generators
	var err error
	for _, g := range []struct {
		dst    *idgen.Generator
		prefix string
		start  int64
	}{
		{&gens.Users, "u", 1},
		{&gens.Bookings, "B-", 1001},
		{&gens.Rentals, "R-", 2001},
		{&gens.Properties, "p", 1},
		{&gens.Transactions, "T-", 3001},
	} {
		if *g.dst, err = idgen.New(strategy, g.prefix, g.start); err != nil {
			return seed.Generators{}, fmt.Errorf("id generator %q: %w", g.prefix, err)
		}
	}
	return gens, nil
}

func initServices(
	ctx context.Context,
	cfg *config.Config,
	st *store.Store,
	gens seed.Generators,
	kv domain.KeyValueStore,
	snapshots domain.SnapshotQueue,
	eventBus *events.EventBus,
	logger *zerolog.Logger,
) (api.Services, error) {
	clock := service.Clock(time.Now)

	settings := service.NewSettingsService(kv, snapshots, cfg.Booking.DefaultCurrency, eventBus, logging.Component(logger, "settings"))
	if err := settings.Load(ctx); err != nil {
		return api.Services{}, fmt.Errorf("load settings: %w", err)
	}

	properties := service.NewPropertyService(st, gens.Properties, kv, snapshots, logging.Component(logger, "properties"))
	if restored, err := properties.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("stored properties unreadable, keeping seed data")
	} else if restored {
		logger.Info().Int("count", st.Properties.Len()).Msg("properties restored from storage")
	}

	users := service.NewUserService(st, gens.Users, eventBus, clock, logging.Component(logger, "users"))
	dashboard := service.NewDashboardService(st, settings, clock)
	feed := catalog.NewFeed(eventBus, logging.Component(logger, "notifications"))

	return api.Services{
		Auth:         auth.NewService(kv, users, nil, cfg.Auth, logging.Component(logger, "auth")),
		Users:        users,
		Bookings:     service.NewBookingService(st, gens.Bookings, eventBus, cfg.Booking, clock, logging.Component(logger, "bookings")),
		Rentals:      service.NewRentalService(st, gens.Rentals, cfg.Booking, logging.Component(logger, "rentals")),
		Properties:   properties,
		Transactions: service.NewTransactionService(st, gens.Transactions, clock, logging.Component(logger, "transactions")),
		Settings:     settings,
		Dashboard:    dashboard,
		Tables:       service.NewTables(st, settings, dashboard),
		Catalog:      catalog.NewService(st, kv, feed, logging.Component(logger, "catalog")),
		KV:           kv,
		ExportDir:    cfg.Exports.Path,
	}, nil
}

// subscribeAudit logs every domain event at debug level.
func subscribeAudit(bus *events.EventBus, logger *zerolog.Logger) {
	audit := logging.Component(logger, "audit")
	bus.Subscribe(func(e *events.Event) error {
		audit.Debug().Str("event", e.Type).Bytes("payload", e.Payload).Msg("domain event")
		return nil
	},
		events.EventRecordCreated,
		events.EventRecordUpdated,
		events.EventRecordDeleted,
		events.EventRecordsReplaced,
		events.EventStatusChanged,
		events.EventSettingsChanged,
		events.EventNotificationPushed,
	)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.HTTP.Port).Str("storage", cfg.Storage.Backend).Msg("RentEase API started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("RentEase API stopped")
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
