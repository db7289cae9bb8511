package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-bootstrap/internal/api/http"
	"github.com/spec-kit/ticket-bootstrap/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bootstrap/internal/bootstrap"
	"github.com/spec-kit/ticket-bootstrap/internal/config"
	"github.com/spec-kit/ticket-bootstrap/internal/events"
	"github.com/spec-kit/ticket-bootstrap/internal/observability"
	"github.com/spec-kit/ticket-bootstrap/internal/persistence"
	"github.com/spec-kit/ticket-bootstrap/internal/repository"
	"github.com/spec-kit/ticket-bootstrap/internal/repository/memory"
	"github.com/spec-kit/ticket-bootstrap/internal/service"
	"github.com/spec-kit/ticket-bootstrap/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		store    *repository.Store
		dbPinger handlers.Pinger
	)
	opts := bootstrap.OptionsFromConfig(cfg)

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; state is lost on exit")
		store = memory.NewStore().Repositories()
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if pg.PoolHandle() == nil {
			logger.Fatal("postgres store driver requires POSTGRES_DSN")
		}

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		if opts.DatabaseVersion == "" {
			if opts.DatabaseVersion, err = pg.ServerVersion(ctx); err != nil {
				logger.Warn("unable to read database version", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
		dbPinger = pg
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool, err := worker.NewPool(cfg.Bootstrap.Concurrency, logger)
	if err != nil {
		logger.Fatal("failed to create worker pool", zap.Error(err))
	}
	defer pool.Release(5 * time.Second)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewSettingsPublisher(dispatcher, store.Settings, redis, logger).RegisterHandlers()

	bootstrapper := bootstrap.New(bootstrap.Dependencies{
		Store:      store,
		Pool:       pool,
		Fs:         afero.NewOsFs(),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	}, opts)

	bootstrapper.Init(ctx, func(res *bootstrap.Result) {
		fields := []zap.Field{
			zap.Int("steps_completed", len(res.Completed)),
			zap.String("installation_id", res.InstallationID),
		}
		if res.Timezone != nil {
			fields = append(fields, zap.String("timezone", res.Timezone.String()))
		}
		logger.Info("startup bootstrap finished", fields...)
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dbPinger, redis, metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
