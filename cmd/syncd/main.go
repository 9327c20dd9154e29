package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-sync/internal/api/http"
	"github.com/spec-kit/ticket-sync/internal/api/http/handlers"
	"github.com/spec-kit/ticket-sync/internal/backend"
	"github.com/spec-kit/ticket-sync/internal/config"
	"github.com/spec-kit/ticket-sync/internal/consumer"
	"github.com/spec-kit/ticket-sync/internal/events"
	"github.com/spec-kit/ticket-sync/internal/kv"
	"github.com/spec-kit/ticket-sync/internal/observability"
	"github.com/spec-kit/ticket-sync/internal/sync"
	"github.com/spec-kit/ticket-sync/internal/taxonomy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := kv.NewRedis(cfg.Redis, logger)
	defer store.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	client := backend.NewClient(cfg.Backend.BaseURL, logger)
	cache := sync.NewCache(store, logger)

	monitor := sync.NewMonitor(sync.MonitorDependencies{
		Fetcher:    client,
		Cache:      cache,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	}, sync.MonitorOptions{
		PollInterval: cfg.Backend.PollInterval(),
		PollTimeout:  cfg.Backend.PollTimeout(),
		RetryTimeout: cfg.Backend.RetryTimeout(),
	})

	applier := sync.NewApplier(client, monitor, metrics, logger)
	taxonomyStore := taxonomy.NewStore(ctx, store, dispatcher, client, logger)

	filters := consumer.NewFilterOptions(taxonomyStore)
	defer filters.Close()

	go monitor.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Sync:     handlers.NewSyncHandler(monitor, applier),
		Taxonomy: handlers.NewTaxonomyHandler(taxonomyStore),
		Stats:    handlers.NewStatsHandler(monitor, cfg.Backend.OverdueAfter()),
		Filters:  filters,
	})

	go func() {
		if err := app.Listen(cfg.App.LocalAddr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	logger.Info("sync daemon started",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("local_api", cfg.App.LocalAddr()),
		zap.Duration("poll_interval", cfg.Backend.PollInterval()))

	waitForShutdown(logger)
	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
