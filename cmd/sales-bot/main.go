package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sales_bot/internal/config"
	"sales_bot/internal/scheduler"
	"sales_bot/internal/service"
	"sales_bot/internal/storage"
	"sales_bot/pkg/logger"
	"sales_bot/pkg/metrics"
)

func main() {
	// 1. Load configuration
	cfg := config.MustLoad()

	// 2. Init structured logger (zap based)
	log := logger.New(cfg.LogLevel)
	defer logger.Sync(log)

	log.Infow("starting sales-bot",
		"version", cfg.Version,
		"backend", cfg.Backend,
		"admins", len(cfg.AdminIDs),
		"managers", len(cfg.ManagerIDs))

	// 3. Root context with graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Expose Prometheus metrics endpoint (optional)
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = metrics.MustServe(cfg.MetricsAddr, log)
	}

	// 5. Storage, mirrored to the configured backend
	persister, err := openPersister(ctx, cfg, log)
	if err != nil {
		log.Fatalw("init storage failed", "backend", cfg.Backend, "err", err)
	}
	opts := []storage.Option{
		storage.WithLogger(log),
		storage.WithSampleAds(cfg.SeedSampleAds),
	}
	if persister != nil {
		opts = append(opts, storage.WithPersister(persister))
	}
	db := storage.New(ctx, opts...)

	// 6. Background jobs: statistics gauges and subscription notifications
	reporter := service.NewReporter(db, cfg.ActiveWindow, log)
	watcher := service.NewWatcher(db, service.NewLogSender(log), log,
		service.WithRateLimit(cfg.NotifyRate, 5))
	watcher.Prime(ctx)

	jobs := []*scheduler.Scheduler{
		scheduler.New("stats", cfg.StatsInterval, reporter.HandleCycle, log),
		scheduler.New("watcher", cfg.WatchInterval, func(ctx context.Context) { watcher.HandleCycle(ctx) }, log),
	}
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job.Run(ctx)
		}()
	}

	// 7. Wait for termination signal
	<-ctx.Done()
	log.Info("shutdown signal received, shutting down ...")

	// 8. Graceful shutdown
	for _, job := range jobs {
		job.Shutdown()
	}
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Close(shutdownCtx); err != nil {
		log.Warnw("storage close error", "err", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warnw("metrics server shutdown error", "err", err)
		}
	}

	log.Info("bye")
}

// openPersister returns the Persister for the configured backend, or nil for
// the in-memory one.
func openPersister(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (storage.Persister, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		return storage.NewJSONFiles(cfg.DataDir, log)
	case config.BackendSQLite:
		return storage.NewSQLite(cfg.DBPath)
	case config.BackendPostgres:
		return storage.NewPostgreSQL(ctx, cfg.PostgresDSN)
	default:
		return nil, nil
	}
}
