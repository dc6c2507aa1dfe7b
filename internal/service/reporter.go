package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sales_bot/internal/storage"
	"sales_bot/pkg/metrics"
)

// StatsSource is the part of storage.Store the Reporter reads.
type StatsSource interface {
	Stats(ctx context.Context) storage.Stats
	CountActiveUsers(ctx context.Context, within time.Duration) int
}

// Reporter refreshes the storage gauges. It only reads from storage.
type Reporter struct {
	store  StatsSource
	window time.Duration
	log    *zap.SugaredLogger
}

// NewReporter constructs a Reporter. A non-positive window falls back to
// storage.DefaultActiveWindow.
func NewReporter(store StatsSource, window time.Duration, logger *zap.SugaredLogger) *Reporter {
	if window <= 0 {
		window = storage.DefaultActiveWindow
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Reporter{store: store, window: window, log: logger}
}

// HandleCycle reads the current totals, publishes them as gauges and logs a
// summary line. It never panics.
func (r *Reporter) HandleCycle(ctx context.Context) {
	start := time.Now()

	stats := r.store.Stats(ctx)
	active := r.store.CountActiveUsers(ctx, r.window)

	metrics.UpdateStorageTotals(stats.Users, stats.Ads, stats.Subscriptions)
	metrics.UpdateActiveUsers(active)

	r.log.Infow("stats refreshed",
		"duration", time.Since(start).String(),
		"users", stats.Users,
		"active_users", active,
		"ads", stats.Ads,
		"subscriptions", stats.Subscriptions,
		"price_offers", stats.PriceOffers,
		"bot_open", stats.BotOpen)
}
