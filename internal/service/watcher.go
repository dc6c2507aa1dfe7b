package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sales_bot/internal/storage"
	"sales_bot/pkg/metrics"
)

// AdFeed is the part of storage the Watcher reads. *storage.Database
// satisfies it.
type AdFeed interface {
	AdsCreatedAfter(ctx context.Context, afterID int64) []storage.Ad
	LastAdID(ctx context.Context) int64
	ListAllSubscriptions(ctx context.Context) []storage.Subscription
}

// Sender delivers a "new ad matches your search" notification to a user.
type Sender interface {
	Send(ctx context.Context, userID int64, ad storage.Ad) error
}

// Watcher announces newly created ads to users whose saved searches match.
// It remembers the highest ad id it has handled; ads created before Prime
// are never announced. Each user is notified at most once per ad even when
// several of their subscriptions match.
//
// Sends are throttled by a token bucket. Failed sends are logged and counted,
// not retried.
type Watcher struct {
	feed    AdFeed
	sender  Sender
	limiter *rate.Limiter
	log     *zap.SugaredLogger

	mu     sync.Mutex
	lastID int64
	// users already handled for an ad interrupted mid-way
	partialAd   int64
	partialSeen map[int64]bool
}

// WatcherOption mutates the watcher during construction.
type WatcherOption func(*Watcher)

// WithRateLimit sets the per-second rate and burst size. If rps <= 0 the
// limiter is disabled.
func WithRateLimit(rps float64, burst int) WatcherOption {
	return func(w *Watcher) {
		if rps <= 0 {
			w.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewWatcher constructs a Watcher sending at most 25 notifications per
// second unless overridden.
func NewWatcher(feed AdFeed, sender Sender, logger *zap.SugaredLogger, opts ...WatcherOption) *Watcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	w := &Watcher{
		feed:    feed,
		sender:  sender,
		limiter: rate.NewLimiter(25, 5),
		log:     logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Prime marks every existing ad as already handled.
func (w *Watcher) Prime(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastID = w.feed.LastAdID(ctx)
	w.log.Infow("watcher: primed", "last_ad_id", w.lastID)
}

// HandleCycle notifies subscribers about ads created since the previous
// cycle and returns the number of notifications sent. If ctx is cancelled
// mid-way, the next cycle resumes the current ad with the users not yet
// handled.
func (w *Watcher) HandleCycle(ctx context.Context) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	ads := w.feed.AdsCreatedAfter(ctx, w.lastID)
	if len(ads) == 0 {
		return 0
	}

	start := time.Now()
	subs := w.feed.ListAllSubscriptions(ctx)
	var sent, failed int

	for _, ad := range ads {
		notified := map[int64]bool{}
		if ad.ID == w.partialAd && w.partialSeen != nil {
			notified = w.partialSeen
		}
		for _, sub := range subs {
			if notified[sub.UserID] || !Match(sub, ad) {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				w.partialAd, w.partialSeen = ad.ID, notified
				w.log.Infow("watcher: context cancelled", "ad_id", ad.ID, "sent", sent, "failed", failed)
				return sent
			}
			notified[sub.UserID] = true
			if err := w.sender.Send(ctx, sub.UserID, ad); err != nil {
				metrics.IncrementNotification("failed")
				w.log.Warnw("watcher: send failed", "ad_id", ad.ID, "user_id", sub.UserID, "err", err)
				failed++
				continue
			}
			metrics.IncrementNotification("sent")
			sent++
		}
		w.lastID = ad.ID
		w.partialAd, w.partialSeen = 0, nil
	}

	w.log.Infow("watcher: cycle complete",
		"duration", time.Since(start).String(),
		"new_ads", len(ads),
		"subscriptions", len(subs),
		"sent", sent,
		"failed", failed)
	return sent
}

// LastHandledID returns the highest ad id already processed.
func (w *Watcher) LastHandledID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastID
}
