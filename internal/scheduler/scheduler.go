package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler wraps a time.Ticker to execute a background job at a fixed
// interval. It stops when the parent context is done or Shutdown is called.
// Each run inherits the parent context.
//
// The job should be idempotent and handle its own errors; Scheduler does not
// add a per-run timeout.
type Scheduler struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
	log      *zap.SugaredLogger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New constructs a Scheduler. If interval <1s, it is clamped to 1s to avoid
// busy-loops.
func New(name string, interval time.Duration, fn func(ctx context.Context), logger *zap.SugaredLogger) *Scheduler {
	if interval < time.Second {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		fn:       fn,
		log:      logger.With("job", name),
		stopCh:   make(chan struct{}),
	}
}

// Interval returns the effective tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run executes the job once immediately, then on every tick. It blocks until
// the parent context is done or Shutdown() is called. Safe to call in its own
// goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Infow("scheduler started", "interval", s.interval.String())

	s.fn(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler: parent context cancelled")
			return
		case <-s.stopCh:
			s.log.Info("scheduler: shutdown signal received")
			return
		case <-ticker.C:
			s.fn(ctx)
		}
	}
}

// Shutdown signals the Run loop to exit as soon as possible.
// It is idempotent.
func (s *Scheduler) Shutdown() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
