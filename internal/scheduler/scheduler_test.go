package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNew_ClampsInterval(t *testing.T) {
	s := New("test", 10*time.Millisecond, func(context.Context) {}, nil)
	assert.Equal(t, time.Second, s.Interval())
}

func TestRun_RunsImmediatelyAndStopsOnShutdown(t *testing.T) {
	var calls atomic.Int32
	ran := make(chan struct{}, 1)
	s := New("test", time.Hour, func(context.Context) {
		calls.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
	}, zaptest.NewLogger(t).Sugar())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	s.Shutdown()
	s.Shutdown() // idempotent

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
	require.Equal(t, int32(1), calls.Load())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New("test", time.Hour, func(context.Context) {}, zaptest.NewLogger(t).Sugar())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
