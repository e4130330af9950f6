package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/tourguide/internal/core/ports"
	"github.com/samirrijal/tourguide/internal/pkg/metrics"
)

var ErrTrackerRunning = errors.New("tracker already running")

// Tracker tracks every known user in rounds. A round starts as soon as the
// tracker does, and the next one starts interval after the previous one ended.
type Tracker struct {
	users        ports.UserRepository
	tracking     *TrackingService
	interval     time.Duration
	roundTimeout time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTracker creates a stopped tracker.
func NewTracker(users ports.UserRepository, tracking *TrackingService, interval, roundTimeout time.Duration) *Tracker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Tracker{users: users, tracking: tracking, interval: interval, roundTimeout: roundTimeout}
}

// Start launches the round loop in the background.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		return ErrTrackerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(ctx, t.done)

	slog.Info("tracker started", "interval", t.interval)
	return nil
}

// Stop ends the loop and waits for the current round to return, or for ctx.
// Stopping a stopped tracker is a no-op.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if done == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		slog.Info("tracker stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop tracker: %w", ctx.Err())
	}
}

// Running reports whether the loop is active.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done != nil
}

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if _, err := t.RunRound(ctx); err != nil && ctx.Err() == nil {
			slog.Error("tracking round failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(t.interval):
		}
	}
}

// RunRound tracks every user once.
func (t *Tracker) RunRound(ctx context.Context) (RoundSummary, error) {
	users, err := t.users.All(ctx)
	if err != nil {
		return RoundSummary{}, fmt.Errorf("list users: %w", err)
	}

	summary, err := t.tracking.TrackAll(ctx, users, t.roundTimeout)
	metrics.TrackingRoundDuration.Observe(summary.Duration.Seconds())
	if err != nil {
		return summary, err
	}

	slog.Info("tracking round finished",
		"users", summary.Users,
		"tracked", summary.Tracked,
		"failed", summary.Failed,
		"incomplete", summary.Incomplete,
		"duration", summary.Duration)
	return summary, nil
}
