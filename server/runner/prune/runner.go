// Package prune removes stale pending resolutions and idle rate limiter state.
package prune

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/kronos/store"
)

// Sweeper drops in-memory state that has not been used for maxIdle.
type Sweeper interface {
	Cleanup(maxIdle time.Duration) int
}

type Runner struct {
	store    *store.Store
	sweepers []Sweeper
	interval time.Duration
	maxAge   time.Duration
}

// NewRunner creates a runner that deletes pending resolutions older than maxAge
// every interval.
func NewRunner(store *store.Store, maxAge, interval time.Duration, sweepers ...Sweeper) *Runner {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Runner{
		store:    store,
		sweepers: sweepers,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("prune runner stopped")
			return
		}
	}
}

// RunOnce prunes once and returns the number of deleted rows.
func (r *Runner) RunOnce(ctx context.Context) int64 {
	if ctx.Err() != nil {
		return 0
	}

	deleted, err := r.store.PrunePendingResolutions(ctx, r.maxAge)
	if err != nil {
		slog.Error("failed to prune pending resolutions", "error", err)
	} else if deleted > 0 {
		slog.Info("pruned pending resolutions", "count", deleted)
	}

	for _, s := range r.sweepers {
		if n := s.Cleanup(r.interval); n > 0 {
			slog.Debug("swept idle entries", "count", n)
		}
	}
	return deleted
}
