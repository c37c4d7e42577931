package session

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically evicts idle sessions from a Store.
type Reaper struct {
	store    *Store
	idle     time.Duration
	interval time.Duration
	onEvict  func(callID string)
	logger   *slog.Logger
}

// NewReaper builds a reaper. onEvict, if non-nil, is called once per
// evicted call after it has left the store.
func NewReaper(store *Store, idle, interval time.Duration, onEvict func(callID string), logger *slog.Logger) *Reaper {
	return &Reaper{
		store:    store,
		idle:     idle,
		interval: interval,
		onEvict:  onEvict,
		logger:   logger,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.SweepOnce()
		}
	}
}

// SweepOnce evicts idle sessions and returns how many were removed.
func (r *Reaper) SweepOnce() int {
	evicted := r.store.Sweep(r.idle)
	for _, callID := range evicted {
		r.logger.Info("evicted idle call session", "call_id", callID, "idle_timeout", r.idle)
		if r.onEvict != nil {
			r.onEvict(callID)
		}
	}
	return len(evicted)
}
