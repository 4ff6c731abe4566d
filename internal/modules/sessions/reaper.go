package sessions

import (
	"context"
	"log/slog"
	"time"

	"filesmanager/internal/metrics"
	"filesmanager/internal/sessionstore"
)

// Reaper deletes expired sessions on an interval. Expiry is also enforced
// at authorization time, so the reaper only reclaims storage.
type Reaper struct {
	store    sessionstore.Store
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewReaper(store sessionstore.Store, interval time.Duration, m *metrics.Metrics) *Reaper {
	return &Reaper{store: store, interval: interval, metrics: m, now: time.Now}
}

// Run sweeps until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				slog.Error("session sweep failed", "error", err)
			}
		}
	}
}

// Sweep deletes every session that has expired and returns the count.
func (r *Reaper) Sweep(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteExpired(ctx, r.now())
	if err != nil {
		return 0, err
	}
	r.metrics.SessionsReaped(n)
	if n > 0 {
		slog.Info("expired sessions removed", "count", n)
	}
	return n, nil
}
