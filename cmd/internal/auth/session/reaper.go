package session

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically deletes expired session rows. Expiry is enforced
// at resolution time regardless; the reaper only keeps the table from
// accumulating dead rows.
type Reaper struct {
	store    Store
	interval time.Duration
	log      *slog.Logger
}

// NewReaper builds a reaper over store. A non-positive interval falls
// back to DefaultReapInterval.
func NewReaper(store Store, interval time.Duration, log *slog.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reaper{store: store, interval: interval, log: log}
}

// Run sweeps once immediately, then on every tick until ctx is
// canceled.
func (r *Reaper) Run(ctx context.Context) {
	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	n, err := r.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.log.Error("session.reaper.sweep.fail", "error", err)
		return
	}
	if n > 0 {
		r.log.Info("session.reaper.sweep", "deleted", n)
	}
}
