package multiplier

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTickInterval is how often the global expiry is polled.
const DefaultTickInterval = 1 * time.Second

// ExpiryScheduler polls the global multiplier for expiry.
// Per-player overrides expire through their own timers and are not polled here.
type ExpiryScheduler struct {
	store     *Store
	interval  time.Duration
	onExpired func()
}

// NewExpiryScheduler creates a scheduler. onExpired runs once per global
// expiry, after the factor was reset. Must call Start to begin polling.
func NewExpiryScheduler(store *Store, interval time.Duration, onExpired func()) *ExpiryScheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if onExpired == nil {
		onExpired = func() {}
	}
	return &ExpiryScheduler{
		store:     store,
		interval:  interval,
		onExpired: onExpired,
	}
}

// Start runs the poll loop (blocks until ctx is canceled).
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("multiplier expiry scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("multiplier expiry scheduler stopping")
			return ctx.Err()

		case <-ticker.C:
			s.Tick(s.store.Now())
		}
	}
}

// Tick runs one reconciliation at now. Returns true if the global multiplier expired.
func (s *ExpiryScheduler) Tick(now time.Time) bool {
	if !s.store.ClearGlobalIfExpired(now) {
		return false
	}
	s.onExpired()
	return true
}
