package scheduler

import (
	"context"
	"time"

	"github.com/ceacwatch/ceacwatch/internal/logger"
	"github.com/ceacwatch/ceacwatch/internal/session"
)

const (
	// DefaultSweepInterval is how often the reaper scans for idle sessions.
	DefaultSweepInterval = 15 * time.Second
)

// Reaper periodically evicts sessions that idled past their timeout,
// releasing their browser handles. A session in the middle of an operation is
// never torn down; the store skips it and the next sweep re-checks.
type Reaper struct {
	store    *session.Store
	logger   logger.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
}

// NewReaper creates a reaper for the given store.
func NewReaper(store *session.Store, log logger.Logger, interval, timeout time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if timeout <= 0 {
		timeout = session.DefaultIdleTimeout
	}
	return &Reaper{
		store:    store,
		logger:   log,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (rp *Reaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(rp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rp.Sweep()
			case <-rp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the reaper.
func (rp *Reaper) Stop() {
	close(rp.stopCh)
}

// Sweep runs one eviction pass.
func (rp *Reaper) Sweep() {
	if evicted := rp.store.EvictIdle(rp.timeout); evicted > 0 {
		rp.logger.Info("evicted idle sessions",
			logger.Int("count", evicted),
			logger.Duration("timeout", rp.timeout))
	}
}
