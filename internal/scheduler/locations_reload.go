package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ceacwatch/ceacwatch/internal/logger"
	"github.com/ceacwatch/ceacwatch/internal/sources/locations"
)

// LocationsReloader keeps the embassy-post index in sync with locations.yaml,
// on a timer and on manual trigger.
type LocationsReloader struct {
	loader        *locations.Loader
	index         *locations.Index
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewLocationsReloader creates a reloader for the given locations file.
func NewLocationsReloader(
	locationsFile string,
	idx *locations.Index,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *LocationsReloader {
	return &LocationsReloader{
		loader:        locations.NewLoader(locationsFile),
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the file once, then reloads periodically and on trigger.
func (lr *LocationsReloader) Start(ctx context.Context) error {
	if err := lr.Reload(ctx); err != nil {
		return fmt.Errorf("initial locations load failed: %w", err)
	}

	ticker := time.NewTicker(lr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := lr.Reload(ctx); err != nil {
					lr.logger.Error("failed to reload locations",
						logger.Error(err))
				}
			case <-lr.manualTrigger:
				lr.logger.Info("manual locations reload triggered")
				if err := lr.Reload(ctx); err != nil {
					lr.logger.Error("failed to reload locations",
						logger.Error(err))
				}
			case <-lr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (lr *LocationsReloader) Stop() {
	close(lr.stopCh)
}

// Reload loads the locations file and swaps the index contents.
func (lr *LocationsReloader) Reload(_ context.Context) error {
	entries, err := lr.loader.Load()
	if err != nil {
		return err
	}
	lr.index.Update(entries)
	lr.logger.Info("loaded embassy locations",
		logger.Int("count", len(entries)))
	return nil
}
