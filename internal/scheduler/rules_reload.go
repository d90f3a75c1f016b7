// Package scheduler runs the background reload loop for the rules file.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hindsightlabs/hindsight/internal/logger"
	"github.com/hindsightlabs/hindsight/internal/rules"
)

// RulesReloader handles periodic reloading of the rules file
type RulesReloader struct {
	loader        *rules.Loader
	holder        *rules.Holder
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewRulesReloader creates a new rules reloader
func NewRulesReloader(
	loader *rules.Loader,
	holder *rules.Holder,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *RulesReloader {
	return &RulesReloader{
		loader:        loader,
		holder:        holder,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (rr *RulesReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := rr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	// Start periodic reload
	ticker := time.NewTicker(rr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload rules",
						logger.Error(err))
				}
			case <-rr.manualTrigger:
				rr.logger.Info("manual reload triggered")
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload rules",
						logger.Error(err))
				}
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (rr *RulesReloader) Stop() {
	close(rr.stopCh)
}

// Reload loads the rules file and swaps the active ruleset
func (rr *RulesReloader) Reload(_ context.Context) error {
	rr.logger.Info("reloading rules")

	rs, err := rr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	rr.holder.Swap(rs)

	rr.logger.Info("rules reloaded",
		logger.Int("holidays", len(rs.Holidays)),
		logger.Int("min_length", rs.Validation.MinLength))

	return nil
}
