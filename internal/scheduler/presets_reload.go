package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/passgen/internal/logger"
	"github.com/MrSnakeDoc/passgen/internal/presets"
)

// PresetsReloader periodically reloads presets.yaml into the registry
type PresetsReloader struct {
	loader        *presets.Loader
	registry      *presets.Registry
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewPresetsReloader creates a new presets reloader
func NewPresetsReloader(
	presetsFile string,
	registry *presets.Registry,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *PresetsReloader {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PresetsReloader{
		loader:        presets.NewLoader(presetsFile),
		registry:      registry,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the presets once, then keeps reloading them in the background
func (pr *PresetsReloader) Start(ctx context.Context) error {
	if err := pr.Reload(ctx); err != nil {
		return fmt.Errorf("initial presets load failed: %w", err)
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := pr.Reload(ctx); err != nil {
					pr.logger.Error("failed to reload presets", logger.Error(err))
				}
			case <-pr.manualTrigger:
				pr.logger.Info("manual presets reload triggered")
				if err := pr.Reload(ctx); err != nil {
					pr.logger.Error("failed to reload presets", logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader. Safe to call more than once.
func (pr *PresetsReloader) Stop() {
	pr.stopOnce.Do(func() { close(pr.stopCh) })
}

// Reload reads the file and swaps the registry content. Invalid presets are
// skipped with a warning; a file that cannot be read keeps the previous set.
func (pr *PresetsReloader) Reload(_ context.Context) error {
	pr.logger.Debug("reloading presets", logger.String("file", pr.loader.Path()))

	file, err := pr.loader.Load()
	if err != nil {
		return err
	}

	loaded, errs := presets.Map(file)
	for _, e := range errs {
		pr.logger.Warn("skipping invalid preset", logger.Error(e))
	}

	pr.registry.Replace(loaded)
	pr.logger.Info("presets loaded",
		logger.Int("count", len(loaded)),
		logger.Int("skipped", len(errs)))

	return nil
}
