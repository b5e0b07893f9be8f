package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/passgen/internal/logger"
)

// DefaultGCInterval is how often expired in-memory keys are reclaimed
const DefaultGCInterval = 10 * time.Minute

// Sweeper drops expired keys. The in-memory store satisfies it.
type Sweeper interface {
	Sweep() int
}

// GarbageCollector reclaims expired timezone cache entries when the history
// store runs in memory. Redis expires keys on its own.
type GarbageCollector struct {
	kv       Sweeper
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(kv Sweeper, log logger.Logger, interval time.Duration) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &GarbageCollector{
		kv:       kv,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect(ctx)
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
}

// Collect runs one sweep and returns the number of removed keys
func (gc *GarbageCollector) Collect(_ context.Context) int {
	n := gc.kv.Sweep()
	if n > 0 {
		gc.logger.Info("garbage collection completed", logger.Int("expired_keys", n))
	} else {
		gc.logger.Debug("no keys to garbage collect")
	}
	return n
}
