package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/host"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
)

const (
	// DefaultCardIdleTTL is how long a hosted card survives without being read
	DefaultCardIdleTTL = 30 * time.Minute
)

// CardCollector destroys hosted cards that nobody has read for a while
type CardCollector struct {
	host     *host.Host
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewCardCollector creates a new card collector
func NewCardCollector(h *host.Host, log logger.Logger, interval, ttl time.Duration) *CardCollector {
	if ttl == 0 {
		ttl = DefaultCardIdleTTL
	}

	return &CardCollector{
		host:     h,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic collection
func (cc *CardCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(cc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cc.Collect()
			case <-cc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector
func (cc *CardCollector) Stop() {
	close(cc.stopCh)
}

// Collect evicts idle cards and returns how many were destroyed
func (cc *CardCollector) Collect() int {
	ids := cc.host.EvictIdle(cc.now().Add(-cc.ttl))

	if len(ids) > 0 {
		cc.logger.Info("evicted idle cards",
			logger.Int("count", len(ids)),
			logger.Int("remaining", cc.host.Count()))
	} else {
		cc.logger.Debug("no idle cards to evict")
	}

	return len(ids)
}
