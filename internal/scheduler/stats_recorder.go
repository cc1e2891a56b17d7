package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

const statsQueueSize = 256

// StatsWriter persists one fetch outcome.
type StatsWriter interface {
	RecordFetch(ctx context.Context, rawURL, outcome string, at time.Time) error
}

// StatsRecorder writes card settlements to the stats store off the fetch path.
// When the queue is full, settlements are dropped.
type StatsRecorder struct {
	store   StatsWriter
	logger  logger.Logger
	timeout time.Duration
	queue   chan preview.Settlement
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewStatsRecorder creates a recorder; each write is bounded by timeout
func NewStatsRecorder(store StatsWriter, log logger.Logger, timeout time.Duration) *StatsRecorder {
	return &StatsRecorder{
		store:   store,
		logger:  log,
		timeout: timeout,
		queue:   make(chan preview.Settlement, statsQueueSize),
		stopCh:  make(chan struct{}),
	}
}

// Record enqueues s. It never blocks.
func (sr *StatsRecorder) Record(s preview.Settlement) {
	select {
	case sr.queue <- s:
	default:
		sr.logger.Debug("stats queue full, dropping settlement",
			logger.String("url", s.URL))
	}
}

// Start runs the writer loop until Stop or ctx is done
func (sr *StatsRecorder) Start(ctx context.Context) error {
	sr.wg.Add(1)
	go func() {
		defer sr.wg.Done()
		for {
			select {
			case s := <-sr.queue:
				sr.write(ctx, s)
			case <-sr.stopCh:
				sr.drain(ctx)
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop flushes queued settlements and stops the writer
func (sr *StatsRecorder) Stop() {
	close(sr.stopCh)
	sr.wg.Wait()
}

func (sr *StatsRecorder) drain(ctx context.Context) {
	for {
		select {
		case s := <-sr.queue:
			sr.write(ctx, s)
		default:
			return
		}
	}
}

func (sr *StatsRecorder) write(ctx context.Context, s preview.Settlement) {
	ctx, cancel := context.WithTimeout(ctx, sr.timeout)
	defer cancel()

	outcome := preview.Outcome(s.Err)
	if err := sr.store.RecordFetch(ctx, s.URL, outcome, time.Now()); err != nil {
		sr.logger.Warn("failed to record fetch stats",
			logger.String("url", s.URL),
			logger.String("outcome", outcome),
			logger.Error(err))
	}
}
