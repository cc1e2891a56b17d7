package preview

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/logger"
)

// onURLChange is the lifecycle controller: one fetch per url change.
func (c *Card) onURLChange(_, next string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	// Supersede whatever is in flight.
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	c.state.URL = next

	if next == "" {
		c.state.reset()
		c.done = closedChan()
		c.mu.Unlock()

		c.log.Debug("empty url, fetch skipped")
		c.notify()
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.state.Loading = true
	c.wg.Add(1)
	c.mu.Unlock()

	c.notify()
	go c.fetch(ctx, cancel, gen, next, done)
}

// fetch runs one metadata request and applies it if still current.
func (c *Card) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, u string, done chan struct{}) {
	defer c.wg.Done()
	defer close(done)
	defer cancel()

	start := time.Now()
	md, err := c.fetcher.Fetch(ctx, u)
	elapsed := time.Since(start)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarding superseded fetch",
			logger.String("url", u),
			logger.Duration("elapsed", elapsed))
		return
	}

	if err != nil {
		c.state.fail()
	} else {
		c.state.apply(md)
	}
	c.state.Loading = false
	c.cancel = nil
	c.mu.Unlock()

	if err != nil {
		c.logFailure(u, err)
	} else {
		c.log.Debug("preview resolved",
			logger.String("url", u),
			logger.Duration("elapsed", elapsed))
	}

	c.notify()

	s := Settlement{URL: u, Duration: elapsed, Err: err}
	for _, hook := range c.settleHooks {
		hook(s)
	}
}

func (c *Card) logFailure(u string, err error) {
	kind := "unknown"
	if k, ok := KindOf(err); ok {
		kind = k.String()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
	}
	c.log.Warn("preview unavailable",
		logger.String("url", u),
		logger.String("kind", kind),
		logger.Error(err))
}
