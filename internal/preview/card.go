package preview

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/logger"
)

// Tag is the element name cards are registered and rendered under.
const Tag = "link-preview-card"

// Settlement reports the outcome of a fetch that was applied to a card.
// Superseded fetches are discarded and never reported.
type Settlement struct {
	URL      string
	Duration time.Duration
	Err      error
}

// Option configures a Card.
type Option func(*Card)

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Card) { c.log = l }
}

// WithURL sets the initial url through the regular setter path.
func WithURL(u string) Option {
	return func(c *Card) { c.initialURL = &u }
}

// WithSettleHook registers fn to run after every applied settlement.
func WithSettleHook(fn func(Settlement)) Option {
	return func(c *Card) { c.settleHooks = append(c.settleHooks, fn) }
}

// Card is the stateful preview component. The url property is its only
// input; display fields change only when the latest fetch settles.
type Card struct {
	url     Property[string]
	fetcher Fetcher
	log     logger.Logger

	initialURL  *string
	settleHooks []func(Settlement)

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	closed bool

	notifyMu sync.Mutex
	listen   Property[int] // bumps per state change; subscribers get snapshots
	unsubURL func()
}

// New creates a card in the Idle state and wires its lifecycle controller.
func New(f Fetcher, opts ...Option) *Card {
	ctx, stop := context.WithCancel(context.Background())
	c := &Card{
		fetcher: f,
		log:     logger.NewNop(),
		ctx:     ctx,
		stop:    stop,
		done:    closedChan(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.unsubURL = c.url.Subscribe(c.onURLChange)

	if c.initialURL != nil {
		c.SetURL(*c.initialURL)
	}
	return c
}

// SetURL sets the input url and reports whether it changed. A change
// triggers exactly one fetch; setting the current value does nothing.
func (c *Card) SetURL(u string) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return false
	}
	return c.url.Set(u)
}

// URL returns the current input url.
func (c *Card) URL() string { return c.url.Get() }

// State returns a snapshot of the card.
func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive a snapshot after every state change.
// The snapshot passed to the last call always matches the current state.
// fn must not call SetURL or Close synchronously.
func (c *Card) Subscribe(fn func(State)) (unsubscribe func()) {
	return c.listen.Subscribe(func(_, _ int) {
		fn(c.State())
	})
}

// Wait blocks until the fetch for the current url has settled.
func (c *Card) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		done := c.done
		c.mu.Unlock()

		select {
		case <-done:
			c.mu.Lock()
			current := c.done == done
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return ErrClosed
			}
			if current {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Done is closed once the card has been destroyed.
func (c *Card) Done() <-chan struct{} { return c.ctx.Done() }

// Close destroys the card: the in-flight fetch is cancelled and subscribers
// are dropped. Close is idempotent.
func (c *Card) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.unsubURL()
	c.stop()
	c.wg.Wait()
	c.listen.clear()
}

// notify tells subscribers the state changed. Notifications are serialized.
func (c *Card) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.listen.Set(c.listen.Get() + 1)
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
