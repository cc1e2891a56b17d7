package mw

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/utils"
)

// RateLimitConfig sizes the per-client budget of outbound metadata fetches.
type RateLimitConfig struct {
	Burst      int           // requests a fresh client may make at once
	PerMinute  int           // sustained refill rate
	MaxClients int           // forces a sweep when this many clients are tracked (0 = unbounded)
	IdleTTL    time.Duration // forget clients idle this long (default: 15m)
	TrustProxy bool          // resolve IP from proxy headers when true
	Logger     logger.Logger // optional, logs rejected requests at debug level
}

// allowance is a token bucket for one client.
type allowance struct {
	tokens  float64
	updated time.Time
}

type fetchBudget struct {
	cfg       RateLimitConfig
	perSecond float64
	capacity  float64

	mu        sync.Mutex
	clients   map[string]*allowance
	lastSweep time.Time
}

func newFetchBudget(cfg RateLimitConfig) *fetchBudget {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	return &fetchBudget{
		cfg:       cfg,
		perSecond: float64(cfg.PerMinute) / 60,
		capacity:  float64(cfg.Burst),
		clients:   make(map[string]*allowance),
		lastSweep: time.Now(),
	}
}

// take spends one token for key. When the bucket is empty it reports how
// long until the next token.
func (b *fetchBudget) take(key string, now time.Time) (ok bool, remaining int, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= b.cfg.IdleTTL/4 ||
		(b.cfg.MaxClients > 0 && len(b.clients) >= b.cfg.MaxClients) {
		b.sweep(now)
	}

	a, found := b.clients[key]
	if !found {
		a = &allowance{tokens: b.capacity, updated: now}
		b.clients[key] = a
	}
	if dt := now.Sub(a.updated).Seconds(); dt > 0 {
		a.tokens = math.Min(b.capacity, a.tokens+dt*b.perSecond)
		a.updated = now
	}

	if a.tokens < 1 {
		secs := math.Ceil((1 - a.tokens) / b.perSecond)
		return false, 0, time.Duration(math.Max(secs, 1)) * time.Second
	}
	a.tokens--
	return true, int(a.tokens), 0
}

// sweep drops clients whose bucket has been full for at least IdleTTL.
func (b *fetchBudget) sweep(now time.Time) {
	for key, a := range b.clients {
		if now.Sub(a.updated) > b.cfg.IdleTTL {
			delete(b.clients, key)
		}
	}
	b.lastSweep = now
}

// RateLimit answers 429 once a client has spent its fetch budget. Every
// route wrapped by the same returned middleware draws from the same budget.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	budget := newFetchBudget(cfg)
	limit := strconv.Itoa(budget.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := utils.ClientIP(r, cfg.TrustProxy)

			ok, remaining, wait := budget.take(client, time.Now())
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retry := int(wait / time.Second)
			cfg.Logger.Debug("fetch budget exhausted",
				logger.String("ip", client),
				logger.String("path", r.URL.Path),
				logger.Int("retry_after", retry))

			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many preview requests"})
		})
	}
}
