package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
	redisstore "github.com/MrSnakeDoc/linkpreview/internal/store/redis"
)

const namespace = "linkpreview"

// StatsSource provides persisted per-host fetch counts.
type StatsSource interface {
	GetAllStats(ctx context.Context) ([]*redisstore.HostStats, error)
}

// Metrics owns the process registry and the fetch instruments.
type Metrics struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the runtime collectors, the fetch instruments and a gauge
// reporting liveCards. stats may be nil when Redis is disabled.
func New(liveCards func() int, stats StatsSource, log logger.Logger) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Metadata fetches applied to a card, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of applied metadata fetches.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetches,
		m.duration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cards_live",
			Help:      "Card instances currently hosted.",
		}, func() float64 { return float64(liveCards()) }),
	)

	if stats != nil {
		reg.MustRegister(&HostCollector{source: stats, log: log, timeout: 2 * time.Second})
	}
	return m
}

// ObserveSettlement records one applied fetch.
func (m *Metrics) ObserveSettlement(s preview.Settlement) {
	outcome := preview.Outcome(s.Err)
	m.fetches.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(s.Duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
