package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/linkpreview/internal/logger"
)

var hostFetchesDesc = prometheus.NewDesc(
	"linkpreview_host_fetches_total",
	"Persisted fetch count per target host and outcome",
	[]string{"host", "outcome"},
	nil,
)

// HostCollector is a custom Prometheus collector that reads per-host fetch
// counts from Redis on each scrape.
type HostCollector struct {
	source  StatsSource
	log     logger.Logger
	timeout time.Duration
}

// Describe sends the metric descriptor to the channel.
func (c *HostCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- hostFetchesDesc
}

// Collect queries the store and emits one counter per host and outcome.
func (c *HostCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	all, err := c.source.GetAllStats(ctx)
	if err != nil {
		c.log.Warn("failed to collect host fetch metrics", logger.Error(err))
		return
	}
	for _, stats := range all {
		for outcome, count := range stats.Outcomes {
			ch <- prometheus.MustNewConstMetric(
				hostFetchesDesc,
				prometheus.CounterValue,
				float64(count),
				stats.Host,
				outcome,
			)
		}
	}
}
