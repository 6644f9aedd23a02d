package slate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements MetricsCollector on top of a Prometheus
// registry. Operation latencies land in one histogram labeled by operation;
// errors are counted separately.
type PrometheusCollector struct {
	durations   *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	scanResults prometheus.Histogram
}

var _ MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates a collector and registers its metrics with
// reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slate",
			Name:      "operation_duration_seconds",
			Help:      "Latency of slate store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slate",
			Name:      "operation_errors_total",
			Help:      "Failed slate store operations.",
		}, []string{"operation"}),
		scanResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slate",
			Name:      "scan_results",
			Help:      "Records returned per scan.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	reg.MustRegister(c.durations, c.errors, c.scanResults)
	return c
}

func (c *PrometheusCollector) record(op string, duration time.Duration, err error) {
	c.durations.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		c.errors.WithLabelValues(op).Inc()
	}
}

// RecordStore implements MetricsCollector.
func (c *PrometheusCollector) RecordStore(duration time.Duration, err error) {
	c.record("store", duration, err)
}

// RecordRetrieve implements MetricsCollector.
func (c *PrometheusCollector) RecordRetrieve(duration time.Duration, err error) {
	c.record("retrieve", duration, err)
}

// RecordDelete implements MetricsCollector.
func (c *PrometheusCollector) RecordDelete(duration time.Duration, err error) {
	c.record("delete", duration, err)
}

// RecordScan implements MetricsCollector.
func (c *PrometheusCollector) RecordScan(results int, duration time.Duration, err error) {
	c.record("scan", duration, err)
	c.scanResults.Observe(float64(results))
}

// RecordEvent implements MetricsCollector.
func (c *PrometheusCollector) RecordEvent(duration time.Duration, err error) {
	c.record("event", duration, err)
}
