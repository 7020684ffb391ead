package analytics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks analytics computation activity.
type Metrics struct {
	computeTotal    *prometheus.CounterVec
	computeErrors   *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
	providersSeen   prometheus.Gauge
}

// NewMetrics creates the analytics metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		computeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_compute_total",
				Help: "Total number of analytics report computations",
			},
			[]string{"report"},
		),
		computeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_compute_errors_total",
				Help: "Total number of failed analytics report computations",
			},
			[]string{"report"},
		),
		computeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analytics_compute_duration_seconds",
				Help:    "Duration of analytics report computations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report"},
		),
		providersSeen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "analytics_providers_last_run",
				Help: "Number of providers included in the most recent platform performance computation",
			},
		),
	}
}

// Register registers all analytics metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.computeTotal,
		m.computeErrors,
		m.computeDuration,
		m.providersSeen,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeCompute(report string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.computeTotal.WithLabelValues(report).Inc()
	m.computeDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
	if err != nil {
		m.computeErrors.WithLabelValues(report).Inc()
	}
}

func (m *Metrics) setProvidersSeen(n int) {
	if m == nil {
		return
	}
	m.providersSeen.Set(float64(n))
}
