package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FigureMetrics tracks per-endpoint latency and failures of the figure API.
type FigureMetrics struct {
	Latency *prometheus.HistogramVec
	Errors  *prometheus.CounterVec
	Limited *prometheus.CounterVec
}

// NewFigureMetrics registers the figure API collectors on reg.
func NewFigureMetrics(reg prometheus.Registerer) *FigureMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &FigureMetrics{
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "telescopestatus",
				Subsystem: "figures",
				Name:      "latency_seconds",
				Help:      "Latency of figure endpoints",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		Errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "telescopestatus",
				Subsystem: "figures",
				Name:      "errors_total",
				Help:      "Errors by figure endpoint",
			},
			[]string{"endpoint"},
		),
		Limited: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "telescopestatus",
				Subsystem: "figures",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the per-client rate limiter",
			},
			[]string{"endpoint"},
		),
	}
}

// Observe records one call to endpoint.
func (m *FigureMetrics) Observe(endpoint string, seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.Latency.WithLabelValues(endpoint).Observe(seconds)
	if failed {
		m.Errors.WithLabelValues(endpoint).Inc()
	}
}

// RateLimited records a rejected call to endpoint.
func (m *FigureMetrics) RateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.Limited.WithLabelValues(endpoint).Inc()
}
