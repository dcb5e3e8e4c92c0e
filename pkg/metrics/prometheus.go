package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchDuration *prometheus.HistogramVec
	rowsLoaded    *prometheus.GaugeVec
	errorsTotal   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "telescopestatus_archive_fetch_duration_seconds",
				Help:    "Duration of archive observation fetches in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"telescope"},
		),
		rowsLoaded: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "telescopestatus_observation_rows",
				Help: "Rows in the most recently loaded observation table",
			},
			[]string{"telescope"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telescopestatus_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telescopestatus_cache_lookups_total",
				Help: "Cache lookups by source and outcome",
			},
			[]string{"source", "hit"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "telescopestatus_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records a completed archive fetch.
func (r *Recorder) RecordFetch(telescope string, rows int, seconds float64) {
	r.fetchDuration.WithLabelValues(telescope).Observe(seconds)
	r.rowsLoaded.WithLabelValues(telescope).Set(float64(rows))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheLookup records a hit or miss against a cache source.
func (r *Recorder) RecordCacheLookup(source string, hit bool) {
	r.cacheLookups.WithLabelValues(source, strconv.FormatBool(hit)).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
