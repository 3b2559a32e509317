package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	computations *prometheus.HistogramVec
	cacheOps     *prometheus.CounterVec
	skips        *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		computations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corrscope_computation_duration_seconds",
				Help:    "Duration of correlation computations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"symbol", "trigger"},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corrscope_cache_ops_total",
				Help: "Cache lookups by store and outcome",
			},
			[]string{"store", "outcome"},
		),
		skips: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corrscope_candidates_skipped_total",
				Help: "Candidate series skipped during computation, by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corrscope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordComputation records one finished correlation computation.
func (r *Recorder) RecordComputation(symbol, trigger string, seconds float64) {
	r.computations.WithLabelValues(symbol, trigger).Observe(seconds)
}

// RecordCache records a cache lookup outcome ("hit" or "miss").
func (r *Recorder) RecordCache(store, outcome string) {
	r.cacheOps.WithLabelValues(store, outcome).Inc()
}

// RecordSkip records a skipped candidate series.
func (r *Recorder) RecordSkip(reason string) {
	r.skips.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
