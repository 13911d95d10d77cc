package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	updatesTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastRisk     *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		updatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskpulse_updates_total",
				Help: "Total number of processed price/state updates",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastRisk: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "riskpulse_last_risk",
				Help: "Last computed risk for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordUpdate counts a processed state update for a symbol.
func (r *Recorder) RecordUpdate(symbol string) {
	r.updatesTotal.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRisk records the last computed risk for a symbol.
func (r *Recorder) RecordRisk(symbol string, risk float64) {
	r.lastRisk.WithLabelValues(symbol).Set(risk)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
