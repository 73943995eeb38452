package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the KYC pipeline and its external
// dependencies. Degraded-mode counters exist so operators can see when the
// sanctions source is failing open.
type Metrics struct {
	// Per-signal check latencies (ocr, face, sanctions)
	SignalLatency *prometheus.HistogramVec

	// Pipeline outcomes by result status
	KYCOutcome *prometheus.CounterVec

	// Sanctions checker failures that degraded to "not restricted"
	SanctionsDegraded prometheus.Counter
}

// New creates a Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		SignalLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peerlend_kyc_signal_duration_seconds",
			Help:    "Duration of individual KYC signal checks by source",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}), // source: "ocr", "face", "sanctions"

		KYCOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peerlend_kyc_outcomes_total",
			Help: "Total KYC pipeline outcomes by status",
		}, []string{"status"}),

		SanctionsDegraded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peerlend_sanctions_degraded_total",
			Help: "Sanctions lookups that failed open due to source errors",
		}),
	}
}

// ObserveSignalLatency records the duration of a single signal check.
func (m *Metrics) ObserveSignalLatency(source string, d time.Duration) {
	if m != nil {
		m.SignalLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a pipeline outcome.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.KYCOutcome.WithLabelValues(status).Inc()
	}
}

// IncrementSanctionsDegraded records a fail-open sanctions lookup.
func (m *Metrics) IncrementSanctionsDegraded() {
	if m != nil {
		m.SanctionsDegraded.Inc()
	}
}
