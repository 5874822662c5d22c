package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for report generation
const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid"
	OutcomeForbidden    = "forbidden"
	OutcomeUnavailable  = "unavailable"
	OutcomeUnauthorized = "unauthorized"
)

// ReportMetrics instruments report generation
type ReportMetrics struct {
	generated *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	digests   *prometheus.CounterVec
}

// NewReportMetrics creates the collectors and registers them with registerer.
// A nil registerer falls back to the default Prometheus registry.
func NewReportMetrics(registerer prometheus.Registerer) *ReportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &ReportMetrics{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_generations_total",
			Help: "Period report generations by outcome and format.",
		}, []string{"outcome", "format"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "report_generation_duration_seconds",
			Help:    "Period report generation latency including snapshot reads.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		digests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_digest_runs_total",
			Help: "Scheduled digest report runs by outcome.",
		}, []string{"outcome"}),
	}

	registerer.MustRegister(m.generated, m.duration, m.digests)
	return m
}

// ObserveGeneration records one report request
func (m *ReportMetrics) ObserveGeneration(outcome, format string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generated.WithLabelValues(outcome, format).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveDigest records one digest run for an organization
func (m *ReportMetrics) ObserveDigest(outcome string) {
	if m == nil {
		return
	}
	m.digests.WithLabelValues(outcome).Inc()
}

// Generated returns the counter for outcome and format
func (m *ReportMetrics) Generated(outcome, format string) prometheus.Counter {
	return m.generated.WithLabelValues(outcome, format)
}

// Digests returns the digest counter for outcome
func (m *ReportMetrics) Digests(outcome string) prometheus.Counter {
	return m.digests.WithLabelValues(outcome)
}
