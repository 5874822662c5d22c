package metrics_test

import (
	"testing"
	"time"

	"github.com/opsboard/report-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMetrics_ObserveGeneration(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewReportMetrics(registry)

	m.ObserveGeneration(metrics.OutcomeSuccess, "structured", 120*time.Millisecond)
	m.ObserveGeneration(metrics.OutcomeSuccess, "structured", 80*time.Millisecond)
	m.ObserveGeneration(metrics.OutcomeInvalid, "exportable", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Generated(metrics.OutcomeSuccess, "structured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generated(metrics.OutcomeInvalid, "exportable")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Generated(metrics.OutcomeUnavailable, "structured")))

	count, err := testutil.GatherAndCount(registry, "report_generation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReportMetrics_ObserveDigest(t *testing.T) {
	m := metrics.NewReportMetrics(prometheus.NewRegistry())

	m.ObserveDigest(metrics.OutcomeSuccess)
	m.ObserveDigest(metrics.OutcomeUnavailable)
	m.ObserveDigest(metrics.OutcomeSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Digests(metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Digests(metrics.OutcomeUnavailable)))
}

func TestReportMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.ReportMetrics

	assert.NotPanics(t, func() {
		m.ObserveGeneration(metrics.OutcomeSuccess, "structured", time.Second)
		m.ObserveDigest(metrics.OutcomeSuccess)
	})
}
