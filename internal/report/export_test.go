package report_test

import (
	"encoding/json"
	"testing"

	"github.com/opsboard/report-api/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToExport(t *testing.T) {
	r := report.Build(richSnapshot(), marchPeriods(t), now, report.DefaultOptions())

	doc := report.ToExport(r)

	require.Len(t, doc.Sections, 5)
	keys := make([]string, 0, 5)
	titles := make([]string, 0, 5)
	for _, s := range doc.Sections {
		keys = append(keys, s.Key)
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"summary", "operational", "sales", "financial", "insights"}, keys)
	assert.Equal(t, []string{"Resumo Executivo", "Operacional", "Vendas", "Financeiro", "Insights"}, titles)
	assert.Equal(t, r.OrganizationID, doc.OrganizationID)
	assert.Equal(t, r.GeneratedAt, doc.GeneratedAt)

	t.Run("values are copied from the report", func(t *testing.T) {
		metric := func(section, key string) any {
			for _, s := range doc.Sections {
				if s.Key != section {
					continue
				}
				for _, m := range s.Metrics {
					if m.Key == key {
						return m.Value
					}
				}
			}
			return nil
		}
		assert.Equal(t, r.Recurring.MRR, metric("financial", "mrr"))
		assert.Equal(t, r.Leads.ConversionRate, metric("sales", "conversionRate"))
		assert.Equal(t, r.Insights.OperationalBottleneck.Stage, metric("insights", "operationalBottleneck"))
	})

	t.Run("focus actions are listed in order", func(t *testing.T) {
		insights := doc.Sections[4]
		require.NotEmpty(t, insights.Tables)
		focus := insights.Tables[0]
		require.Len(t, focus.Rows, len(r.Insights.FocusActions))
		for i, row := range focus.Rows {
			assert.Equal(t, r.Insights.FocusActions[i], row[1])
		}
	})
}

func TestToExport_EmptyReportHasNoNulls(t *testing.T) {
	r := report.Build(report.Snapshot{}, marchPeriods(t), now, report.DefaultOptions())

	data, err := json.Marshal(report.ToExport(r))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}
