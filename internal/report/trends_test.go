package report_test

import (
	"testing"

	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"github.com/stretchr/testify/assert"
)

func TestTrendTriple_Change(t *testing.T) {
	tests := []struct {
		name    string
		triple  report.TrendTriple
		wantPct float64
		wantDir report.Direction
		wantOK  bool
	}{
		{"previous zero is flat without percentage", report.TrendTriple{Current: 5, Previous: 0, MonthAgo: 2}, 0, report.DirectionFlat, false},
		{"both zero", report.TrendTriple{}, 0, report.DirectionFlat, false},
		{"growth", report.TrendTriple{Current: 15, Previous: 10}, 50, report.DirectionUp, true},
		{"decline", report.TrendTriple{Current: 2, Previous: 8}, -75, report.DirectionDown, true},
		{"unchanged", report.TrendTriple{Current: 4, Previous: 4}, 0, report.DirectionFlat, true},
		{"one decimal", report.TrendTriple{Current: 1, Previous: 3}, -66.7, report.DirectionDown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, dir, ok := tt.triple.Change()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDir, dir)
			assert.InDelta(t, tt.wantPct, pct, 0.001)
		})
	}
}

func TestComputeTrends(t *testing.T) {
	periods := marchPeriods(t)

	newInMarch := opportunity("New", "new", domain.OpportunityStatusOpen)
	newInMarch.CreatedAt = date(2024, 3, 3)
	newInFebruary := opportunity("Older", "new", domain.OpportunityStatusOpen)
	newInFebruary.CreatedAt = date(2024, 2, 10)

	snap := report.Snapshot{
		WorkItems: []domain.WorkItem{
			workItem("Shipped", "delivered", date(2024, 3, 10)),
			workItem("Shipped before", "delivered", date(2024, 2, 10)),
			workItem("Finalized", "finalized", date(2024, 3, 11)),
			workItem("Working", "setup", date(2024, 3, 12)),
		},
		Opportunities: []domain.SalesOpportunity{
			newInMarch,
			newInFebruary,
			gainedOpportunity("G1", date(2024, 3, 5)),
			gainedOpportunity("G2", date(2024, 3, 6)),
			gainedOpportunity("G3", date(2024, 2, 20)),
			lostOpportunity("L1", date(2024, 3, 7), "price"),
		},
	}
	events := report.NormalizeEvents(
		[]domain.AuditEntry{auditEntry(date(2024, 3, 2), "ana", "update")},
		[]domain.LeadActivity{leadActivity(date(2024, 2, 3), "bob", "call")},
	)

	trends := report.ComputeTrends(snap, events, periods, report.NewStageSet("delivered"))

	// fixtures are created on 2024-01-10 unless overridden, outside all windows
	assert.Equal(t, report.TrendTriple{Current: 1, Previous: 1, MonthAgo: 1}, trends.NewLeads)
	assert.Equal(t, report.TrendTriple{Current: 2, Previous: 1, MonthAgo: 1}, trends.Gained)
	assert.Equal(t, report.TrendTriple{Current: 1}, trends.Lost)
	assert.Equal(t, report.TrendTriple{Current: 1, Previous: 1, MonthAgo: 1}, trends.Delivered)
	assert.Equal(t, report.TrendTriple{Current: 1, Previous: 1, MonthAgo: 1}, trends.Activities)
}

func TestComputeTrends_PreviousZeroGained(t *testing.T) {
	periods := marchPeriods(t)
	opps := make([]domain.SalesOpportunity, 0, 5)
	for i := 1; i <= 5; i++ {
		opps = append(opps, gainedOpportunity("Won", date(2024, 3, i)))
	}

	trends := report.ComputeTrends(report.Snapshot{Opportunities: opps}, nil, periods, report.NewStageSet("delivered"))

	assert.Equal(t, 5, trends.Gained.Current)
	assert.Equal(t, 0, trends.Gained.Previous)
	_, dir, ok := trends.Gained.Change()
	assert.False(t, ok)
	assert.Equal(t, report.DirectionFlat, dir)
}
