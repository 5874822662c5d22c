package report_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func richSnapshot() report.Snapshot {
	weekly := routine("Weekly report")
	active := account("Acme Retainer", domain.AccountStatusActive, "")
	paying := account("Initech", domain.AccountStatusActive, "1200")

	hot := opportunity("Hooli", "qualified", domain.OpportunityStatusOpen)
	hot.Temperature = domain.TemperatureHot
	hot.LastActivityAt = ptr(now.Add(-5 * 24 * time.Hour))
	overdue := opportunity("Umbrella", "proposal", domain.OpportunityStatusOpen)
	overdue.NextAction = "Send revised proposal"
	overdue.NextActionDate = ptr(date(2024, 3, 10))
	fresh := opportunity("Stark", "new", domain.OpportunityStatusOpen)
	fresh.CreatedAt = date(2024, 3, 12)

	role := &domain.RecipientRole{Name: "closer"}
	role.ID = uuid.New()
	closerCommission := commission("Maria", domain.CommissionStatusPending, "150.50", date(2024, 3, 3))
	closerCommission.RecipientRole = role

	return report.Snapshot{
		OrganizationID: uuid.MustParse("6f1d1c7e-9a51-4c43-9a43-2b5f1f0f8d11"),
		WorkItems: []domain.WorkItem{
			withChecklist(workItem("Acme", "onboarding", now.Add(-9*24*time.Hour)),
				domain.ChecklistSection{Title: "Kickoff", Items: []domain.ChecklistItem{{Label: "call", Completed: true}}}),
			workItem("Globex", "setup", now.Add(-24*time.Hour)),
			workItem("Initech", "delivered", date(2024, 3, 8)),
		},
		Opportunities: []domain.SalesOpportunity{
			hot, overdue, fresh,
			gainedOpportunity("Wayne", date(2024, 3, 4)),
			lostOpportunity("Oscorp", date(2024, 3, 6), ""),
			lostOpportunity("Cyberdyne", date(2024, 3, 7), "price"),
		},
		Commissions: []domain.CommissionRecord{
			closerCommission,
			commission("Maria", domain.CommissionStatusPaid, "99.50", date(2024, 3, 9)),
			commission("João", domain.CommissionStatusPaid, "300", date(2024, 3, 11)),
			commission("Old", domain.CommissionStatusPaid, "999", date(2024, 2, 11)),
		},
		RecurringAccounts: []domain.RecurringAccount{active, paying},
		RecurringTasks: []domain.RecurringTask{
			task(paying.ID, weekly.ID, date(2024, 3, 4), domain.TaskStatusDone, ptr(date(2024, 3, 13))),
			task(active.ID, weekly.ID, date(2024, 3, 4), domain.TaskStatusTodo, nil),
		},
		RecurringRoutines: []domain.RecurringRoutine{weekly},
		AuditEntries: []domain.AuditEntry{
			auditEntry(date(2024, 3, 2).Add(10*time.Hour), "ana", "update"),
			auditEntry(date(2024, 3, 14).Add(15*time.Hour), "bob", "create"),
			auditEntry(date(2024, 2, 14), "bob", "create"),
		},
		LeadActivities: []domain.LeadActivity{
			leadActivity(date(2024, 3, 5).Add(9*time.Hour), "ana", "call"),
		},
	}
}

func TestBuild_Sections(t *testing.T) {
	r := report.Build(richSnapshot(), marchPeriods(t), now, report.DefaultOptions())

	t.Run("envelope", func(t *testing.T) {
		assert.Equal(t, "6f1d1c7e-9a51-4c43-9a43-2b5f1f0f8d11", r.OrganizationID.String())
		assert.Equal(t, now, r.GeneratedAt)
		assert.Equal(t, date(2024, 3, 1), r.Periods.Current.Start)
	})

	t.Run("clients", func(t *testing.T) {
		assert.Equal(t, 3, r.Clients.Total)
		assert.Equal(t, map[string]int{"onboarding": 1, "setup": 1, "delivered": 1}, r.Clients.ByColumn)
		require.Len(t, r.Clients.Stalled, 1)
		assert.Equal(t, "Acme", r.Clients.Stalled[0].Name)
		assert.Equal(t, 1, r.Clients.Delivered)
		require.Len(t, r.Clients.Checklist, 1)
		assert.Equal(t, 100, r.Clients.Checklist[0].Rate)
	})

	t.Run("leads", func(t *testing.T) {
		assert.Equal(t, 6, r.Leads.Total)
		assert.Equal(t, 1, r.Leads.NewInPeriod)
		assert.Equal(t, 1, r.Leads.Gained)
		assert.Equal(t, 2, r.Leads.Lost)
		assert.Equal(t, 33, r.Leads.ConversionRate)
		assert.Equal(t, map[string]int{"unspecified": 1, "price": 1}, r.Leads.LostReasons)
		require.Len(t, r.Leads.OverdueActions, 1)
		assert.Equal(t, "Umbrella", r.Leads.OverdueActions[0].CompanyName)
		assert.Equal(t, 5, r.Leads.OverdueActions[0].DaysOverdue)
		require.Len(t, r.Leads.HotWithoutActivity, 1)
		assert.Equal(t, "Hooli", r.Leads.HotWithoutActivity[0].CompanyName)
	})

	t.Run("commissions only cover the current period", func(t *testing.T) {
		assert.Equal(t, 3, r.Commissions.Count)
		assert.Equal(t, 550.0, r.Commissions.TotalAmount)
		assert.Equal(t, 1, r.Commissions.PendingCount)
		assert.Equal(t, 150.5, r.Commissions.PendingAmount)
		assert.Equal(t, 399.5, r.Commissions.PaidAmount)
		assert.Equal(t, report.AmountTotal{Count: 2, Amount: 399.5}, r.Commissions.ByStatus["paid"])
		require.Len(t, r.Commissions.ByRecipient, 2)
		assert.Equal(t, report.RecipientTotal{Name: "João", Role: "", Count: 1, Amount: 300}, r.Commissions.ByRecipient[0])
		assert.Equal(t, report.RecipientTotal{Name: "Maria", Role: "closer", Count: 2, Amount: 250}, r.Commissions.ByRecipient[1])
	})

	t.Run("recurring", func(t *testing.T) {
		assert.Equal(t, 2, r.Recurring.ActiveAccounts)
		assert.Equal(t, 1700.0, r.Recurring.MRR)
		assert.Equal(t, 20400.0, r.Recurring.AnnualValue)
		assert.Equal(t, 850.0, r.Recurring.AvgContractValue)
		assert.Equal(t, 1, r.Recurring.FallbackApplied)
		assert.Equal(t, 50, r.Recurring.Compliance.Overall.Rate)
		assert.Equal(t, 1, r.Recurring.AtRiskAccounts)
	})

	t.Run("activities and timeline", func(t *testing.T) {
		assert.Equal(t, 3, r.Activities.Total)
		assert.Equal(t, map[string]int{"audit": 2, "lead_activity": 1}, r.Activities.ByKind)
		assert.Equal(t, []report.ActorCount{{Name: "ana", Count: 2}, {Name: "bob", Count: 1}}, r.Activities.TopActors)
		require.Len(t, r.Activities.Recent, 3)
		assert.Equal(t, "bob", r.Activities.Recent[0].Actor)
		assert.Len(t, r.Timeline, 31)
		assert.Len(t, r.Heatmap, 7)
	})

	t.Run("trends and insights", func(t *testing.T) {
		assert.Equal(t, report.TrendTriple{Current: 3, Previous: 1, MonthAgo: 1}, r.Trends.Activities)
		assert.Equal(t, report.Bottleneck{Stage: "onboarding", Count: 1}, r.Insights.OperationalBottleneck)
		assert.Equal(t, report.Bottleneck{Stage: "new", Count: 1}, r.Insights.SalesBottleneck)
		require.Len(t, r.Insights.Risks, 2)
		assert.Equal(t, report.RiskStalledClient, r.Insights.Risks[0].Type)
		assert.Equal(t, []string{
			"Resolve 1 overdue opportunity actions",
			"Unblock 1 stalled clients in delivery",
			"Follow up 1 hot leads without recent activity",
			"Review 1 recurring accounts at risk",
			"Raise recurring compliance (currently 50%)",
		}, r.Insights.FocusActions)
	})
}

func TestBuild_EmptySnapshotIsWellFormed(t *testing.T) {
	r := report.Build(report.Snapshot{}, marchPeriods(t), now, report.DefaultOptions())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")

	assert.Equal(t, 0, r.Clients.Total)
	assert.Equal(t, 0.0, r.Recurring.MRR)
	assert.Equal(t, report.Bottleneck{}, r.Insights.OperationalBottleneck)
	assert.Empty(t, r.Insights.FocusActions)
	assert.Len(t, r.Timeline, 31)
	assert.Len(t, r.Heatmap, 7)
}

func TestBuild_Deterministic(t *testing.T) {
	snap := richSnapshot()
	periods := marchPeriods(t)

	first, err := json.Marshal(report.Build(snap, periods, now, report.DefaultOptions()))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(report.Build(snap, periods, now, report.DefaultOptions()))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestBuild_DoesNotMutateOrShareSnapshot(t *testing.T) {
	snap := richSnapshot()
	before, err := json.Marshal(snap)
	require.NoError(t, err)

	r := report.Build(snap, marchPeriods(t), now, report.DefaultOptions())
	for _, e := range r.Activities.Recent {
		e.Metadata["tampered"] = true
	}

	after, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestBuild_Properties(t *testing.T) {
	snap := richSnapshot()
	for i := 0; i < 25; i++ {
		stage := []string{"onboarding", "setup", "review", "delivered"}[i%4]
		snap.WorkItems = append(snap.WorkItems, workItem(fmt.Sprintf("Client %02d", i), stage, now.Add(-time.Duration(i)*24*time.Hour)))
	}
	r := report.Build(snap, marchPeriods(t), now, report.DefaultOptions())

	sum := func(m map[string]int) int {
		total := 0
		for _, v := range m {
			total += v
		}
		return total
	}

	t.Run("breakdowns sum to their collections", func(t *testing.T) {
		assert.Equal(t, r.Clients.Total, sum(r.Clients.ByColumn))
		assert.Equal(t, r.Leads.Total, sum(r.Leads.ByStage))
		assert.Equal(t, r.Leads.Total, sum(r.Leads.ByStatus))
		assert.Equal(t, r.Leads.Total, sum(r.Leads.ByTemperature))
		assert.Equal(t, r.Activities.Total, sum(r.Activities.ByType))
		assert.Equal(t, r.Activities.Total, sum(r.Activities.ByKind))

		statusCount := 0
		for _, s := range r.Commissions.ByStatus {
			statusCount += s.Count
		}
		assert.Equal(t, r.Commissions.Count, statusCount)
	})

	t.Run("timeline and heatmap agree with the activity total", func(t *testing.T) {
		timeline, heatmap := 0, 0
		for _, d := range r.Timeline {
			timeline += d.Count
		}
		for _, d := range r.Heatmap {
			heatmap += d.Count
		}
		assert.Equal(t, r.Activities.Total, timeline)
		assert.Equal(t, r.Activities.Total, heatmap)
	})

	t.Run("rates stay within 0 and 100", func(t *testing.T) {
		rates := []int{r.Leads.ConversionRate, r.Recurring.Compliance.Overall.Rate}
		for _, c := range r.Clients.Checklist {
			rates = append(rates, c.Rate)
		}
		for _, c := range r.Recurring.Compliance.ByRoutine {
			rates = append(rates, c.Rate)
		}
		for _, c := range r.Recurring.Compliance.ByAccount {
			rates = append(rates, c.Rate)
		}
		for _, rate := range rates {
			assert.GreaterOrEqual(t, rate, 0)
			assert.LessOrEqual(t, rate, 100)
		}
	})

	t.Run("risk list is capped", func(t *testing.T) {
		assert.LessOrEqual(t, len(r.Insights.Risks), 10)
		assert.LessOrEqual(t, len(r.Insights.FocusActions), 5)
	})
}
