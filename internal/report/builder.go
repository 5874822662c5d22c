package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	maxTopActors    = 10
	maxRecentEvents = 20
)

// Snapshot is the bounded set of records loaded for one report
type Snapshot struct {
	OrganizationID    uuid.UUID
	WorkItems         []domain.WorkItem
	Opportunities     []domain.SalesOpportunity
	Commissions       []domain.CommissionRecord
	RecurringAccounts []domain.RecurringAccount
	RecurringTasks    []domain.RecurringTask
	RecurringRoutines []domain.RecurringRoutine
	AuditEntries      []domain.AuditEntry
	LeadActivities    []domain.LeadActivity
}

// Options tune the heuristics of the report
type Options struct {
	Location                 *time.Location
	FallbackMonthlyValue     decimal.Decimal
	TerminalStages           []string
	DeliveredStages          []string
	WorkItemStageOrder       []string
	OpportunityStageOrder    []string
	StallThreshold           time.Duration
	HotInactivityThreshold   time.Duration
	PendingCommissionAlert   int
	BottleneckAlertThreshold int
}

// DefaultOptions returns the stock tuning
func DefaultOptions() Options {
	return Options{
		Location:                 time.UTC,
		FallbackMonthlyValue:     decimal.NewFromInt(500),
		TerminalStages:           []string{"delivered", "finalized", "suspended"},
		DeliveredStages:          []string{"delivered"},
		WorkItemStageOrder:       []string{"onboarding", "setup", "implementation", "optimization", "review", "delivered", "finalized", "suspended"},
		OpportunityStageOrder:    []string{"new", "contacted", "qualified", "proposal", "negotiation"},
		StallThreshold:           7 * day,
		HotInactivityThreshold:   3 * day,
		PendingCommissionAlert:   10,
		BottleneckAlertThreshold: 5,
	}
}

// Build assembles the report from an in-memory snapshot. It performs no I/O
// and never mutates the snapshot.
func Build(snap Snapshot, periods PeriodSet, now time.Time, opts Options) *Report {
	loc := opts.Location
	if loc == nil {
		loc = periods.Current.Start.Location()
	}
	terminal := NewStageSet(opts.TerminalStages...)
	delivered := NewStageSet(opts.DeliveredStages...)

	events := NormalizeEvents(snap.AuditEntries, snap.LeadActivities)
	currentEvents := EventsIn(events, periods.Current)
	trends := ComputeTrends(snap, events, periods, delivered)

	stalled := DetectStalled(snap.WorkItems, now, terminal, opts.StallThreshold)
	overdue := DetectOverdue(snap.Opportunities, now, loc)
	neglected := DetectHotWithoutActivity(snap.Opportunities, now, opts.HotInactivityThreshold)

	tasks := Filter(snap.RecurringTasks, func(t domain.RecurringTask) bool {
		return periods.Current.ContainsDate(t.DueDate)
	})
	compliance := AggregateCompliance(snap.RecurringAccounts, tasks, snap.RecurringRoutines, now)

	commissions := buildCommissions(Filter(snap.Commissions, func(c domain.CommissionRecord) bool {
		return periods.Current.Contains(c.CreatedAt)
	}))

	lost := lostIn(snap.Opportunities, periods.Current)
	opBottleneck := OperationalBottleneck(snap.WorkItems, terminal, opts.WorkItemStageOrder)

	focus := FocusActions(FocusInputs{
		OverdueActions:     len(overdue),
		StalledClients:     len(stalled),
		NeglectedHotLeads:  len(neglected),
		AtRiskAccounts:     compliance.AtRiskCount(),
		PendingCommissions: commissions.PendingCount,
		Bottleneck:         opBottleneck,
		Gained:             trends.Gained,
		ComplianceRate:     compliance.Overall.Rate,
		ComplianceTasks:    compliance.Overall.Total,
	}, FocusThresholds{
		PendingCommissions: opts.PendingCommissionAlert,
		Bottleneck:         opts.BottleneckAlertThreshold,
	})

	return &Report{
		OrganizationID: snap.OrganizationID,
		Periods:        periods,
		GeneratedAt:    now,
		Clients: ClientsSection{
			Total:     len(snap.WorkItems),
			ByColumn:  CountBy(snap.WorkItems, func(w domain.WorkItem) string { return w.Stage }),
			Stalled:   stalled,
			Checklist: AggregateChecklists(snap.WorkItems),
			Delivered: trends.Delivered.Current,
		},
		Leads: LeadsSection{
			Total:   len(snap.Opportunities),
			ByStage: CountBy(snap.Opportunities, func(o domain.SalesOpportunity) string { return o.Stage }),
			ByStatus: CountBy(snap.Opportunities, func(o domain.SalesOpportunity) string {
				return string(o.Status)
			}),
			ByTemperature: CountBy(snap.Opportunities, func(o domain.SalesOpportunity) string {
				return string(o.Temperature)
			}),
			NewInPeriod:        trends.NewLeads.Current,
			Gained:             trends.Gained.Current,
			Lost:               trends.Lost.Current,
			ConversionRate:     Rate(trends.Gained.Current, trends.Gained.Current+trends.Lost.Current),
			LostReasons:        LossReasonCounts(lost),
			OverdueActions:     overdue,
			HotWithoutActivity: neglected,
		},
		Commissions: commissions,
		Recurring: RecurringSection{
			Financial:      ProjectFinancials(snap.RecurringAccounts, opts.FallbackMonthlyValue),
			Compliance:     compliance,
			AtRiskAccounts: compliance.AtRiskCount(),
		},
		Timeline:   BuildTimeline(currentEvents, periods.Current),
		Activities: buildActivities(currentEvents),
		Trends:     trends,
		Insights: InsightsSection{
			OperationalBottleneck: opBottleneck,
			SalesBottleneck:       SalesBottleneck(snap.Opportunities, opts.OpportunityStageOrder),
			TopLossReasons:        TopLossReasons(lost),
			Risks:                 BuildRisks(stalled, neglected),
			FocusActions:          focus,
		},
		Heatmap: BuildHeatmap(currentEvents, periods.Current),
	}
}

func buildCommissions(records []domain.CommissionRecord) CommissionsSection {
	status := func(c domain.CommissionRecord) string { return string(c.Status) }
	recipient := func(c domain.CommissionRecord) string { return c.RecipientName }
	amount := func(c domain.CommissionRecord) decimal.Decimal { return c.Amount }

	counts := CountBy(records, status)
	sums := SumBy(records, status, amount)
	byStatus := make(map[string]AmountTotal, len(counts))
	for k, c := range counts {
		byStatus[k] = AmountTotal{Count: c, Amount: money(sums[k])}
	}

	total := decimal.Zero
	for _, c := range records {
		total = total.Add(c.Amount)
	}

	return CommissionsSection{
		Count:         len(records),
		TotalAmount:   money(total),
		ByStatus:      byStatus,
		ByRecipient:   recipientTotals(records, CountBy(records, recipient), SumBy(records, recipient, amount)),
		PendingCount:  counts[string(domain.CommissionStatusPending)],
		PendingAmount: money(sums[string(domain.CommissionStatusPending)]),
		PaidAmount:    money(sums[string(domain.CommissionStatusPaid)]),
	}
}

func recipientTotals(records []domain.CommissionRecord, counts map[string]int, sums map[string]decimal.Decimal) []RecipientTotal {
	roles := make(map[string]string, len(counts))
	for _, c := range records {
		if c.RecipientRole == nil || c.RecipientRole.Name == "" {
			continue
		}
		name := normalizeKey(c.RecipientName)
		if current, ok := roles[name]; !ok || c.RecipientRole.Name < current {
			roles[name] = c.RecipientRole.Name
		}
	}

	out := make([]RecipientTotal, 0, len(counts))
	for name, n := range counts {
		out = append(out, RecipientTotal{Name: name, Role: roles[name], Count: n, Amount: money(sums[name])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func buildActivities(events []ActivityEvent) ActivitiesSection {
	actors := Ranked(CountBy(events, func(e ActivityEvent) string { return e.Actor }), maxTopActors)
	top := make([]ActorCount, len(actors))
	for i, a := range actors {
		top[i] = ActorCount{Name: a.Key, Count: a.Count}
	}

	recent := make([]ActivityEvent, 0, maxRecentEvents)
	for i := len(events) - 1; i >= 0 && len(recent) < maxRecentEvents; i-- {
		recent = append(recent, copyEvent(events[i]))
	}

	return ActivitiesSection{
		Total:     len(events),
		ByType:    CountBy(events, func(e ActivityEvent) string { return e.Type }),
		ByKind:    CountBy(events, func(e ActivityEvent) string { return string(e.Kind) }),
		TopActors: top,
		Recent:    recent,
	}
}
