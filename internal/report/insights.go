package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
)

const (
	// UnspecifiedLossReason labels lost opportunities without a reason
	UnspecifiedLossReason = "unspecified"

	maxLossReasons  = 3
	maxRisks        = 10
	maxFocusActions = 5
	complianceAlert = 70
)

// Bottleneck is the most crowded non-terminal stage of a pipeline
type Bottleneck struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// FindBottleneck picks the stage with the highest count. Ties go to the stage
// listed first in order; stages missing from order rank after it alphabetically.
func FindBottleneck(counts map[string]int, order []string) Bottleneck {
	rank := make(map[string]int, len(order))
	for i, s := range order {
		if _, seen := rank[s]; !seen {
			rank[s] = i
		}
	}
	before := func(a, b string) bool {
		ra, okA := rank[a]
		rb, okB := rank[b]
		switch {
		case okA && okB:
			return ra < rb
		case okA != okB:
			return okA
		default:
			return a < b
		}
	}

	var best Bottleneck
	for stage, count := range counts {
		if count <= 0 {
			continue
		}
		if count > best.Count || (count == best.Count && before(stage, best.Stage)) {
			best = Bottleneck{Stage: stage, Count: count}
		}
	}
	return best
}

// OperationalBottleneck ranks non-terminal work item stages
func OperationalBottleneck(items []domain.WorkItem, terminal StageSet, order []string) Bottleneck {
	open := Filter(items, func(w domain.WorkItem) bool { return !terminal.Has(w.Stage) })
	return FindBottleneck(CountBy(open, func(w domain.WorkItem) string { return w.Stage }), order)
}

// SalesBottleneck ranks the stages of open opportunities
func SalesBottleneck(opps []domain.SalesOpportunity, order []string) Bottleneck {
	open := Filter(opps, func(o domain.SalesOpportunity) bool { return o.Status == domain.OpportunityStatusOpen })
	return FindBottleneck(CountBy(open, func(o domain.SalesOpportunity) string { return o.Stage }), order)
}

// LossReason is a loss label with its occurrence count
type LossReason struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LossReasonCounts groups lost opportunities by reason label
func LossReasonCounts(lost []domain.SalesOpportunity) map[string]int {
	counts := make(map[string]int)
	for i := range lost {
		label := lost[i].LostReasonLabel()
		if label == "" {
			label = UnspecifiedLossReason
		}
		counts[label]++
	}
	return counts
}

// TopLossReasons returns the three most frequent loss reasons
func TopLossReasons(lost []domain.SalesOpportunity) []LossReason {
	ranked := Ranked(LossReasonCounts(lost), maxLossReasons)
	out := make([]LossReason, len(ranked))
	for i, kc := range ranked {
		out[i] = LossReason{Label: kc.Key, Count: kc.Count}
	}
	return out
}

// RiskType classifies an entry of the unified risk list
type RiskType string

const (
	RiskStalledClient RiskType = "stalled_client"
	RiskColdHotLead   RiskType = "cold_hot_lead"
)

// Risk is one entity needing attention
type Risk struct {
	Type     RiskType  `json:"type"`
	EntityID uuid.UUID `json:"entityId"`
	Name     string    `json:"name"`
	AgeDays  int       `json:"ageDays"`
}

// BuildRisks merges stalled clients and neglected hot leads, oldest first, top 10
func BuildRisks(stalled []StalledItem, neglected []NeglectedLead) []Risk {
	risks := make([]Risk, 0, len(stalled)+len(neglected))
	for _, s := range stalled {
		risks = append(risks, Risk{Type: RiskStalledClient, EntityID: s.ID, Name: s.Name, AgeDays: s.DaysStalled})
	}
	for _, n := range neglected {
		risks = append(risks, Risk{Type: RiskColdHotLead, EntityID: n.ID, Name: n.CompanyName, AgeDays: n.DaysSinceActivity})
	}
	sort.Slice(risks, func(i, j int) bool {
		a, b := risks[i], risks[j]
		if a.AgeDays != b.AgeDays {
			return a.AgeDays > b.AgeDays
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.EntityID.String() < b.EntityID.String()
	})
	if len(risks) > maxRisks {
		risks = risks[:maxRisks]
	}
	return risks
}

// FocusInputs are the signals the focus rules look at
type FocusInputs struct {
	OverdueActions     int
	StalledClients     int
	NeglectedHotLeads  int
	AtRiskAccounts     int
	PendingCommissions int
	Bottleneck         Bottleneck
	Gained             TrendTriple
	ComplianceRate     int
	ComplianceTasks    int
}

// FocusThresholds tune when threshold-based rules fire
type FocusThresholds struct {
	PendingCommissions int
	Bottleneck         int
}

type focusRule struct {
	applies func(FocusInputs, FocusThresholds) bool
	message func(FocusInputs) string
}

// focusRules are evaluated in declaration order
var focusRules = []focusRule{
	{
		applies: func(in FocusInputs, _ FocusThresholds) bool { return in.OverdueActions > 0 },
		message: func(in FocusInputs) string {
			return fmt.Sprintf("Resolve %d overdue opportunity actions", in.OverdueActions)
		},
	},
	{
		applies: func(in FocusInputs, _ FocusThresholds) bool { return in.StalledClients > 0 },
		message: func(in FocusInputs) string {
			return fmt.Sprintf("Unblock %d stalled clients in delivery", in.StalledClients)
		},
	},
	{
		applies: func(in FocusInputs, _ FocusThresholds) bool { return in.NeglectedHotLeads > 0 },
		message: func(in FocusInputs) string {
			return fmt.Sprintf("Follow up %d hot leads without recent activity", in.NeglectedHotLeads)
		},
	},
	{
		applies: func(in FocusInputs, _ FocusThresholds) bool { return in.AtRiskAccounts > 0 },
		message: func(in FocusInputs) string {
			return fmt.Sprintf("Review %d recurring accounts at risk", in.AtRiskAccounts)
		},
	},
	{
		applies: func(in FocusInputs, th FocusThresholds) bool { return in.PendingCommissions > th.PendingCommissions },
		message: func(in FocusInputs) string {
			return fmt.Sprintf("Review %d pending commissions", in.PendingCommissions)
		},
	},
	{
		applies: func(in FocusInputs, th FocusThresholds) bool {
			return in.Bottleneck.Stage != "" && in.Bottleneck.Count >= th.Bottleneck
		},
		message: func(in FocusInputs) string {
			return fmt.Sprintf("Relieve the %s stage (%d clients)", in.Bottleneck.Stage, in.Bottleneck.Count)
		},
	},
	{
		applies: func(in FocusInputs, _ FocusThresholds) bool {
			_, dir, ok := in.Gained.Change()
			return ok && dir == DirectionDown
		},
		message: func(in FocusInputs) string {
			pct, _, _ := in.Gained.Change()
			return fmt.Sprintf("Gained opportunities down %.0f%% versus previous period", math.Abs(pct))
		},
	},
	{
		applies: func(in FocusInputs, _ FocusThresholds) bool {
			return in.ComplianceTasks > 0 && in.ComplianceRate < complianceAlert
		},
		message: func(in FocusInputs) string {
			return fmt.Sprintf("Raise recurring compliance (currently %d%%)", in.ComplianceRate)
		},
	},
}

// FocusActions emits the message of each applicable rule, in rule order, at most five
func FocusActions(in FocusInputs, th FocusThresholds) []string {
	actions := make([]string, 0, maxFocusActions)
	for _, rule := range focusRules {
		if len(actions) == maxFocusActions {
			break
		}
		if rule.applies(in, th) {
			actions = append(actions, rule.message(in))
		}
	}
	return actions
}
