package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
)

const day = 24 * time.Hour

// StageSet is a set of pipeline stage identifiers
type StageSet map[string]struct{}

// NewStageSet builds a set from stage identifiers
func NewStageSet(stages ...string) StageSet {
	set := make(StageSet, len(stages))
	for _, s := range stages {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether stage belongs to the set
func (s StageSet) Has(stage string) bool {
	_, ok := s[stage]
	return ok
}

// StalledItem is a work item left untouched past the stall threshold
type StalledItem struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Stage         string    `json:"stage"`
	DaysStalled   int       `json:"daysStalled"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// OverdueAction is an open opportunity whose next action date has passed
type OverdueAction struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"companyName"`
	NextAction  string    `json:"nextAction"`
	DueDate     string    `json:"dueDate"`
	DaysOverdue int       `json:"daysOverdue"`
}

// NeglectedLead is a hot open opportunity without recent activity
type NeglectedLead struct {
	ID                uuid.UUID `json:"id"`
	CompanyName       string    `json:"companyName"`
	Stage             string    `json:"stage"`
	DaysSinceActivity int       `json:"daysSinceActivity"`
	LastActivityAt    time.Time `json:"lastActivityAt"`
}

// DetectStalled flags non-terminal work items whose last update is strictly
// older than threshold. Most stalled first.
func DetectStalled(items []domain.WorkItem, now time.Time, terminal StageSet, threshold time.Duration) []StalledItem {
	stalled := make([]StalledItem, 0)
	for _, item := range items {
		if terminal.Has(item.Stage) {
			continue
		}
		age := now.Sub(item.LastUpdatedAt)
		if age <= threshold {
			continue
		}
		stalled = append(stalled, StalledItem{
			ID:            item.ID,
			Name:          item.Name,
			Stage:         item.Stage,
			DaysStalled:   int(age / day),
			LastUpdatedAt: item.LastUpdatedAt,
		})
	}
	sort.Slice(stalled, func(i, j int) bool {
		a, b := stalled[i], stalled[j]
		if !a.LastUpdatedAt.Equal(b.LastUpdatedAt) {
			return a.LastUpdatedAt.Before(b.LastUpdatedAt)
		}
		return byNameThenID(a.Name, b.Name, a.ID, b.ID)
	})
	return stalled
}

// DetectOverdue flags open opportunities with a next action dated before today in loc
func DetectOverdue(opps []domain.SalesOpportunity, now time.Time, loc *time.Location) []OverdueAction {
	today := dayOf(now, loc)
	overdue := make([]OverdueAction, 0)
	for _, o := range opps {
		if o.Status != domain.OpportunityStatusOpen || o.NextActionDate == nil {
			continue
		}
		due := asDate(*o.NextActionDate, loc)
		if !due.Before(today) {
			continue
		}
		overdue = append(overdue, OverdueAction{
			ID:          o.ID,
			CompanyName: o.CompanyName,
			NextAction:  o.NextAction,
			DueDate:     due.Format(dateLayout),
			DaysOverdue: daysBetween(due, today),
		})
	}
	sort.Slice(overdue, func(i, j int) bool {
		a, b := overdue[i], overdue[j]
		if a.DaysOverdue != b.DaysOverdue {
			return a.DaysOverdue > b.DaysOverdue
		}
		return byNameThenID(a.CompanyName, b.CompanyName, a.ID, b.ID)
	})
	return overdue
}

// DetectHotWithoutActivity flags hot open opportunities idle strictly longer
// than threshold. Opportunities never touched count from their creation.
func DetectHotWithoutActivity(opps []domain.SalesOpportunity, now time.Time, threshold time.Duration) []NeglectedLead {
	neglected := make([]NeglectedLead, 0)
	for _, o := range opps {
		if o.Temperature != domain.TemperatureHot || o.Status != domain.OpportunityStatusOpen {
			continue
		}
		last := o.CreatedAt
		if o.LastActivityAt != nil {
			last = *o.LastActivityAt
		}
		idle := now.Sub(last)
		if idle <= threshold {
			continue
		}
		neglected = append(neglected, NeglectedLead{
			ID:                o.ID,
			CompanyName:       o.CompanyName,
			Stage:             o.Stage,
			DaysSinceActivity: int(idle / day),
			LastActivityAt:    last,
		})
	}
	sort.Slice(neglected, func(i, j int) bool {
		a, b := neglected[i], neglected[j]
		if !a.LastActivityAt.Equal(b.LastActivityAt) {
			return a.LastActivityAt.Before(b.LastActivityAt)
		}
		return byNameThenID(a.CompanyName, b.CompanyName, a.ID, b.ID)
	})
	return neglected
}

func byNameThenID(nameA, nameB string, idA, idB uuid.UUID) bool {
	if nameA != nameB {
		return nameA < nameB
	}
	return idA.String() < idB.String()
}
