package report

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/domain"
)

// NoCompletionSentinel is reported as days since last completion when an
// account never completed a task
const NoCompletionSentinel = 999

// UnknownRoutineTitle groups tasks referencing a routine that is not loaded
const UnknownRoutineTitle = "unknown routine"

const (
	atRiskRate           = 50
	atRiskInactivityDays = 7
)

// Rate returns round(100*completed/total) clamped to [0, 100], or 0 when total is 0
func Rate(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	r := int(math.Round(100 * float64(completed) / float64(total)))
	if r > 100 {
		return 100
	}
	return r
}

// ChecklistProgress is the completion of one checklist section across work items
type ChecklistProgress struct {
	Title     string `json:"title"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Rate      int    `json:"rate"`
}

type tally struct {
	completed int
	total     int
}

func (t tally) add(o tally) tally {
	return tally{completed: t.completed + o.completed, total: t.total + o.total}
}

// foldItems counts every item node down to MaxChecklistDepth; deeper nodes are ignored
func foldItems(items []domain.ChecklistItem, depth int) tally {
	var t tally
	if depth > domain.MaxChecklistDepth {
		return t
	}
	for _, item := range items {
		t.total++
		if item.Completed {
			t.completed++
		}
		t = t.add(foldItems(item.Items, depth+1))
	}
	return t
}

// AggregateChecklists sums completion per section title across all work items
func AggregateChecklists(items []domain.WorkItem) []ChecklistProgress {
	bySection := make(map[string]tally)
	for i := range items {
		for _, section := range items[i].Sections() {
			title := normalizeKey(section.Title)
			bySection[title] = bySection[title].add(foldItems(section.Items, 1))
		}
	}

	progress := make([]ChecklistProgress, 0, len(bySection))
	for title, t := range bySection {
		progress = append(progress, ChecklistProgress{
			Title:     title,
			Completed: t.completed,
			Total:     t.total,
			Rate:      Rate(t.completed, t.total),
		})
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].Title < progress[j].Title })
	return progress
}

// RoutineCompliance is task completion grouped by routine
type RoutineCompliance struct {
	RoutineID string `json:"routineId"`
	Title     string `json:"title"`
	Active    bool   `json:"active"`
	Done      int    `json:"done"`
	Total     int    `json:"total"`
	Rate      int    `json:"rate"`
}

// AccountCompliance is task completion of one active recurring account
type AccountCompliance struct {
	AccountID              uuid.UUID `json:"accountId"`
	CompanyName            string    `json:"companyName"`
	Done                   int       `json:"done"`
	Total                  int       `json:"total"`
	Rate                   int       `json:"rate"`
	DaysSinceLastCompleted int       `json:"daysSinceLastCompleted"`
	AtRisk                 bool      `json:"atRisk"`
}

// ComplianceOverall totals task outcomes. Skipped tasks count toward Total.
type ComplianceOverall struct {
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
	Todo    int `json:"todo"`
	Total   int `json:"total"`
	Rate    int `json:"rate"`
}

// Compliance is the recurring-service completion summary
type Compliance struct {
	Overall   ComplianceOverall   `json:"overall"`
	ByRoutine []RoutineCompliance `json:"byRoutine"`
	ByAccount []AccountCompliance `json:"byAccount"`
}

// AtRiskCount returns how many accounts are flagged at risk
func (c Compliance) AtRiskCount() int {
	n := 0
	for _, a := range c.ByAccount {
		if a.AtRisk {
			n++
		}
	}
	return n
}

// AggregateCompliance computes completion ratios by routine, by active account and overall
func AggregateCompliance(
	accounts []domain.RecurringAccount,
	tasks []domain.RecurringTask,
	routines []domain.RecurringRoutine,
	now time.Time,
) Compliance {
	return Compliance{
		Overall:   overallCompliance(tasks),
		ByRoutine: routineCompliance(tasks, routines),
		ByAccount: accountCompliance(accounts, tasks, now),
	}
}

func overallCompliance(tasks []domain.RecurringTask) ComplianceOverall {
	var o ComplianceOverall
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskStatusDone:
			o.Done++
		case domain.TaskStatusSkipped:
			o.Skipped++
		default:
			o.Todo++
		}
	}
	o.Total = len(tasks)
	o.Rate = Rate(o.Done, o.Total)
	return o
}

func routineCompliance(tasks []domain.RecurringTask, routines []domain.RecurringRoutine) []RoutineCompliance {
	known := make(map[uuid.UUID]domain.RecurringRoutine, len(routines))
	for _, r := range routines {
		known[r.ID] = r
	}

	counts := make(map[uuid.UUID]tally, len(routines))
	var unknown tally
	for _, t := range tasks {
		var add tally
		add.total = 1
		if t.Status == domain.TaskStatusDone {
			add.completed = 1
		}
		if _, ok := known[t.RoutineID]; ok {
			counts[t.RoutineID] = counts[t.RoutineID].add(add)
		} else {
			unknown = unknown.add(add)
		}
	}

	out := make([]RoutineCompliance, 0, len(routines)+1)
	for _, r := range routines {
		c := counts[r.ID]
		out = append(out, RoutineCompliance{
			RoutineID: r.ID.String(),
			Title:     r.Title,
			Active:    r.IsActive,
			Done:      c.completed,
			Total:     c.total,
			Rate:      Rate(c.completed, c.total),
		})
	}
	if unknown.total > 0 {
		out = append(out, RoutineCompliance{
			Title: UnknownRoutineTitle,
			Done:  unknown.completed,
			Total: unknown.total,
			Rate:  Rate(unknown.completed, unknown.total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].RoutineID < out[j].RoutineID
	})
	return out
}

func accountCompliance(accounts []domain.RecurringAccount, tasks []domain.RecurringTask, now time.Time) []AccountCompliance {
	type accountTally struct {
		tally
		lastCompleted *time.Time
	}
	byAccount := make(map[uuid.UUID]accountTally)
	for _, t := range tasks {
		at := byAccount[t.AccountID]
		at.total++
		if t.Status == domain.TaskStatusDone {
			at.completed++
			completedAt := t.DueDate
			if t.CompletedAt != nil {
				completedAt = *t.CompletedAt
			}
			if at.lastCompleted == nil || completedAt.After(*at.lastCompleted) {
				at.lastCompleted = &completedAt
			}
		}
		byAccount[t.AccountID] = at
	}

	out := make([]AccountCompliance, 0, len(accounts))
	for _, a := range accounts {
		if a.Status != domain.AccountStatusActive {
			continue
		}
		at := byAccount[a.ID]
		days := NoCompletionSentinel
		if at.lastCompleted != nil {
			days = int(now.Sub(*at.lastCompleted) / day)
			if days < 0 {
				days = 0
			}
		}
		rate := Rate(at.completed, at.total)
		out = append(out, AccountCompliance{
			AccountID:              a.ID,
			CompanyName:            a.CompanyName,
			Done:                   at.completed,
			Total:                  at.total,
			Rate:                   rate,
			DaysSinceLastCompleted: days,
			AtRisk:                 rate < atRiskRate || days > atRiskInactivityDays,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AtRisk != b.AtRisk {
			return a.AtRisk
		}
		if a.Rate != b.Rate {
			return a.Rate < b.Rate
		}
		return byNameThenID(a.CompanyName, b.CompanyName, a.AccountID, b.AccountID)
	})
	return out
}
