package report

import (
	"math"

	"github.com/opsboard/report-api/internal/domain"
)

// Direction is the sign of a period-over-period change
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// TrendTriple holds one counter evaluated against the three periods
type TrendTriple struct {
	Current  int `json:"current"`
	Previous int `json:"previous"`
	MonthAgo int `json:"monthAgo"`
}

// Change returns the percent change from Previous to Current. When Previous is
// zero there is no meaningful percentage: the result is flat and ok is false.
func (t TrendTriple) Change() (pct float64, dir Direction, ok bool) {
	if t.Previous == 0 {
		return 0, DirectionFlat, false
	}
	pct = math.Round(float64(t.Current-t.Previous)/float64(t.Previous)*1000) / 10
	switch {
	case pct > 0:
		dir = DirectionUp
	case pct < 0:
		dir = DirectionDown
	default:
		dir = DirectionFlat
	}
	return pct, dir, true
}

// Trends are the headline counters of the report
type Trends struct {
	NewLeads   TrendTriple `json:"newLeads"`
	Gained     TrendTriple `json:"gained"`
	Lost       TrendTriple `json:"lost"`
	Delivered  TrendTriple `json:"delivered"`
	Activities TrendTriple `json:"activities"`
}

// CountTriple runs one counting rule against each period of the set
func CountTriple(periods PeriodSet, count func(Period) int) TrendTriple {
	return TrendTriple{
		Current:  count(periods.Current),
		Previous: count(periods.Previous),
		MonthAgo: count(periods.MonthAgo),
	}
}

// CountNewLeads counts opportunities created in p
func CountNewLeads(opps []domain.SalesOpportunity, p Period) int {
	n := 0
	for _, o := range opps {
		if p.Contains(o.CreatedAt) {
			n++
		}
	}
	return n
}

// CountGained counts opportunities converted in p
func CountGained(opps []domain.SalesOpportunity, p Period) int {
	return len(gainedIn(opps, p))
}

// CountLost counts opportunities lost in p
func CountLost(opps []domain.SalesOpportunity, p Period) int {
	return len(lostIn(opps, p))
}

// CountDelivered counts work items sitting in a delivered stage whose last update falls in p
func CountDelivered(items []domain.WorkItem, p Period, delivered StageSet) int {
	n := 0
	for _, item := range items {
		if delivered.Has(item.Stage) && p.Contains(item.LastUpdatedAt) {
			n++
		}
	}
	return n
}

// CountEvents counts activity events in p
func CountEvents(events []ActivityEvent, p Period) int {
	n := 0
	for _, e := range events {
		if p.Contains(e.Timestamp) {
			n++
		}
	}
	return n
}

// ComputeTrends evaluates every headline counter for the three periods
func ComputeTrends(snap Snapshot, events []ActivityEvent, periods PeriodSet, delivered StageSet) Trends {
	return Trends{
		NewLeads:   CountTriple(periods, func(p Period) int { return CountNewLeads(snap.Opportunities, p) }),
		Gained:     CountTriple(periods, func(p Period) int { return CountGained(snap.Opportunities, p) }),
		Lost:       CountTriple(periods, func(p Period) int { return CountLost(snap.Opportunities, p) }),
		Delivered:  CountTriple(periods, func(p Period) int { return CountDelivered(snap.WorkItems, p, delivered) }),
		Activities: CountTriple(periods, func(p Period) int { return CountEvents(events, p) }),
	}
}

func gainedIn(opps []domain.SalesOpportunity, p Period) []domain.SalesOpportunity {
	return Filter(opps, func(o domain.SalesOpportunity) bool {
		return o.Status == domain.OpportunityStatusGained && o.ConvertedAt != nil && p.Contains(*o.ConvertedAt)
	})
}

func lostIn(opps []domain.SalesOpportunity, p Period) []domain.SalesOpportunity {
	return Filter(opps, func(o domain.SalesOpportunity) bool {
		return o.Status == domain.OpportunityStatusLost && o.LostAt != nil && p.Contains(*o.LostAt)
	})
}
