package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a requested period cannot be resolved
var ErrInvalidRange = errors.New("invalid date range")

const dateLayout = "2006-01-02"

// Period is an inclusive range of calendar days. Start and End are midnights
// in the report location.
type Period struct {
	Start time.Time
	End   time.Time
}

// PeriodSet holds the requested period and its two comparison windows
type PeriodSet struct {
	Current  Period `json:"current"`
	Previous Period `json:"previous"`
	MonthAgo Period `json:"monthAgo"`
}

// ParseDate parses a YYYY-MM-DD string as a calendar day in loc
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q", ErrInvalidRange, value)
	}
	return t, nil
}

// ResolvePeriods derives the previous and month-ago windows for [start, end].
// Only the calendar fields of start and end are used.
func ResolvePeriods(start, end time.Time, loc *time.Location) (PeriodSet, error) {
	if loc == nil {
		loc = time.UTC
	}
	start = asDate(start, loc)
	end = asDate(end, loc)
	if start.After(end) {
		return PeriodSet{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			start.Format(dateLayout), end.Format(dateLayout))
	}

	n := daysBetween(start, end)
	return PeriodSet{
		Current: Period{Start: start, End: end},
		Previous: Period{
			Start: start.AddDate(0, 0, -(n + 1)),
			End:   start.AddDate(0, 0, -1),
		},
		MonthAgo: Period{
			Start: ShiftMonths(start, -1),
			End:   ShiftMonths(end, -1),
		},
	}, nil
}

// ShiftMonths moves t by n calendar months, keeping the day of month when the
// target month has it and clamping to the target month's last day otherwise.
func ShiftMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// Contains reports whether instant t falls on one of the period's days
func (p Period) Contains(t time.Time) bool {
	t = t.In(p.Start.Location())
	return !t.Before(p.Start) && t.Before(p.endExclusive())
}

// ContainsDate reports whether a date-only value falls inside the period
func (p Period) ContainsDate(d time.Time) bool {
	d = asDate(d, p.Start.Location())
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days in the period
func (p Period) Days() int {
	return daysBetween(p.Start, p.End) + 1
}

// Dates lists every day of the period in ascending order
func (p Period) Dates() []time.Time {
	dates := make([]time.Time, 0, p.Days())
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func (p Period) endExclusive() time.Time {
	return p.End.AddDate(0, 0, 1)
}

// MarshalJSON renders the period as calendar dates
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Days  int    `json:"days"`
	}{
		Start: p.Start.Format(dateLayout),
		End:   p.End.Format(dateLayout),
		Days:  p.Days(),
	})
}

// Span returns the smallest period covering all given periods
func Span(periods ...Period) Period {
	if len(periods) == 0 {
		return Period{}
	}
	span := periods[0]
	for _, p := range periods[1:] {
		if p.Start.Before(span.Start) {
			span.Start = p.Start
		}
		if p.End.After(span.End) {
			span.End = p.End
		}
	}
	return span
}

// Span covers current, previous and month-ago windows
func (s PeriodSet) Span() Period {
	return Span(s.Current, s.Previous, s.MonthAgo)
}

// Window returns the half-open instant range [from, to) of the period
func (p Period) Window() (from, to time.Time) {
	return p.Start, p.endExclusive()
}

// asDate interprets the calendar fields of t as a day in loc
func asDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayOf returns the calendar day on which instant t falls in loc
func dayOf(t time.Time, loc *time.Location) time.Time {
	return asDate(t.In(loc), loc)
}

// daysBetween counts whole calendar days from a to b, immune to DST shifts
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
