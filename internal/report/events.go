package report

import (
	"sort"
	"time"

	"github.com/opsboard/report-api/internal/domain"
)

// EventKind tags the source of an ActivityEvent
type EventKind string

const (
	EventKindAudit        EventKind = "audit"
	EventKindLeadActivity EventKind = "lead_activity"
)

// ActivityEvent is the normalized shape of every activity-log-like record
type ActivityEvent struct {
	Kind        EventKind      `json:"kind"`
	Timestamp   time.Time      `json:"timestamp"`
	Type        string         `json:"type"`
	Actor       string         `json:"actor"`
	SubjectType string         `json:"subjectType"`
	SubjectName string         `json:"subjectName"`
	Metadata    map[string]any `json:"metadata"`
}

// FromAuditEntry adapts an audit trail row
func FromAuditEntry(e domain.AuditEntry) ActivityEvent {
	return ActivityEvent{
		Kind:        EventKindAudit,
		Timestamp:   e.PerformedAt,
		Type:        e.Action,
		Actor:       e.UserName,
		SubjectType: e.EntityType,
		SubjectName: e.EntityName,
		Metadata:    copyMap(e.Metadata),
	}
}

// FromLeadActivity adapts a lead interaction
func FromLeadActivity(a domain.LeadActivity) ActivityEvent {
	meta := map[string]any{"opportunityId": a.OpportunityID.String()}
	if a.Description != "" {
		meta["description"] = a.Description
	}
	return ActivityEvent{
		Kind:        EventKindLeadActivity,
		Timestamp:   a.CreatedAt,
		Type:        a.ActivityType,
		Actor:       a.CreatedByName,
		SubjectType: "opportunity",
		SubjectName: a.CompanyName,
		Metadata:    meta,
	}
}

// NormalizeEvents merges both sources into one chronologically ordered stream
func NormalizeEvents(audits []domain.AuditEntry, activities []domain.LeadActivity) []ActivityEvent {
	events := make([]ActivityEvent, 0, len(audits)+len(activities))
	for _, e := range audits {
		events = append(events, FromAuditEntry(e))
	}
	for _, a := range activities {
		events = append(events, FromLeadActivity(a))
	}
	sort.SliceStable(events, func(i, j int) bool {
		return eventLess(events[i], events[j])
	})
	return events
}

// EventsIn returns the events falling inside p, order preserved
func EventsIn(events []ActivityEvent, p Period) []ActivityEvent {
	return Filter(events, func(e ActivityEvent) bool { return p.Contains(e.Timestamp) })
}

func eventLess(a, b ActivityEvent) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.Actor != b.Actor {
		return a.Actor < b.Actor
	}
	return a.SubjectName < b.SubjectName
}

// copyEvent returns an event whose metadata shares nothing with the original
func copyEvent(e ActivityEvent) ActivityEvent {
	e.Metadata = copyMap(e.Metadata)
	return e
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return val
	}
}
