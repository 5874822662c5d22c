package report

import "time"

// TimelineDay is the activity count of one calendar day
type TimelineDay struct {
	Date   string         `json:"date"`
	Count  int            `json:"count"`
	ByType map[string]int `json:"byType"`
}

// HeatmapDay is the activity count of one weekday, 0 being Sunday
type HeatmapDay struct {
	Weekday int    `json:"weekday"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
}

// BuildTimeline buckets events by calendar day in the period's location. Every
// day of the period is present, including days without events.
func BuildTimeline(events []ActivityEvent, p Period) []TimelineDay {
	loc := p.Start.Location()
	dates := p.Dates()
	index := make(map[string]int, len(dates))
	timeline := make([]TimelineDay, len(dates))
	for i, d := range dates {
		key := d.Format(dateLayout)
		index[key] = i
		timeline[i] = TimelineDay{Date: key, ByType: make(map[string]int)}
	}

	for _, e := range events {
		i, ok := index[dayOf(e.Timestamp, loc).Format(dateLayout)]
		if !ok {
			continue
		}
		timeline[i].Count++
		timeline[i].ByType[normalizeKey(e.Type)]++
	}
	return timeline
}

// BuildHeatmap buckets events by weekday of their calendar day in loc.
// Always returns seven entries ordered Sunday to Saturday.
func BuildHeatmap(events []ActivityEvent, p Period) []HeatmapDay {
	loc := p.Start.Location()
	heatmap := make([]HeatmapDay, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		heatmap[wd] = HeatmapDay{Weekday: int(wd), Label: wd.String()[:3]}
	}
	for _, e := range events {
		if !p.Contains(e.Timestamp) {
			continue
		}
		heatmap[e.Timestamp.In(loc).Weekday()].Count++
	}
	return heatmap
}
