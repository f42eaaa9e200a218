package models

import "time"

// TimeWindow bounds an analysis to an inclusive [Start, End] interval. The
// string forms carry the tool wire format alongside the structured instants.
type TimeWindow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	StartStr string    `json:"start_str"`
	EndStr   string    `json:"end_str"`
}

// Contains reports whether t falls inside the window, both bounds inclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Dates returns every calendar date the window spans, inclusive by day,
// formatted "YYYY-MM-DD".
func (w TimeWindow) Dates() []string {
	start := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
	end := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, w.End.Location())

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}

// MetricsWindow describes the effective metrics analysis interval together
// with the inputs that produced it.
type MetricsWindow struct {
	TargetTime string    `json:"target_time,omitempty"`
	HoursRange int       `json:"hours_range"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	StartStr   string    `json:"start_str"`
	EndStr     string    `json:"end_str"`
}

// Contains reports whether t falls inside the metrics window, inclusive.
func (w MetricsWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
