package analytics

import "time"

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthWindows returns the calendar month containing now and the month before
// it, both in UTC.
func MonthWindows(now time.Time) (current, previous Window) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	current = Window{Start: start, End: start.AddDate(0, 1, 0)}
	previous = Window{Start: start.AddDate(0, -1, 0), End: start}
	return current, previous
}
