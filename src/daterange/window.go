// Package daterange normalizes requested reporting windows into inclusive
// UTC day boundaries.
package daterange

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Window is an inclusive range of whole UTC days.
type Window struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// InvalidRangeError reports a malformed or inverted window.
type InvalidRangeError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range %q..%q: %s", e.From, e.To, e.Reason)
}

// Day truncates t to midnight UTC of its calendar day in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// New builds a window from two instants, ignoring time of day.
func New(start, end time.Time) (Window, error) {
	w := Window{Start: Day(start), End: Day(end)}
	if w.End.Before(w.Start) {
		return Window{}, &InvalidRangeError{
			From:   w.Start.Format(dateLayout),
			To:     w.End.Format(dateLayout),
			Reason: "end is before start",
		}
	}
	return w, nil
}

// Parse resolves optional from/to strings. Missing bounds fall back to a window
// of span days ending today (relative to now).
func Parse(from, to string, span int, now time.Time) (Window, error) {
	if span < 1 {
		span = 1
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)

	var start, end time.Time
	var err error
	if to == "" {
		end = Day(now)
	} else if end, err = parseDay(to); err != nil {
		return Window{}, &InvalidRangeError{From: from, To: to, Reason: err.Error()}
	}
	if from == "" {
		start = end.AddDate(0, 0, -(span - 1))
	} else if start, err = parseDay(from); err != nil {
		return Window{}, &InvalidRangeError{From: from, To: to, Reason: err.Error()}
	}
	return New(start, end)
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return Day(t), nil
}

// Days is the inclusive day count; a single-day window has one day.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Previous is the window of equal length ending the day before Start.
func (w Window) Previous() Window {
	n := w.Days()
	return Window{
		Start: w.Start.AddDate(0, 0, -n),
		End:   w.Start.AddDate(0, 0, -1),
	}
}

// Dates lists every day in the window in ascending order.
func (w Window) Dates() []time.Time {
	dates := make([]time.Time, 0, w.Days())
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// IsFullMonth reports whether the window is exactly one calendar month.
func (w Window) IsFullMonth() bool {
	if w.Start.Day() != 1 {
		return false
	}
	lastDay := w.Start.AddDate(0, 1, -1)
	return w.End.Equal(lastDay)
}

func (w Window) String() string {
	return w.Start.Format(dateLayout) + ".." + w.End.Format(dateLayout)
}
