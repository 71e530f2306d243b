// Package week computes the Monday–Friday business week that weekly
// priorities are recorded against.
package week

import (
	"fmt"
	"time"
)

// workdays is the number of days between Monday and Friday.
const workdays = 4

// endOfDay is the last representable millisecond of a day.
const endOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond

// Span is the distance between the start and the end of every week.
const Span = workdays*24*time.Hour + endOfDay

// Week is a business week: Monday 00:00:00.000 through Friday 23:59:59.999.
type Week struct {
	Start time.Time `json:"weekStart"`
	End   time.Time `json:"weekEnd"`
}

// Of returns the week containing t, evaluated in t's location.
// Saturday belongs to the week that just ended; Sunday too.
func Of(t time.Time) Week {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	year, month, day := t.Date()
	start := time.Date(year, month, day-daysSinceMonday, 0, 0, 0, 0, t.Location())
	return FromStart(start)
}

// Current returns the week containing now in loc.
func Current(loc *time.Location) Week {
	if loc == nil {
		loc = time.UTC
	}
	return Of(time.Now().In(loc))
}

// FromStart builds the week beginning at start, which must already be a Monday midnight.
func FromStart(start time.Time) Week {
	year, month, day := start.Date()
	end := time.Date(year, month, day+workdays, 23, 59, 59, int(999*time.Millisecond), start.Location())
	return Week{Start: start, End: end}
}

// Previous returns the week before w.
func (w Week) Previous() Week {
	return Of(w.Start.AddDate(0, 0, -7))
}

// Next returns the week after w.
func (w Week) Next() Week {
	return Of(w.Start.AddDate(0, 0, 7))
}

// Contains reports whether t falls between Start and End inclusive.
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Label renders the week as "<Mon> - <Fri>", e.g. "13 oct 2025 - 17 oct 2025".
func (w Week) Label() string {
	return FormatDate(w.Start) + " - " + FormatDate(w.Start.AddDate(0, 0, workdays))
}

// IsWellFormed reports whether start/end are the exact boundaries of one week.
func IsWellFormed(start, end time.Time) bool {
	w := Of(start)
	return w.Start.Equal(start) && w.End.Equal(end)
}

// DateKey returns the date-only portion of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

var shortMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// FormatDate formats t the way the dashboard prints dates (es-MX, short month).
func FormatDate(t time.Time) string {
	year, month, day := t.Date()
	return fmt.Sprintf("%d %s %d", day, shortMonths[month-1], year)
}
