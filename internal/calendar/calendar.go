// Package calendar does day-granularity date arithmetic for OD requests.
//
// Every value this package returns is midnight UTC of a calendar date. A
// time with a time-of-day component or a non-UTC location is first reduced
// to the calendar date it names in its own location.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/me/odflow/pkg/model"
)

const (
	isoLayout     = "2006-01-02"
	displayLayout = "02-01-2006"
)

// Day returns midnight UTC of the calendar date t falls on in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns Day(now()).
func Today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return Day(now())
}

// Expand returns every calendar day from start to end inclusive, in order.
// It returns model.ErrInvalidRange when end falls on an earlier day than start.
func Expand(start, end time.Time) ([]time.Time, error) {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return nil, fmt.Errorf("expand %s..%s: %w", s.Format(isoLayout), e.Format(isoLayout), model.ErrInvalidRange)
	}
	days := make([]time.Time, 0, int(e.Sub(s).Hours()/24)+1)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month and returns its first day.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month %q: want YYYY-MM", s)
	}
	return t, nil
}

// FormatDay renders t as dd-mm-yyyy in UTC.
func FormatDay(t time.Time) string {
	return t.UTC().Format(displayLayout)
}

// JoinDays renders every date, comma separated.
func JoinDays(dates []time.Time) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = FormatDay(d)
	}
	return strings.Join(parts, ", ")
}

// FormatRange renders the first and last date as "a to b", or a single date
// when both are the same day.
func FormatRange(dates []time.Time) string {
	if len(dates) == 0 {
		return ""
	}
	first, last := FormatDay(dates[0]), FormatDay(dates[len(dates)-1])
	if first == last {
		return first
	}
	return first + " to " + last
}
