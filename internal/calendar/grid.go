package calendar

import "time"

// Cell is one day in a month grid.
type Cell struct {
	Date        time.Time
	InMonth     bool
	Highlighted bool
	Today       bool
}

// MonthGrid lays out the month containing month as whole weeks starting on
// Sunday. Days from the neighbouring months pad the first and last week.
func MonthGrid(month time.Time, highlighted []time.Time, today time.Time) [][]Cell {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	marked := make(map[time.Time]bool, len(highlighted))
	for _, h := range highlighted {
		marked[Day(h)] = true
	}
	today = Day(today)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	var weeks [][]Cell
	for d := start; !d.After(end); {
		week := make([]Cell, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, Cell{
				Date:        d,
				InMonth:     d.Month() == first.Month(),
				Highlighted: marked[d],
				Today:       d.Equal(today),
			})
			d = d.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}
