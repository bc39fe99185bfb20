package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/me/odflow/internal/calendar"
)

const cellWidth = 5

// Calendar renders the month containing month. Requested days carry a
// trailing "*" and today is bracketed; days of neighbouring months are
// left blank.
func Calendar(month time.Time, highlighted []time.Time, today time.Time) string {
	var b strings.Builder
	title := month.Format("January 2006")
	width := 7 * cellWidth
	pad := (width - len(title)) / 2
	b.WriteString(strings.Repeat(" ", pad) + title + "\n")

	for _, d := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		fmt.Fprintf(&b, " %s ", d)
	}
	b.WriteString("\n")

	for _, week := range calendar.MonthGrid(month, highlighted, today) {
		var line strings.Builder
		for _, c := range week {
			line.WriteString(cell(c))
		}
		b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}
	b.WriteString("* requested  [ ] today\n")
	return b.String()
}

func cell(c calendar.Cell) string {
	if !c.InMonth {
		return strings.Repeat(" ", cellWidth)
	}
	left, right, mark := " ", " ", " "
	if c.Today {
		left, right = "[", "]"
	}
	if c.Highlighted {
		mark = "*"
	}
	return fmt.Sprintf("%s%2d%s%s", left, c.Date.Day(), right, mark)
}
