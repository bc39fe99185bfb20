// Package render formats forms and calendars as plain text for the
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/me/odflow/internal/calendar"
	"github.com/me/odflow/internal/status"
	"github.com/me/odflow/pkg/model"
)

// Messages shown for an empty view.
const (
	EmptyActive  = "No Pending ODs"
	EmptyHistory = "No history yet"
	EmptyInbox   = "No requests awaiting you"
)

// StatusLabel returns the display label of a status.
func StatusLabel(s model.Status) string {
	return s.Label()
}

// Age returns how long ago t was relative to now, e.g. "3 hours ago".
func Age(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// ActiveCard renders a pending form on the student's home view.
func ActiveCard(f model.Form, now time.Time) string {
	var b strings.Builder
	b.WriteString(StatusLabel(status.Effective(f.Requests)) + "\n")
	writeCommon(&b, f, now)
	fmt.Fprintf(&b, "Requested Dates: %s\n", calendar.JoinDays(f.Dates))
	return b.String()
}

// HistoryCard renders a decided form with its date range collapsed.
func HistoryCard(f model.Form, now time.Time) string {
	var b strings.Builder
	b.WriteString(StatusLabel(status.Effective(f.Requests)) + "\n")
	writeCommon(&b, f, now)
	fmt.Fprintf(&b, "Requested Dates: %s\n", calendar.FormatRange(f.Dates))
	if n := len(f.Requests); n > 0 {
		last := f.Requests[n-1]
		if last.Status == model.StatusRejected && last.ReasonForRejection != nil && *last.ReasonForRejection != "" {
			fmt.Fprintf(&b, "Reason for rejection: %s\n", *last.ReasonForRejection)
		}
	}
	return b.String()
}

// InboxCard renders a form for the teacher it is addressed to. The status
// shown is that of the teacher's own request.
func InboxCard(f model.Form, teacherID string, now time.Time) string {
	var b strings.Builder
	label := model.StatusNone.Label()
	if mine := status.Resolve(f, teacherID).Mine; mine != nil {
		label = StatusLabel(mine.Status)
	}
	b.WriteString(label + "\n")
	if r := f.Requester; r != nil {
		fmt.Fprintf(&b, "Name: %s\n", r.Name)
		if r.Student != nil {
			fmt.Fprintf(&b, "Section: %s\n", r.Student.Section)
			fmt.Fprintf(&b, "Year: %s\n", r.Student.Year)
		}
	}
	writeCommon(&b, f, now)
	fmt.Fprintf(&b, "Requested Dates: %s\n", calendar.JoinDays(f.Dates))
	fmt.Fprintf(&b, "Form: %s\n", f.ID)
	return b.String()
}

func writeCommon(b *strings.Builder, f model.Form, now time.Time) {
	fmt.Fprintf(b, "Reason: %s\n", f.Reason)
	fmt.Fprintf(b, "Category: %s\n", f.Category)
	if !f.CreatedAt.IsZero() {
		fmt.Fprintf(b, "Date: %s (%s)\n", calendar.FormatDay(f.CreatedAt), Age(f.CreatedAt, now))
	}
}

// List writes each form's card separated by a blank line, or empty when
// there are none.
func List(w io.Writer, forms []model.Form, empty string, card func(model.Form) string) {
	if len(forms) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for i, f := range forms {
		if i > 0 {
			fmt.Fprintln(w)
		}
		io.WriteString(w, card(f))
	}
}
