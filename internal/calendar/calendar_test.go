package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/me/odflow/pkg/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpand_SingleDay(t *testing.T) {
	d := day("2024-10-03")
	got, err := Expand(d, d)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 1 || !got[0].Equal(d) {
		t.Errorf("Expand(D, D) = %v, want [D]", got)
	}
}

func TestExpand_Inclusive(t *testing.T) {
	got, err := Expand(day("2024-10-03"), day("2024-10-05"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{"2024-10-03", "2024-10-04", "2024-10-05"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if !got[i].Equal(day(w)) {
			t.Errorf("day %d = %v, want %s", i, got[i], w)
		}
	}
}

func TestExpand_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, 10, 3, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, 10, 4, 0, 15, 0, 0, time.UTC)
	got, err := Expand(start, end)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expand = %v, want 2 days", got)
	}
	for _, d := range got {
		if d.Hour() != 0 || d.Location() != time.UTC {
			t.Errorf("day %v is not midnight UTC", d)
		}
	}
}

func TestExpand_UsesCalendarDateOfLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 00:30 on the 3rd in IST is still the 2nd in UTC; the IST date wins.
	start := time.Date(2024, 10, 3, 0, 30, 0, 0, ist)
	got, err := Expand(start, start)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !got[0].Equal(day("2024-10-03")) {
		t.Errorf("Expand = %v, want 2024-10-03", got[0])
	}
}

func TestExpand_AcrossMonthAndLeapDay(t *testing.T) {
	got, err := Expand(day("2024-02-28"), day("2024-03-01"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 3 || !got[1].Equal(day("2024-02-29")) {
		t.Errorf("Expand = %v, want 28 Feb, 29 Feb, 1 Mar", got)
	}
}

func TestExpand_EndBeforeStart(t *testing.T) {
	_, err := Expand(day("2024-10-05"), day("2024-10-04"))
	if !errors.Is(err, model.ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
}

func TestFormatting(t *testing.T) {
	dates := []time.Time{day("2024-10-03"), day("2024-10-04")}
	if got := JoinDays(dates); got != "03-10-2024, 04-10-2024" {
		t.Errorf("JoinDays = %q", got)
	}
	if got := FormatRange(dates); got != "03-10-2024 to 04-10-2024" {
		t.Errorf("FormatRange = %q", got)
	}
	if got := FormatRange(dates[:1]); got != "03-10-2024" {
		t.Errorf("FormatRange single = %q", got)
	}
	if got := FormatRange(nil); got != "" {
		t.Errorf("FormatRange(nil) = %q", got)
	}
}

func TestParseDay(t *testing.T) {
	if _, err := ParseDay("03-10-2024"); err == nil {
		t.Error("expected error for dd-mm-yyyy input")
	}
	got, err := ParseDay(" 2024-10-03 ")
	if err != nil || !got.Equal(day("2024-10-03")) {
		t.Errorf("ParseDay = %v, %v", got, err)
	}
}

func TestMonthGrid(t *testing.T) {
	// October 2024 starts on a Tuesday and ends on a Thursday.
	weeks := MonthGrid(day("2024-10-15"), []time.Time{day("2024-10-03"), day("2024-10-04")}, day("2024-10-20"))
	if len(weeks) != 5 {
		t.Fatalf("weeks = %d, want 5", len(weeks))
	}
	first := weeks[0][0]
	if !first.Date.Equal(day("2024-09-29")) || first.InMonth {
		t.Errorf("first cell = %+v, want padded 29 Sep", first)
	}
	last := weeks[4][6]
	if !last.Date.Equal(day("2024-11-02")) || last.InMonth {
		t.Errorf("last cell = %+v, want padded 2 Nov", last)
	}

	var highlighted, today int
	for _, w := range weeks {
		if len(w) != 7 {
			t.Fatalf("week has %d days", len(w))
		}
		for _, c := range w {
			if c.Highlighted {
				highlighted++
			}
			if c.Today {
				today++
				if c.Date.Weekday() != time.Sunday {
					t.Errorf("today cell %v should be a Sunday", c.Date)
				}
			}
		}
	}
	if highlighted != 2 || today != 1 {
		t.Errorf("highlighted = %d, today = %d", highlighted, today)
	}
}
