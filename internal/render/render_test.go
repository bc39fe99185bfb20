package render

import (
	"strings"
	"testing"
	"time"

	"github.com/me/odflow/pkg/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(s string) *string { return &s }

var (
	now     = time.Date(2024, 10, 4, 9, 0, 0, 0, time.UTC)
	created = time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
)

func workshop(reqs ...model.Request) model.Form {
	return model.Form{
		ID:          "form-1",
		RequesterID: "stu-1",
		Reason:      "ML workshop",
		Category:    "Workshop",
		FormType:    model.FormTypeOnDuty,
		Dates:       []time.Time{date("2024-10-03"), date("2024-10-04")},
		CreatedAt:   created,
		Requests:    reqs,
	}
}

func TestActiveCard(t *testing.T) {
	card := ActiveCard(workshop(model.Request{ID: "r1", RequestedID: "tch-1", Status: model.StatusPending}), now)
	want := []string{
		"Pending\n",
		"Reason: ML workshop\n",
		"Category: Workshop\n",
		"Date: 01-10-2024 (3 days ago)\n",
		"Requested Dates: 03-10-2024, 04-10-2024\n",
	}
	for _, w := range want {
		if !strings.Contains(card, w) {
			t.Errorf("card missing %q:\n%s", w, card)
		}
	}
	if !strings.HasPrefix(card, "Pending\n") {
		t.Errorf("card should start with the status:\n%s", card)
	}
}

func TestHistoryCard(t *testing.T) {
	f := workshop(
		model.Request{ID: "r1", RequestedID: "tch-1", Status: model.StatusAccepted},
		model.Request{ID: "r2", RequestedID: "tch-2", Status: model.StatusRejected, ReasonForRejection: ptr("exam week")},
	)
	card := HistoryCard(f, now)
	for _, w := range []string{
		"Rejected\n",
		"Requested Dates: 03-10-2024 to 04-10-2024\n",
		"Reason for rejection: exam week\n",
	} {
		if !strings.Contains(card, w) {
			t.Errorf("card missing %q:\n%s", w, card)
		}
	}

	single := workshop()
	single.Dates = single.Dates[:1]
	card = HistoryCard(single, now)
	if !strings.Contains(card, "No Status Available\n") || !strings.Contains(card, "Requested Dates: 03-10-2024\n") {
		t.Errorf("single-day card:\n%s", card)
	}
}

func TestInboxCardShowsOwnRequest(t *testing.T) {
	f := workshop(
		model.Request{ID: "r1", RequestedID: "tch-1", Status: model.StatusPending},
		model.Request{ID: "r2", RequestedID: "tch-2", Status: model.StatusAccepted},
	)
	f.Requester = &model.Requester{Name: "Asha", Student: &model.StudentProfile{Section: "B", Year: "2"}}

	card := InboxCard(f, "tch-1", now)
	for _, w := range []string{"Pending\n", "Name: Asha\n", "Section: B\n", "Year: 2\n", "Form: form-1\n"} {
		if !strings.Contains(card, w) {
			t.Errorf("card missing %q:\n%s", w, card)
		}
	}
	if card := InboxCard(f, "tch-9", now); !strings.HasPrefix(card, "No Status Available\n") {
		t.Errorf("stranger's card:\n%s", card)
	}
}

func TestListEmpty(t *testing.T) {
	var b strings.Builder
	List(&b, nil, EmptyActive, func(model.Form) string { return "x" })
	if b.String() != "No Pending ODs\n" {
		t.Errorf("got %q", b.String())
	}

	b.Reset()
	List(&b, []model.Form{{ID: "a"}, {ID: "b"}}, EmptyActive, func(f model.Form) string { return f.ID + "\n" })
	if b.String() != "a\n\nb\n" {
		t.Errorf("got %q", b.String())
	}
}

func TestCalendar(t *testing.T) {
	out := Calendar(date("2024-10-01"), []time.Time{date("2024-10-03"), date("2024-10-04")}, date("2024-10-20"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if strings.TrimSpace(lines[0]) != "October 2024" {
		t.Errorf("title = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], " Sun  Mon ") {
		t.Errorf("weekday row = %q", lines[1])
	}
	// October 2024 starts on a Tuesday.
	if want := strings.Repeat(" ", 10) + "  1    2    3 *  4 *  5"; lines[2] != want {
		t.Errorf("first week = %q, want %q", lines[2], want)
	}
	if !strings.Contains(out, "[20] ") {
		t.Errorf("today not bracketed:\n%s", out)
	}
	if got := len(lines); got != 2+5+1 {
		t.Errorf("lines = %d, want 8:\n%s", got, out)
	}
}
