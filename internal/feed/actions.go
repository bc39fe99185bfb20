package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/me/odflow/internal/calendar"
	"github.com/me/odflow/internal/status"
	"github.com/me/odflow/pkg/model"
)

// Draft is a student's OD request before date expansion.
type Draft struct {
	Reason   string
	Category string
	From     time.Time
	To       time.Time
}

// Validate checks d against today's date and returns it normalized: reason
// trimmed, category canonical, dates reduced to calendar days.
func (d Draft) Validate(today time.Time) (Draft, error) {
	d.Reason = strings.TrimSpace(d.Reason)
	if d.Reason == "" {
		return d, model.NewValidationError("reason is required")
	}
	cat, ok := model.ParseCategory(d.Category)
	if !ok {
		return d, model.NewValidationError("unknown category %q (want one of %s)", d.Category, categoryList())
	}
	d.Category = string(cat)
	if d.From.IsZero() || d.To.IsZero() {
		return d, model.NewValidationError("start and end dates are required")
	}
	d.From, d.To = calendar.Day(d.From), calendar.Day(d.To)
	if d.From.Before(calendar.Day(today)) {
		return d, model.NewValidationError("start date %s is in the past", calendar.FormatDay(d.From))
	}
	if d.To.Before(d.From) {
		return d, model.NewValidationError("end date %s is before start date %s", calendar.FormatDay(d.To), calendar.FormatDay(d.From))
	}
	return d, nil
}

func categoryList() string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// StudentAPI is what Submit needs from the backend.
type StudentAPI interface {
	StudentLister
	CreateForm(ctx context.Context, in model.CreateFormInput) (*model.Form, error)
}

// Submit validates d, refuses a second concurrent pending request, creates
// the form with every day of the range and then refreshes views. The
// returned form is nil when the backend answered without one.
func Submit(ctx context.Context, api StudentAPI, sess model.Session, d Draft, today time.Time, views ...*Feed) (*model.Form, error) {
	if !sess.IsStudent() || sess.User.ID == "" {
		return nil, model.ErrNotSignedIn
	}
	d, err := d.Validate(today)
	if err != nil {
		return nil, err
	}
	dates, err := calendar.Expand(d.From, d.To)
	if err != nil {
		return nil, err
	}

	existing, err := api.ListStudentForms(ctx, sess.User.ID)
	if err != nil {
		return nil, fmt.Errorf("check pending requests: %w", err)
	}
	if len(status.StudentActive(existing)) > 0 {
		return nil, model.NewValidationError("You already have a pending request")
	}

	form, err := api.CreateForm(ctx, model.CreateFormInput{
		Reason:      d.Reason,
		RequesterID: sess.User.ID,
		Category:    d.Category,
		FormType:    model.FormTypeOnDuty,
		Dates:       dates,
	})
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	refreshAll(ctx, views)
	return form, nil
}

// TeacherAPI is what Decide needs from the backend.
type TeacherAPI interface {
	Decide(ctx context.Context, in model.DecisionInput) (*model.Form, error)
}

// Decide records teacherID's decision on the first pending request of form
// addressed to them, then refreshes views. reason is sent only with a
// rejection. Backend refusals are returned unchanged; nothing is retried.
func Decide(ctx context.Context, api TeacherAPI, teacherID string, form model.Form, decision model.Status, reason string, views ...*Feed) (*model.Form, error) {
	if teacherID == "" {
		return nil, model.ErrNotSignedIn
	}
	if !decision.IsDecision() {
		return nil, model.NewValidationError("decision must be ACCEPTED or REJECTED, got %q", decision)
	}
	res := status.Resolve(form, teacherID)
	if res.Actionable == nil {
		return nil, fmt.Errorf("decide form %s: %w", form.ID, model.ErrNoActionableRequest)
	}

	in := model.DecisionInput{
		RequesterID: form.RequesterID,
		RequestID:   res.Actionable.ID,
		RequestedID: teacherID,
		Status:      decision,
	}
	if decision == model.StatusRejected {
		reason = strings.TrimSpace(reason)
		in.ReasonForRejection = &reason
	}

	updated, err := api.Decide(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("decide form %s: %w", form.ID, err)
	}
	refreshAll(ctx, views)
	return updated, nil
}

// FindForm returns the form with id in f's snapshot.
func FindForm(f *Feed, id string) (model.Form, bool) {
	for _, form := range f.Snapshot().Forms {
		if form.ID == id {
			return form, true
		}
	}
	return model.Form{}, false
}

func refreshAll(ctx context.Context, views []*Feed) {
	for _, v := range views {
		if v != nil {
			v.Refresh(ctx)
		}
	}
}
