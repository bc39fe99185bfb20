package feed

import (
	"context"
	"log/slog"

	"github.com/me/odflow/internal/status"
	"github.com/me/odflow/pkg/model"
)

// StudentLister lists the forms a student created.
type StudentLister interface {
	ListStudentForms(ctx context.Context, studentID string) ([]model.Form, error)
}

// TeacherLister lists the forms addressed to a teacher.
type TeacherLister interface {
	ListTeacherForms(ctx context.Context, teacherID string) ([]model.Form, error)
}

// Feed names.
const (
	NameActive  = "active"
	NameHistory = "history"
	NameInbox   = "inbox"
)

// NewStudentActive is the student's pending view.
func NewStudentActive(api StudentLister, studentID string, logger *slog.Logger, opts ...Option) *Feed {
	return New(NameActive, studentFetcher(api, studentID), status.StudentActive, logger, opts...)
}

// NewStudentHistory is the student's decided (and undecidable) forms.
func NewStudentHistory(api StudentLister, studentID string, logger *slog.Logger, opts ...Option) *Feed {
	return New(NameHistory, studentFetcher(api, studentID), status.StudentHistory, logger, opts...)
}

// NewTeacherInbox is the forms waiting on teacherID's decision.
func NewTeacherInbox(api TeacherLister, teacherID string, logger *slog.Logger, opts ...Option) *Feed {
	fetch := func(ctx context.Context) ([]model.Form, error) {
		return api.ListTeacherForms(ctx, teacherID)
	}
	project := func(forms []model.Form) []model.Form {
		return status.TeacherInbox(forms, teacherID)
	}
	return New(NameInbox, fetch, project, logger, opts...)
}

func studentFetcher(api StudentLister, studentID string) Fetcher {
	return func(ctx context.Context) ([]model.Form, error) {
		return api.ListStudentForms(ctx, studentID)
	}
}
