package status

import (
	"testing"

	"github.com/me/odflow/pkg/model"
)

func req(id, teacher string, st model.Status) model.Request {
	return model.Request{ID: id, RequestedID: teacher, Status: st}
}

func form(id string, reqs ...model.Request) model.Form {
	return model.Form{ID: id, RequesterID: "stu-1", Requests: reqs}
}

func ids(forms []model.Form) []string {
	out := make([]string, len(forms))
	for i, f := range forms {
		out[i] = f.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEffective_LastRequestWins(t *testing.T) {
	tests := []struct {
		name string
		reqs []model.Request
		want model.Status
	}{
		{"empty", nil, model.StatusNone},
		{"single pending", []model.Request{req("r1", "t1", model.StatusPending)}, model.StatusPending},
		{"accepted then pending", []model.Request{
			req("r1", "t1", model.StatusAccepted),
			req("r2", "t2", model.StatusPending),
		}, model.StatusPending},
		{"pending then rejected", []model.Request{
			req("r1", "t1", model.StatusPending),
			req("r2", "t2", model.StatusRejected),
		}, model.StatusRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Effective(tt.reqs); got != tt.want {
				t.Errorf("Effective = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_FirstPendingMatchIsActionable(t *testing.T) {
	f := form("f1",
		req("r1", "t1", model.StatusAccepted),
		req("r2", "t1", model.StatusPending),
		req("r3", "t1", model.StatusPending),
		req("r4", "t2", model.StatusRejected),
	)
	res := Resolve(f, "t1")
	if res.Effective != model.StatusRejected {
		t.Errorf("Effective = %q, want last record's status", res.Effective)
	}
	if res.Actionable == nil || res.Actionable.ID != "r2" {
		t.Errorf("Actionable = %+v, want r2", res.Actionable)
	}
	if res.Mine == nil || res.Mine.ID != "r1" {
		t.Errorf("Mine = %+v, want r1", res.Mine)
	}

	if got := Resolve(f, "t3"); got.Actionable != nil || got.Mine != nil {
		t.Errorf("unrelated teacher resolved %+v", got)
	}
	if got := Resolve(f, ""); got.Actionable != nil {
		t.Error("anonymous viewer should never have an actionable request")
	}
}

func TestStudentViews(t *testing.T) {
	forms := []model.Form{
		form("old-accepted", req("r1", "t1", model.StatusAccepted)),
		form("pending", req("r2", "t1", model.StatusPending)),
		form("empty"),
		form("newest-pending", req("r3", "t1", model.StatusAccepted), req("r4", "t2", model.StatusPending)),
	}

	if got := ids(StudentActive(forms)); !equal(got, []string{"newest-pending", "pending"}) {
		t.Errorf("StudentActive = %v", got)
	}
	if got := ids(StudentHistory(forms)); !equal(got, []string{"empty", "old-accepted"}) {
		t.Errorf("StudentHistory = %v", got)
	}
	if forms[0].ID != "old-accepted" {
		t.Error("filters must not reorder the input slice")
	}
}

func TestTeacherInbox(t *testing.T) {
	forms := []model.Form{
		form("a", req("r1", "t1", model.StatusPending)),
		form("b", req("r2", "t2", model.StatusPending)),
		form("c", req("r3", "t1", model.StatusRejected)),
		form("empty"),
		form("d", req("r4", "t2", model.StatusAccepted), req("r5", "t1", model.StatusPending)),
	}
	if got := ids(TeacherInbox(forms, "t1")); !equal(got, []string{"d", "a"}) {
		t.Errorf("TeacherInbox(t1) = %v", got)
	}
	if got := TeacherInbox(nil, "t1"); len(got) != 0 {
		t.Errorf("TeacherInbox(nil) = %v", got)
	}
}
