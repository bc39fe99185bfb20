// Package status derives the disposition of OD forms from their decision
// records.
//
// One rule decides the effective status of a form for every viewer: the last
// decision record wins. A teacher's inbox is a different question ("is there
// a request waiting on me?") and is answered by Resolve's Actionable field,
// never by a second notion of effective status.
package status

import "github.com/me/odflow/pkg/model"

// Resolution is everything a viewer needs to know about one form.
type Resolution struct {
	// Effective is the status of the last decision record, or StatusNone.
	Effective model.Status
	// Actionable is the first PENDING record addressed to the viewer, the one
	// an accept/reject acts upon. Nil when the viewer has nothing to decide.
	Actionable *model.Request
	// Mine is the first record addressed to the viewer in any status.
	Mine *model.Request
}

// Effective returns the status of the last request, or StatusNone when there
// are none.
func Effective(requests []model.Request) model.Status {
	if len(requests) == 0 {
		return model.StatusNone
	}
	return requests[len(requests)-1].Status
}

// Resolve computes the Resolution of form for the user viewerID. An empty
// viewerID resolves only the effective status.
func Resolve(form model.Form, viewerID string) Resolution {
	res := Resolution{Effective: Effective(form.Requests)}
	if viewerID == "" {
		return res
	}
	for i := range form.Requests {
		req := &form.Requests[i]
		if req.RequestedID != viewerID {
			continue
		}
		if res.Mine == nil {
			res.Mine = req
		}
		if req.Status == model.StatusPending {
			res.Actionable = req
			break
		}
	}
	return res
}

// IsPending reports whether form's effective status is PENDING.
func IsPending(form model.Form) bool {
	return Effective(form.Requests) == model.StatusPending
}

// StudentActive returns the forms whose effective status is PENDING, newest
// first. The input is not modified.
func StudentActive(forms []model.Form) []model.Form {
	return newestFirst(forms, IsPending)
}

// StudentHistory returns the forms whose effective status is not PENDING,
// newest first. Forms with no decision records are history.
func StudentHistory(forms []model.Form) []model.Form {
	return newestFirst(forms, func(f model.Form) bool { return !IsPending(f) })
}

// TeacherInbox returns the forms with a PENDING request addressed to
// teacherID, newest first.
func TeacherInbox(forms []model.Form, teacherID string) []model.Form {
	return newestFirst(forms, func(f model.Form) bool {
		return Resolve(f, teacherID).Actionable != nil
	})
}

// newestFirst filters forms and reverses server order, which is oldest first.
func newestFirst(forms []model.Form, keep func(model.Form) bool) []model.Form {
	out := make([]model.Form, 0, len(forms))
	for i := len(forms) - 1; i >= 0; i-- {
		if keep(forms[i]) {
			out = append(out, forms[i])
		}
	}
	return out
}
