package model

// Status is the disposition of a single decision record.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"

	// StatusNone is the effective status of a form with no decision records.
	StatusNone Status = ""
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once a decision has been recorded.
// The backend does not enforce this; the client offers no further action.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsDecision reports whether s is a value a teacher may send to decide.
func (s Status) IsDecision() bool {
	return s.IsTerminal()
}

// Label returns the user-facing text for the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	case StatusNone:
		return "No Status Available"
	}
	return string(s)
}
