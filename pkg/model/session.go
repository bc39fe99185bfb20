package model

import (
	"encoding/json"
	"time"
)

// Session is the signed-in state persisted across restarts.
//
// Raw keeps the complete login response so fields the client does not model
// survive a save/restore round trip.
type Session struct {
	Token        string          `json:"token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	User         User            `json:"user"`
	ExpiresAt    time.Time       `json:"expires_at,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// IsExpired reports whether the session's token has expired at now.
// A zero expiry means the backend did not say, and is treated as not expired.
func (s *Session) IsExpired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.After(s.ExpiresAt)
}

// IsStudent reports whether the session belongs to a student.
func (s *Session) IsStudent() bool {
	return s.User.Role == RoleStudent
}

// IsTeacher reports whether the session belongs to a teacher.
func (s *Session) IsTeacher() bool {
	return s.User.Role == RoleTeacher
}
