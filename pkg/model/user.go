package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Role is the role of a signed-in user.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
)

// ParseRole normalizes a role string from the backend or local storage.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

func (r Role) String() string {
	return string(r)
}

// Route is the screen set a role lands on.
type Route string

const (
	RouteLogin   Route = "/auth/login"
	RouteStudent Route = "/(student)"
	RouteTeacher Route = "/(teacher)"
)

// RouteFor returns the landing route for role. Unknown roles land on login.
func RouteFor(role Role) Route {
	switch role {
	case RoleStudent:
		return RouteStudent
	case RoleTeacher:
		return RouteTeacher
	}
	return RouteLogin
}

// User is the identity returned by the login endpoint.
type User struct {
	ID       string     `json:"id"`
	Role     Role       `json:"role"`
	Name     string     `json:"name,omitempty"`
	Username string     `json:"username,omitempty"`
	Email    string     `json:"email,omitempty"`
	Section  string     `json:"section,omitempty"`
	Year     FlexString `json:"year,omitempty"`
}

// DisplayName returns the best available human name.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	}
	return u.ID
}

// FlexString decodes from a JSON string or number; backends disagree on
// whether a year of study is "3" or 3.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
