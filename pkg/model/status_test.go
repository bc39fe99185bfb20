package model

import (
	"encoding/json"
	"testing"
)

func TestStatus_Label(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPending, "Pending"},
		{StatusAccepted, "Accepted"},
		{StatusRejected, "Rejected"},
		{StatusNone, "No Status Available"},
	}
	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.want {
			t.Errorf("Status(%q).Label() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusAccepted, true},
		{StatusRejected, true},
		{StatusNone, false},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("Status(%q).IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory(" workshop "); !ok || c != CategoryWorkshop {
		t.Errorf("ParseCategory(workshop) = %q, %v", c, ok)
	}
	if _, ok := ParseCategory("category1"); ok {
		t.Error("ParseCategory(category1) should not match")
	}
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		role Role
		want Route
	}{
		{RoleStudent, RouteStudent},
		{RoleTeacher, RouteTeacher},
		{Role("ADMIN"), RouteLogin},
		{Role(""), RouteLogin},
	}
	for _, tt := range tests {
		if got := RouteFor(tt.role); got != tt.want {
			t.Errorf("RouteFor(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
	if ParseRole(" teacher") != RoleTeacher {
		t.Error("ParseRole should normalize case and whitespace")
	}
}

func TestFlexString(t *testing.T) {
	var u struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"3","b":3,"c":null}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.A != "3" || u.B != "3" || u.C != "" {
		t.Errorf("got %+v", u)
	}
}
