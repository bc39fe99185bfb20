package model

import (
	"strings"
	"time"
)

// FormTypeOnDuty is the only form type the client submits.
const FormTypeOnDuty = "ON_DUTY"

// Category is the kind of activity an OD request covers.
type Category string

const (
	CategorySymposium Category = "Symposium"
	CategoryWorkshop  Category = "Workshop"
	CategoryPlacement Category = "Placement"
)

// Categories lists the categories offered when applying.
var Categories = []Category{CategorySymposium, CategoryWorkshop, CategoryPlacement}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Form is one OD request as returned by the backend.
type Form struct {
	ID          string      `json:"id"`
	RequesterID string      `json:"requesterId"`
	Reason      string      `json:"reason"`
	Category    string      `json:"category"`
	FormType    string      `json:"formType"`
	Dates       []time.Time `json:"dates"`
	CreatedAt   time.Time   `json:"createdAt"`
	Requests    []Request   `json:"requests"`
	// Requester is populated on teacher lists only.
	Requester *Requester `json:"requester,omitempty"`
}

// Requester describes the student who created a form.
type Requester struct {
	Name    string          `json:"name"`
	Student *StudentProfile `json:"student,omitempty"`
}

// StudentProfile is the academic part of a student's record.
type StudentProfile struct {
	Section string     `json:"section,omitempty"`
	Year    FlexString `json:"year,omitempty"`
}

// Request is one teacher's decision record on a form.
type Request struct {
	ID                 string  `json:"id"`
	RequestedID        string  `json:"requestedId"`
	Status             Status  `json:"status"`
	ReasonForRejection *string `json:"reasonForRejection"`
}

// CreateFormInput is the body of user.student.form.create.
type CreateFormInput struct {
	Reason      string      `json:"reason"`
	RequesterID string      `json:"requesterId"`
	Category    string      `json:"category"`
	FormType    string      `json:"formType"`
	Dates       []time.Time `json:"dates"`
}

// DecisionInput is the body of user.teacher.form.acceptOrReject.
type DecisionInput struct {
	RequesterID        string  `json:"requesterId"`
	RequestID          string  `json:"requestId"`
	RequestedID        string  `json:"requestedId"`
	Status             Status  `json:"status"`
	ReasonForRejection *string `json:"reasonForRejection"`
}
