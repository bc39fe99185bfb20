package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures by how the caller should react to them.
type ErrorKind string

const (
	KindTransport       ErrorKind = "TRANSPORT"
	KindUnauthenticated ErrorKind = "UNAUTHENTICATED"
	KindRejected        ErrorKind = "REJECTED"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindStorage         ErrorKind = "STORAGE"
	KindValidation      ErrorKind = "VALIDATION"
	KindInternal        ErrorKind = "INTERNAL"
)

var (
	// ErrNotSignedIn is returned by operations that need a session when none is active.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrNoActionableRequest is returned when a teacher acts on a form with no pending request addressed to them.
	ErrNoActionableRequest = errors.New("no pending request addressed to you")
	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("end date is before start date")
)

// APIError is a classified error produced by the backend contract or the local store.
type APIError struct {
	Kind       ErrorKind `json:"kind"`
	Code       string    `json:"code,omitempty"` // backend error code, e.g. "CONFLICT"
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Err        error     `json:"-"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a VALIDATION APIError.
func NewValidationError(format string, args ...any) *APIError {
	return &APIError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewStorageError wraps a persistence failure.
func NewStorageError(op string, err error) *APIError {
	return &APIError{Kind: KindStorage, Message: op, Err: err}
}

// NewTransportError wraps a failure that produced no HTTP response.
func NewTransportError(err error) *APIError {
	return &APIError{Kind: KindTransport, Message: "request failed", Err: err}
}

// KindOf reports the kind of the first APIError in err's chain.
// Sentinel errors map to their natural kind; anything else is INTERNAL.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	switch {
	case errors.Is(err, ErrNotSignedIn):
		return KindUnauthenticated
	case errors.Is(err, ErrNoActionableRequest):
		return KindRejected
	case errors.Is(err, ErrInvalidRange):
		return KindValidation
	}
	return KindInternal
}

// FriendlyMessage returns the alert text shown to a user for a failed action.
func FriendlyMessage(action string, err error) string {
	switch KindOf(err) {
	case KindUnauthenticated:
		if action == "login" {
			return "Invalid username or password"
		}
		return "Your session has ended. Please log in again."
	case KindTransport:
		return "Could not reach the server. Check your connection and try again."
	case KindStorage:
		return "Signed in, but the session could not be saved on this device."
	case KindValidation:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.Message
		}
		return err.Error()
	}
	switch action {
	case "login":
		return "Login failed"
	case "load":
		return "Failed to load forms"
	case "decide":
		return "Failed to update request status."
	case "apply":
		return "Failed to submit the request."
	}
	return "Something went wrong."
}
