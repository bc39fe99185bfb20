package model

import "encoding/json"

// Envelope is the tRPC response wrapper: {"result":{"data":...}} on success,
// {"error":{...}} on failure.
type Envelope struct {
	Result *Result      `json:"result,omitempty"`
	Error  *RemoteError `json:"error,omitempty"`
}

// Result carries the procedure's return value.
type Result struct {
	Data json.RawMessage `json:"data"`
}

// RemoteError is the error shape produced by the backend.
type RemoteError struct {
	Message string          `json:"message"`
	Code    int             `json:"code,omitempty"`
	Data    RemoteErrorData `json:"data,omitempty"`
}

// RemoteErrorData holds the symbolic code and HTTP status of a RemoteError.
type RemoteErrorData struct {
	Code       string `json:"code,omitempty"`
	HTTPStatus int    `json:"httpStatus,omitempty"`
	Path       string `json:"path,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
