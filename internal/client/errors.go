package client

import (
	"net/http"
	"strings"

	"github.com/me/odflow/pkg/model"
)

// operation selects how an HTTP failure is classified. A 403 on login means
// bad credentials; on a decision it means the backend refused the action.
type operation int

const (
	opList operation = iota
	opCreate
	opDecide
	opLogin
)

// remoteError converts a failed response into a classified APIError.
func remoteError(op operation, status int, remote *model.RemoteError) *model.APIError {
	apiErr := &model.APIError{HTTPStatus: status}
	if remote != nil {
		apiErr.Message = remote.Message
		apiErr.Code = remote.Data.Code
		if status < 400 {
			apiErr.HTTPStatus = remote.Data.HTTPStatus
		}
	}
	if apiErr.HTTPStatus == 0 {
		apiErr.HTTPStatus = statusForCode(apiErr.Code)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(apiErr.HTTPStatus)
	}
	apiErr.Kind = classify(op, apiErr.HTTPStatus)
	return apiErr
}

func classify(op operation, status int) model.ErrorKind {
	if op == opLogin && status >= 400 && status < 500 {
		return model.KindUnauthenticated
	}
	switch status {
	case http.StatusUnauthorized:
		return model.KindUnauthenticated
	case http.StatusForbidden:
		if op == opDecide {
			return model.KindRejected
		}
		return model.KindUnauthenticated
	case http.StatusNotFound:
		return model.KindNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return model.KindRejected
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if op == opDecide {
			return model.KindRejected
		}
		return model.KindValidation
	}
	return model.KindInternal
}

// statusForCode maps tRPC error codes to HTTP statuses for responses that
// carry a code but no status.
func statusForCode(code string) int {
	switch strings.ToUpper(code) {
	case "BAD_REQUEST", "PARSE_ERROR":
		return http.StatusBadRequest
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "FORBIDDEN":
		return http.StatusForbidden
	case "NOT_FOUND":
		return http.StatusNotFound
	case "CONFLICT":
		return http.StatusConflict
	case "PRECONDITION_FAILED":
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}
