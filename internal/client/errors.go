package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound           = errors.New("booking not found")
	ErrValidation         = errors.New("validation failed")
	ErrNetwork            = errors.New("network error")
	ErrServer             = errors.New("server error")
	ErrOptimisticConflict = errors.New("update rejected, local changes reverted")
	ErrConfirmInFlight    = errors.New("confirmation already in progress")
)

// APIError is a non-2xx response. It unwraps to one of the sentinel kinds.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

func newAPIError(status int, message string) *APIError {
	return &APIError{StatusCode: status, Message: message, kind: classify(status)}
}

func classify(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrServer
	}
}

// UserMessage turns any error from this package into text fit for an end user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOptimisticConflict):
		return "could not save your availability, changes were reverted"
	case errors.Is(err, ErrConfirmInFlight):
		return "confirming..."
	case errors.Is(err, ErrNotFound):
		return "booking expired or not found"
	case errors.Is(err, ErrValidation):
		return "please select another time"
	default:
		return "something went wrong, please try again later"
	}
}
