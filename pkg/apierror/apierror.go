// Package apierror defines the JSON error body returned by every endpoint.
package apierror

import (
	"net/http"
	"time"
)

// APIError is the uniform error response shape:
// {status, timestamp, message, errors}. Errors carries field-level
// validation messages when applicable and is omitted otherwise.
type APIError struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Errors    []string  `json:"errors,omitempty"`
}

// New builds an APIError with the current UTC timestamp.
func New(status int, message string) APIError {
	return APIError{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Message:   message,
	}
}

// NewValidation builds a 400 APIError carrying field-level messages.
func NewValidation(fieldErrors []string) APIError {
	e := New(http.StatusBadRequest, "Validation error")
	e.Errors = fieldErrors
	return e
}
