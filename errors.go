package stockdash

import (
	"errors"
	"fmt"
)

// NotReachableMessage is the user facing text of every transport failure.
const NotReachableMessage = "could not reach server"

// ErrInFlight is returned when a submission is attempted while the previous one
// has not completed yet.
var ErrInFlight = errors.New("a request is already in flight")

// ValidationError reports user input rejected before any request is sent.
type ValidationError struct {
	Field  string // name of the form field, may be empty
	Reason string // user facing text
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// TransportError reports a request that could not complete: network failure,
// timeout, unexpected status or a body that is not the expected JSON.
type TransportError struct {
	Op  string // e.g. "GET /api/portfolio"
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// BackendError is a failure reported by the backend itself, typically
// {"success": false, "error": "..."}. Message is shown verbatim.
type BackendError struct {
	Op      string
	Status  int
	Message string
}

func (e *BackendError) Error() string { return e.Message }

// ErrorKind classifies errors into the three families the views care about.
type ErrorKind int

const (
	NoError ErrorKind = iota
	ValidationFailure
	TransportFailure
	BackendFailure
)

// KindOf returns the family of err. Errors outside the taxonomy are treated as
// transport failures: something between the view and the backend went wrong.
func KindOf(err error) ErrorKind {
	var (
		ve *ValidationError
		be *BackendError
	)
	switch {
	case err == nil:
		return NoError
	case errors.As(err, &ve):
		return ValidationFailure
	case errors.As(err, &be):
		return BackendFailure
	default:
		return TransportFailure
	}
}

// UserMessage returns the text a view displays for err.
func UserMessage(err error) string {
	var (
		ve *ValidationError
		be *BackendError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Reason
	case errors.As(err, &be):
		return be.Message
	default:
		return NotReachableMessage
	}
}
