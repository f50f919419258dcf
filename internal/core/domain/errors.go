package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is the root of every "record does not exist" error.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated means no user is bound to the request. It is a
	// control-flow outcome (redirect to login), not an error page.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrSessionInvalid means the session points at a user that no longer exists.
	ErrSessionInvalid = errors.New("session user no longer exists")
)

// ValidationError carries per-field messages for bad or missing input.
// Keys are the form field names the message belongs next to.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e when it holds at least one field error, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
