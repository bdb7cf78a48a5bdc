package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	// ErrNotFound covers both "does not exist" and "exists but is not
	// visible to the caller" so tenant existence never leaks.
	ErrNotFound = errors.New("not found")

	// ErrClientNotVisible means the caller tried to write against a client
	// outside their visible set.
	ErrClientNotVisible = errors.New("client not visible to caller")
)

// ValidationError carries per-field messages for a rejected write. Storage
// invariant violations (duplicate slug, duplicate report window) surface as
// validation failures, never as raw storage errors.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AsValidationError unwraps err into a ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
