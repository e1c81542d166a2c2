package logbook

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrAscentNotFound  = errors.New("ascent not found")
	ErrRouteNotFound   = errors.New("route not found")
	ErrCragNotFound    = errors.New("crag not found")
	ErrSessionNotFound = errors.New("climbing session not found")
	ErrTickNotFound    = errors.New("tick not found")

	// ErrSessionConsistency signals an impossible session state, e.g.
	// an ascent pointing at another user's session. Never recovered
	// silently.
	ErrSessionConsistency = errors.New("climbing session consistency violation")
)

// ValidationError reports per-field validation failures. The caller
// receives the full field→message map and no state change is committed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
