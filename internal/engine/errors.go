package engine

import (
	"errors"
	"fmt"
)

// PlanningError represents an error detected while planning or dispatching
// render jobs.
//
// Planning errors include:
//   - Unknown model port: the dispatcher cannot resolve the requested port
//   - Sink closed: the downstream consumer stopped accepting jobs
//   - Invalid timings: frame grid or latencies are unusable
//   - Invariant violation: the pipeline was used outside its contract
//
// Invariant violations are raised as panics carrying a *PlanningError;
// the other codes are returned as ordinary errors.
type PlanningError struct {
	// Code identifies the error category.
	Code PlanningErrorCode

	// Message is a human-readable description.
	Message string

	// StreamID identifies the affected calculation stream, if known.
	StreamID string
}

// PlanningErrorCode categorizes planning errors.
type PlanningErrorCode string

const (
	// ErrCodeUnknownPort indicates the model port is not known to the dispatcher.
	ErrCodeUnknownPort PlanningErrorCode = "UNKNOWN_PORT"

	// ErrCodeSinkClosed indicates the data sink refused further jobs.
	ErrCodeSinkClosed PlanningErrorCode = "SINK_CLOSED"

	// ErrCodeInvalidTimings indicates an unusable timing configuration.
	ErrCodeInvalidTimings PlanningErrorCode = "INVALID_TIMINGS"

	// ErrCodeInvariant indicates a violated precondition (logic error).
	ErrCodeInvariant PlanningErrorCode = "INVARIANT"
)

// Error implements the error interface.
func (e *PlanningError) Error() string {
	if e.StreamID != "" {
		return fmt.Sprintf("%s: %s (stream=%s)", e.Code, e.Message, e.StreamID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownPortError returns true if the error reports an unresolvable model port.
// Uses errors.As to handle wrapped errors.
func IsUnknownPortError(err error) bool {
	return hasCode(err, ErrCodeUnknownPort)
}

// IsSinkClosedError returns true if dispatch stopped because the sink closed.
func IsSinkClosedError(err error) bool {
	return hasCode(err, ErrCodeSinkClosed)
}

// IsInvalidTimingsError returns true if the error reports unusable timings.
func IsInvalidTimingsError(err error) bool {
	return hasCode(err, ErrCodeInvalidTimings)
}

// IsInvariantError returns true if the error (or recovered panic value)
// reports a logic error.
func IsInvariantError(err error) bool {
	return hasCode(err, ErrCodeInvariant)
}

func hasCode(err error, code PlanningErrorCode) bool {
	var pe *PlanningError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// NewUnknownPortError creates a PlanningError for an unresolvable port.
func NewUnknownPortError(port ModelPort) *PlanningError {
	return &PlanningError{
		Code:    ErrCodeUnknownPort,
		Message: fmt.Sprintf("model port %q not known to dispatcher", string(port)),
	}
}

// logicError panics with an invariant violation.
func logicError(format string, args ...any) {
	panic(&PlanningError{
		Code:    ErrCodeInvariant,
		Message: fmt.Sprintf(format, args...),
	})
}
