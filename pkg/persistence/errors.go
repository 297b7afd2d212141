package persistence

import (
	"errors"
	"fmt"
)

// Standard run-store error types that all implementations use.
var (
	// ErrRunNotFound indicates no run record exists for the given id.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidRun indicates a record that cannot be stored as given.
	ErrInvalidRun = errors.New("invalid run record")
)

// RunError wraps run-store failures with operation context.
type RunError struct {
	Op    string // Operation being performed (e.g. "SaveRun", "RunByID")
	RunID string // Run id if applicable
	Err   error  // Underlying error
}

func (e *RunError) Error() string {
	if e.RunID == "" {
		return fmt.Sprintf("persistence: %s failed: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("persistence: %s failed for run %s: %v", e.Op, e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for run-store errors.
func (e *RunError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRunError creates a run-store error with context.
func NewRunError(op, runID string, err error) *RunError {
	return &RunError{Op: op, RunID: runID, Err: err}
}

// IsRunNotFound checks if an error indicates a missing run record.
func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
