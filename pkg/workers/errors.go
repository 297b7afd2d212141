package workers

import (
	"errors"
	"fmt"
)

// Standard delegation error types shared by all transports.
var (
	// ErrWorkerTimeout indicates the worker did not answer before the
	// invocation deadline. Invocations are never retried; the run
	// decides what a timeout means.
	ErrWorkerTimeout = errors.New("worker invocation timed out")

	// ErrProtocol indicates the worker answered with something the
	// output schema for its type rejects. The outputs are discarded
	// rather than patched.
	ErrProtocol = errors.New("worker response violates output schema")

	// ErrWorkerFailed indicates the worker itself reported failure.
	ErrWorkerFailed = errors.New("worker reported failure")
)

// WorkerError wraps delegation failures with the worker and operation
// that produced them.
type WorkerError struct {
	Op         string // Operation being performed (e.g. "Invoke", "Send")
	WorkerType string // Worker type invoked (e.g. "design-reviewer")
	Err        error  // Underlying error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s failed for worker %s: %v", e.Op, e.WorkerType, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for delegation errors.
func (e *WorkerError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkerError creates a delegation error with context.
func NewWorkerError(op, workerType string, err error) *WorkerError {
	return &WorkerError{Op: op, WorkerType: workerType, Err: err}
}

// IsTimeout checks if an error indicates a worker deadline expiry.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrWorkerTimeout)
}

// IsProtocol checks if an error indicates a schema-violating response.
func IsProtocol(err error) bool {
	return errors.Is(err, ErrProtocol)
}

// IsWorkerFailure checks if an error indicates a worker-reported failure.
func IsWorkerFailure(err error) bool {
	return errors.Is(err, ErrWorkerFailed)
}
