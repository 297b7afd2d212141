package engine

import (
	"errors"
	"fmt"
)

// Standard run error types the engine reports.
var (
	// ErrInvalidWorkflow indicates the workflow failed structural validation
	// before any step ran.
	ErrInvalidWorkflow = errors.New("invalid workflow")

	// ErrStepNotFound indicates a step referenced by UID does not exist in
	// the workflow.
	ErrStepNotFound = errors.New("step not found")

	// ErrInvalidJump indicates a gate or branch names a target the engine
	// cannot jump to from the current step.
	ErrInvalidJump = errors.New("invalid jump target")

	// ErrLoopBudgetExceeded indicates a gate still failed after the
	// workflow's maximum number of improvement iterations.
	ErrLoopBudgetExceeded = errors.New("loop budget exceeded")

	// ErrRunAborted indicates the run stopped before finishing, either by
	// user decision or context cancellation.
	ErrRunAborted = errors.New("run aborted")
)

// RunError wraps step execution errors with run context.
type RunError struct {
	Op         string // Operation being performed (e.g., "Run", "Delegate", "Gate")
	WorkflowID string // Workflow ID
	StepUID    string // Step UID if the error is tied to a step
	Err        error  // Underlying error
}

func (e *RunError) Error() string {
	if e.StepUID != "" {
		return fmt.Sprintf("%s failed at step %s in run %s: %v", e.Op, e.StepUID, e.WorkflowID, e.Err)
	}

	return fmt.Sprintf("%s failed for run %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for run errors.
func (e *RunError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRunError creates a run-scoped error without a step attached.
func NewRunError(op, workflowID string, err error) *RunError {
	return &RunError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// NewStepError creates a run error attached to a specific step.
func NewStepError(op, workflowID, stepUID string, err error) *RunError {
	return &RunError{
		Op:         op,
		WorkflowID: workflowID,
		StepUID:    stepUID,
		Err:        err,
	}
}

// IsLoopBudgetExceeded checks if an error indicates the iteration budget
// ran out before a gate passed.
func IsLoopBudgetExceeded(err error) bool {
	return errors.Is(err, ErrLoopBudgetExceeded)
}

// IsRunAborted checks if an error indicates the run was aborted rather
// than failed.
func IsRunAborted(err error) bool {
	return errors.Is(err, ErrRunAborted)
}

// FailedStepUID extracts the step a run error is attached to, or empty
// when the error is not step-scoped.
func FailedStepUID(err error) string {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.StepUID
	}

	return ""
}
