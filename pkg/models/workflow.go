// Package models defines the core domain models for gated, multi-step
// document orchestration runs.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow run.
type WorkflowStatus string

const (
	WorkflowStatusPending   WorkflowStatus = "pending"   // Built, not started
	WorkflowStatusRunning   WorkflowStatus = "running"   // Steps advancing
	WorkflowStatusCompleted WorkflowStatus = "completed" // Terminal step reached
	WorkflowStatusFailed    WorkflowStatus = "failed"    // Delegation failure or loop budget exhausted
	WorkflowStatusAborted   WorkflowStatus = "aborted"   // User declined the fix offer
)

// WorkflowKind identifies which step template a workflow was built from.
type WorkflowKind string

const (
	WorkflowKindDesignReview WorkflowKind = "design-review"
	WorkflowKindTestAddition WorkflowKind = "test-addition"
)

// Workflow is an ordered sequence of steps advanced strictly one at a time.
// MaxIterations bounds every loop the step graph contains; there is no
// unbounded retry anywhere in a run.
type Workflow struct {
	ID            string         `json:"id"             validate:"required"`
	Name          string         `json:"name"           validate:"required,min=3"`
	Kind          WorkflowKind   `json:"kind"           validate:"required,oneof=design-review test-addition"`
	Status        WorkflowStatus `json:"status"`
	Stage         Stage          `json:"stage"          validate:"required,oneof=prototype production"`
	DocumentPath  string         `json:"document_path"` // empty until the resolve step picks the latest document
	MaxIterations int            `json:"max_iterations" validate:"required,min=1"`
	Steps         []*Step        `json:"steps"          validate:"required,min=1,dive"`
	Context       *RunContext    `json:"context,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty"`
}

// StepByUID returns the step with the given UID, or nil.
func (w *Workflow) StepByUID(uid string) *Step {
	for _, step := range w.Steps {
		if step.UID == uid {
			return step
		}
	}

	return nil
}

// StepIndex returns the position of the step with the given UID, or -1.
func (w *Workflow) StepIndex(uid string) int {
	for i, step := range w.Steps {
		if step.UID == uid {
			return i
		}
	}

	return -1
}

// Bag returns the run context, allocating it on first use.
func (w *Workflow) Bag() *RunContext {
	if w.Context == nil {
		w.Context = NewRunContext(w.ID)
	}

	return w.Context
}

// Finished reports whether the run reached a final status.
func (w *Workflow) Finished() bool {
	switch w.Status {
	case WorkflowStatusCompleted, WorkflowStatusFailed, WorkflowStatusAborted:
		return true
	case WorkflowStatusPending, WorkflowStatusRunning:
		return false
	}

	return false
}
