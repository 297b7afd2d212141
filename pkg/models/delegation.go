package models

import "time"

// DelegationRequest describes one unit of work handed to an external
// worker. The orchestrator never performs worker logic itself; every
// piece of domain work crosses this boundary.
type DelegationRequest struct {
	ID          string         `json:"id"`
	WorkerType  string         `json:"worker_type" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Prompt      string         `json:"prompt,omitempty"`
	Inputs      map[string]any `json:"inputs,omitempty"`
}

// DelegationOutcome classifies how an invocation ended.
type DelegationOutcome string

const (
	DelegationOutcomeSuccess       DelegationOutcome = "success"
	DelegationOutcomeTimeout       DelegationOutcome = "timeout"
	DelegationOutcomeProtocolError DelegationOutcome = "protocol_error" // response failed the worker output schema
	DelegationOutcomeWorkerError   DelegationOutcome = "worker_error"   // worker reported failure
)

// DelegationResult is the envelope every invocation produces, success
// or not. Outputs is populated only on success; Message carries the
// failure detail otherwise.
type DelegationResult struct {
	RequestID   string            `json:"request_id"`
	WorkerType  string            `json:"worker_type"`
	Outcome     DelegationOutcome `json:"outcome"`
	Outputs     map[string]any    `json:"outputs,omitempty"`
	Message     string            `json:"message,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
}

func (r *DelegationResult) Failed() bool {
	return r.Outcome != DelegationOutcomeSuccess
}

func (r *DelegationResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
