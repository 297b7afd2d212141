// Package events defines the audit event types a run emits while it
// advances. The stream is observational: consumers can reconstruct what
// a run did, but nothing in the engine waits on a consumer.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ordinoproj/ordino/pkg/models"
)

type EventType string

// Topic is the single topic the run audit stream is published on.
const Topic = "ordino.audit"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Run lifecycle events.
	RunStartedEvent  EventType = "run.started"
	RunFinishedEvent EventType = "run.finished"
	RunFailedEvent   EventType = "run.failed"

	// Step lifecycle events.
	StepStartedEvent  EventType = "step.started"
	StepFinishedEvent EventType = "step.finished"
	StepSkippedEvent  EventType = "step.skipped"

	// Decision events.
	GateEvaluatedEvent EventType = "gate.evaluated"

	// Delegation events.
	WorkerInvokedEvent  EventType = "worker.invoked"
	WorkerFinishedEvent EventType = "worker.finished"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

type RunStarted struct {
	BaseEvent

	Kind         models.WorkflowKind `json:"kind"`
	Stage        models.Stage        `json:"stage"`
	DocumentPath string              `json:"document_path"`
}

func (e RunStarted) GetType() EventType {
	return RunStartedEvent
}

type RunFinished struct {
	BaseEvent

	Status     models.WorkflowStatus `json:"status"`
	DurationMs int64                 `json:"duration_ms"`
	Report     *models.Report        `json:"report,omitempty"`
}

func (e RunFinished) GetType() EventType {
	return RunFinishedEvent
}

type RunFailed struct {
	BaseEvent

	FailedStep string `json:"failed_step,omitempty"`
	Error      string `json:"error"`
	DurationMs int64  `json:"duration_ms"`
}

func (e RunFailed) GetType() EventType {
	return RunFailedEvent
}

type StepStarted struct {
	BaseEvent

	StepUID  string          `json:"step_uid"`
	StepName string          `json:"step_name"`
	Kind     models.StepKind `json:"step_kind"`
}

func (e StepStarted) GetType() EventType {
	return StepStartedEvent
}

type StepFinished struct {
	BaseEvent

	StepUID    string            `json:"step_uid"`
	Status     models.StepStatus `json:"status"`
	DurationMs int64             `json:"duration_ms"`
}

func (e StepFinished) GetType() EventType {
	return StepFinishedEvent
}

type StepSkipped struct {
	BaseEvent

	StepUID string `json:"step_uid"`
	Reason  string `json:"reason,omitempty"`
}

func (e StepSkipped) GetType() EventType {
	return StepSkippedEvent
}

type GateEvaluated struct {
	BaseEvent

	StepUID   string             `json:"step_uid"`
	Verdict   models.GateVerdict `json:"verdict"`
	Iteration int                `json:"iteration"`
}

func (e GateEvaluated) GetType() EventType {
	return GateEvaluatedEvent
}

type WorkerInvoked struct {
	BaseEvent

	RequestID   string `json:"request_id"`
	WorkerType  string `json:"worker_type"`
	Description string `json:"description,omitempty"`
}

func (e WorkerInvoked) GetType() EventType {
	return WorkerInvokedEvent
}

type WorkerFinished struct {
	BaseEvent

	RequestID  string                   `json:"request_id"`
	WorkerType string                   `json:"worker_type"`
	Outcome    models.DelegationOutcome `json:"outcome"`
	Message    string                   `json:"message,omitempty"`
	DurationMs int64                    `json:"duration_ms"`
}

func (e WorkerFinished) GetType() EventType {
	return WorkerFinishedEvent
}
