package models

import "time"

// RunRecord is the persisted history entry for one orchestration run.
type RunRecord struct {
	ID           string         `json:"id"          validate:"required"`
	WorkflowID   string         `json:"workflow_id" validate:"required"`
	Kind         WorkflowKind   `json:"kind"        validate:"required"`
	Stage        Stage          `json:"stage"`
	Status       WorkflowStatus `json:"status"      validate:"required"`
	DocumentPath string         `json:"document_path"`
	TaskFilePath string         `json:"task_file_path,omitempty"`
	Report       *Report        `json:"report,omitempty"`
	Error        string         `json:"error,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}
