package models

import "time"

// Report is the final summary of a run. Metric fields are pointers on
// purpose: their absence is part of the report. Delta is set only when
// both the initial and the final metric exist, so a run that passed its
// gate on the first review carries neither FinalMetric nor Delta.
type Report struct {
	WorkflowID      string         `json:"workflow_id"`
	Kind            WorkflowKind   `json:"kind"`
	Stage           Stage          `json:"stage"`
	Status          WorkflowStatus `json:"status"`
	DocumentPath    string         `json:"document_path"`
	TaskFilePath    string         `json:"task_file_path,omitempty"`
	InitialMetric   *float64       `json:"initial_metric,omitempty"`
	FinalMetric     *float64       `json:"final_metric,omitempty"`
	Delta           *float64       `json:"delta,omitempty"`
	Iterations      int            `json:"iterations"`
	FilesModified   []string       `json:"files_modified,omitempty"`
	RemainingIssues []string       `json:"remaining_issues,omitempty"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// Succeeded reports whether the run ended in a completed state.
func (r *Report) Succeeded() bool {
	return r.Status == WorkflowStatusCompleted
}
