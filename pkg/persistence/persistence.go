// Package persistence stores run history. Every run that reaches a
// terminal state leaves a record with its report, so the runs CLI and
// the HTTP API can answer for runs long after the process that executed
// them is gone.
package persistence

import (
	"context"

	"github.com/ordinoproj/ordino/pkg/models"
)

// List pagination bounds.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListRunsOptions filters and pages run listings. Zero values mean no
// filter; listings always come back newest first.
type ListRunsOptions struct {
	Kind   models.WorkflowKind
	Status models.WorkflowStatus
	Limit  int
	Offset int
}

// RunListResult is one page of run history.
type RunListResult struct {
	Runs        []*models.RunRecord
	TotalCount  int64
	HasNextPage bool
}

// Persistence is the run-history boundary. Implementations are picked
// by URL scheme: file:// keeps one JSON document per run, postgres://
// keeps runs in a table with the report as JSONB.
type Persistence interface {
	SaveRun(ctx context.Context, run *models.RunRecord) error
	RunByID(ctx context.Context, id string) (*models.RunRecord, error)
	ListRuns(ctx context.Context, opts ListRunsOptions) (*RunListResult, error)
	DeleteRun(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
