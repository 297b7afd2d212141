// Package protocol defines the contracts between the engine and the
// pluggable pieces around it: local actions, worker transports and the
// operator confirmation hook.
package protocol

import (
	"context"
	"log/slog"

	"github.com/ordinoproj/ordino/pkg/models"
)

// Action is a local step side effect executed in-process. Actions read
// and write the run context bag; they never talk to workers directly.
type Action interface {
	Execute(ctx context.Context, workflow *models.Workflow, step *models.Step, logger *slog.Logger) (any, error)
}

// ActionFactory creates action instances and describes the action type.
type ActionFactory interface {
	// Create builds a new action instance from step configuration
	Create(config map[string]any) (Action, error)

	// ID returns the unique identifier for this action type
	ID() string

	// Description returns a description of what this action does
	Description() string

	// Schema returns the JSON schema for configuring this action
	Schema() map[string]any
}
