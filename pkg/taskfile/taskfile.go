// Package taskfile persists the durable work plans runs write before
// fix work starts. Task files survive the process; a run that dies can
// be resumed from the checklist on disk.
package taskfile

import (
	"context"

	"github.com/ordinoproj/ordino/pkg/models"
)

// Store is the task-file boundary the engine and the fix steps work
// against. Paths are store-relative (`<category>-<date>/task-NN.md`).
// Stores never overwrite: Create of an occupied path fails with
// ErrTaskFileExists, and while a run owns a path the file only grows.
type Store interface {
	// Create writes a new task file at the next free sequence path for
	// the file's category and today's date, returning that path.
	Create(ctx context.Context, file *models.TaskFile) (string, error)

	// Read loads and parses the task file at the given path.
	Read(ctx context.Context, path string) (*models.TaskFile, error)

	// MarkTaskDone checks off one checklist entry. Checking an entry
	// that is already done is a no-op, not an error.
	MarkTaskDone(ctx context.Context, path string, taskIndex int) error

	// AppendTasks grows the checklist of an existing task file.
	AppendTasks(ctx context.Context, path string, items ...models.TaskItem) error

	// AppendTargets grows the target file list of an existing task file.
	AppendTargets(ctx context.Context, path string, files ...string) error
}
