package workflows

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/registry"
	"github.com/ordinoproj/ordino/pkg/taskfile"
)

// RecordFixesFactory creates RecordFixes actions.
type RecordFixesFactory struct {
	taskFiles taskfile.Store
}

func NewRecordFixesFactory(taskFiles taskfile.Store) *RecordFixesFactory {
	return &RecordFixesFactory{taskFiles: taskFiles}
}

// ID returns the unique identifier for the action.
func (f *RecordFixesFactory) ID() string {
	return ActionRecordFixes
}

// Description returns a brief description of the action.
func (f *RecordFixesFactory) Description() string {
	return "Records fixer results: files touched, checklist progress and target-file growth."
}

// Schema returns the JSON schema for configuring this action.
func (f *RecordFixesFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{
				"type":        "string",
				"description": "UID of the batched delegate step whose outputs are recorded.",
			},
			"batch_size": map[string]any{
				"type":        "integer",
				"description": "Batch size the delegate was configured with, so chunks line up.",
			},
		},
		"required": []string{"source"},
	}
}

// Create creates a new RecordFixes action from the given configuration.
func (f *RecordFixesFactory) Create(config map[string]any) (protocol.Action, error) {
	source, _ := config[ConfigSource].(string)
	if source == "" {
		return nil, errors.New("record-fixes requires a source step")
	}

	batchSize := registry.MaxFixBatchSize

	switch size := config[models.ConfigBatchSize].(type) {
	case int:
		if size > 0 && size < batchSize {
			batchSize = size
		}
	case float64:
		if size > 0 && int(size) < batchSize {
			batchSize = int(size)
		}
	}

	return &RecordFixes{taskFiles: f.taskFiles, source: source, batchSize: batchSize}, nil
}

// RecordFixes walks the per-batch fixer results. Files modified
// accumulate in the run context and onto the task file's target list,
// and every checklist task in a fully successful batch is checked off.
// Batches mirror the fix delegate's chunking, so batch i covers the
// items invocation i was given.
type RecordFixes struct {
	taskFiles taskfile.Store
	source    string
	batchSize int
}

func (a *RecordFixes) Execute(ctx context.Context, workflow *models.Workflow, _ *models.Step, logger *slog.Logger) (any, error) {
	bag := workflow.Bag()

	results, err := batchOutputs(bag, a.source)
	if err != nil {
		return nil, err
	}

	items := bag.Strings(models.KeyFixableItems)
	taskPath := bagString(bag, models.KeyTaskFilePath)

	var (
		touched   []string
		succeeded int
	)

	for i, outputs := range results {
		status := stringOutput(outputs, "status")
		touched = append(touched, stringsOutput(outputs, "filesModified")...)

		if status != WorkerStatusSuccess {
			logger.Warn("Fix batch did not fully succeed", "batch", i+1, "status", status)

			continue
		}

		succeeded++

		if err := a.checkOffBatch(ctx, taskPath, batchItems(items, i, a.batchSize)); err != nil {
			return nil, err
		}
	}

	fresh := appendUnique(bag, models.KeyFilesModified, touched)

	if a.taskFiles != nil && taskPath != "" && len(fresh) > 0 {
		if err := a.taskFiles.AppendTargets(ctx, taskPath, fresh...); err != nil {
			return nil, err
		}
	}

	logger.Info("Recorded fixes",
		"batches", len(results),
		"succeeded", succeeded,
		"files_modified", len(touched))

	return map[string]any{
		"batches":        len(results),
		"succeeded":      succeeded,
		"files_modified": touched,
	}, nil
}

// checkOffBatch marks the checklist tasks matching the batch's items as
// done. Matching is by text because positions shift as re-reviews grow
// the file.
func (a *RecordFixes) checkOffBatch(ctx context.Context, taskPath string, items []string) error {
	if a.taskFiles == nil || taskPath == "" || len(items) == 0 {
		return nil
	}

	file, err := a.taskFiles.Read(ctx, taskPath)
	if err != nil {
		return err
	}

	for _, item := range items {
		for index, task := range file.Tasks {
			if task.Text != item || task.Done {
				continue
			}

			if err := a.taskFiles.MarkTaskDone(ctx, taskPath, index); err != nil {
				return err
			}

			file.Tasks[index].Done = true

			break
		}
	}

	return nil
}

// batchItems returns the i-th batch of items at the given size,
// matching how the delegate split them.
func batchItems(items []string, i, size int) []string {
	start := i * size
	if start >= len(items) {
		return nil
	}

	return items[start:min(start+size, len(items))]
}

// appendUnique grows a list in the run context with the values not
// already present and returns the newly added ones.
func appendUnique(bag *models.RunContext, key string, values []string) []string {
	existing := bag.Strings(key)

	seen := make(map[string]bool, len(existing))
	for _, value := range existing {
		seen[value] = true
	}

	var fresh []string

	for _, value := range values {
		if seen[value] {
			continue
		}

		seen[value] = true

		fresh = append(fresh, value)
	}

	if len(fresh) > 0 {
		bag.SetValue(key, append(existing, fresh...))
	}

	return fresh
}
