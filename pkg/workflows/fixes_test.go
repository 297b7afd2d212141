package workflows_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/taskfile"
	"github.com/ordinoproj/ordino/pkg/workflows"
)

func recordFixesAction(t *testing.T, store taskfile.Store, config map[string]any) func(*models.Workflow) (any, error) {
	t.Helper()

	action, err := workflows.NewRecordFixesFactory(store).Create(config)
	require.NoError(t, err)

	return func(workflow *models.Workflow) (any, error) {
		return action.Execute(context.Background(), workflow, nil, discardLogger())
	}
}

func TestRecordFixesMarksTasksPerSuccessfulBatch(t *testing.T) {
	store := taskfile.NewMemoryStore()

	items := make([]string, 7)
	tasks := make([]models.TaskItem, 7)

	for i := range items {
		items[i] = fmt.Sprintf("fix item %d", i+1)
		tasks[i] = models.TaskItem{Text: items[i]}
	}

	path, err := store.Create(context.Background(), &models.TaskFile{
		Name:      "Design review",
		Type:      "design-review",
		Objective: "Resolve review items",
		Tasks:     tasks,
	})
	require.NoError(t, err)

	workflow := workflows.NewDesignReview(workflows.Options{DocumentPath: "docs/design/checkout.md"})
	bag := workflow.Bag()
	bag.SetValue(models.KeyTaskFilePath, path)
	bag.SetValue(models.KeyFixableItems, items)
	bag.SetStepResult("apply-fixes", []any{
		map[string]any{"status": "success", "filesModified": []any{"pkg/a.go", "pkg/b.go"}},
		map[string]any{"status": "partial", "filesModified": []any{"pkg/c.go"}},
	})

	run := recordFixesAction(t, store, map[string]any{workflows.ConfigSource: "apply-fixes"})

	outputs, err := run(workflow)
	require.NoError(t, err)

	summary, ok := outputs.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, summary["batches"])
	assert.Equal(t, 1, summary["succeeded"])

	file, err := store.Read(context.Background(), path)
	require.NoError(t, err)

	// The first batch of five succeeded; the partial second batch
	// leaves its two tasks open for the next loop pass.
	for i, task := range file.Tasks {
		if i < 5 {
			assert.True(t, task.Done, task.Text)
		} else {
			assert.False(t, task.Done, task.Text)
		}
	}

	assert.Equal(t, []string{"pkg/a.go", "pkg/b.go", "pkg/c.go"}, bag.Strings(models.KeyFilesModified),
		"files from partial batches still count as touched")
	assert.Equal(t, []string{"pkg/a.go", "pkg/b.go", "pkg/c.go"}, file.TargetFiles)
}

func TestRecordFixesDeduplicatesTouchedFiles(t *testing.T) {
	store := taskfile.NewMemoryStore()

	path, err := store.Create(context.Background(), &models.TaskFile{
		Name:        "Design review",
		Type:        "design-review",
		Objective:   "Resolve review items",
		TargetFiles: []string{"pkg/a.go"},
		Tasks:       []models.TaskItem{{Text: "fix item"}},
	})
	require.NoError(t, err)

	workflow := workflows.NewDesignReview(workflows.Options{DocumentPath: "docs/design/checkout.md"})
	bag := workflow.Bag()
	bag.SetValue(models.KeyTaskFilePath, path)
	bag.SetValue(models.KeyFixableItems, []string{"fix item"})
	bag.SetValue(models.KeyFilesModified, []string{"pkg/a.go"})
	bag.SetStepResult("apply-fixes", []any{
		map[string]any{"status": "success", "filesModified": []any{"pkg/a.go", "pkg/b.go"}},
	})

	run := recordFixesAction(t, store, map[string]any{workflows.ConfigSource: "apply-fixes"})

	_, err = run(workflow)
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg/a.go", "pkg/b.go"}, bag.Strings(models.KeyFilesModified))

	file, err := store.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/a.go", "pkg/b.go"}, file.TargetFiles)
}

func TestRecordFixesAcceptsUnbatchedResult(t *testing.T) {
	workflow := workflows.NewDesignReview(workflows.Options{DocumentPath: "docs/design/checkout.md"})
	bag := workflow.Bag()
	bag.SetValue(models.KeyFixableItems, []string{"fix item"})
	bag.SetStepResult("apply-fixes", map[string]any{
		"status":        "success",
		"filesModified": []any{"pkg/a.go"},
	})

	run := recordFixesAction(t, nil, map[string]any{workflows.ConfigSource: "apply-fixes"})

	outputs, err := run(workflow)
	require.NoError(t, err)

	summary, ok := outputs.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, summary["batches"])
	assert.Equal(t, []string{"pkg/a.go"}, bag.Strings(models.KeyFilesModified))
}

func TestRecordFixesRequiresSource(t *testing.T) {
	_, err := workflows.NewRecordFixesFactory(nil).Create(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}
