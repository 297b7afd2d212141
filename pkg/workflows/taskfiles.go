package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ordinoproj/ordino/pkg/gate"
	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/taskfile"
	"github.com/ordinoproj/ordino/pkg/template"
)

// CreateTaskFileFactory creates CreateTaskFile actions.
type CreateTaskFileFactory struct {
	taskFiles taskfile.Store
}

func NewCreateTaskFileFactory(taskFiles taskfile.Store) *CreateTaskFileFactory {
	return &CreateTaskFileFactory{taskFiles: taskFiles}
}

// ID returns the unique identifier for the action.
func (f *CreateTaskFileFactory) ID() string {
	return ActionCreateTaskFile
}

// Description returns a brief description of the action.
func (f *CreateTaskFileFactory) Description() string {
	return "Writes the durable task file a fix or implementation phase works from."
}

// Schema returns the JSON schema for configuring this action.
func (f *CreateTaskFileFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"objective": map[string]any{
				"type":        "string",
				"description": "Objective template rendered against the run context.",
			},
		},
	}
}

// Create creates a new CreateTaskFile action from the given configuration.
func (f *CreateTaskFileFactory) Create(config map[string]any) (protocol.Action, error) {
	if f.taskFiles == nil {
		return nil, errors.New("create-task-file requires a task-file store")
	}

	objective, _ := config[ConfigObjective].(string)

	return &CreateTaskFile{taskFiles: f.taskFiles, objective: objective}, nil
}

// CreateTaskFile renders the work plan for the current fixable items
// and persists it at the next free task-file path. The path lands in
// the run context for every later step that hands workers the plan.
type CreateTaskFile struct {
	taskFiles taskfile.Store
	objective string
}

func (a *CreateTaskFile) Execute(ctx context.Context, workflow *models.Workflow, _ *models.Step, logger *slog.Logger) (any, error) {
	bag := workflow.Bag()

	objective := a.objective
	if objective != "" {
		rendered, err := template.RenderStringWithContext(objective, bag)
		if err != nil {
			return nil, fmt.Errorf("failed to render objective: %w", err)
		}

		objective = rendered
	}

	if objective == "" {
		objective = "Resolve the open review items for " + bagString(bag, models.KeyDocumentPath)
	}

	fixable := bag.Strings(models.KeyFixableItems)

	tasks := make([]models.TaskItem, 0, len(fixable))
	for _, item := range fixable {
		tasks = append(tasks, models.TaskItem{Text: item})
	}

	file := &models.TaskFile{
		Name:               workflow.Name,
		Type:               string(workflow.Kind),
		Objective:          objective,
		TargetFiles:        bag.Strings(models.KeyTargetFiles),
		Tasks:              tasks,
		AcceptanceCriteria: acceptanceCriteria(workflow),
	}

	path, err := a.taskFiles.Create(ctx, file)
	if err != nil {
		return nil, err
	}

	bag.SetValue(models.KeyTaskFilePath, path)
	logger.Info("Created task file", "task_file_path", path, "tasks", len(tasks))

	return map[string]any{"task_file_path": path, "tasks": len(tasks)}, nil
}

// acceptanceCriteria states when the plan counts as finished, in terms
// the closing review can check.
func acceptanceCriteria(workflow *models.Workflow) []string {
	criteria := []string{"Every checklist task is checked off"}

	switch workflow.Kind {
	case models.WorkflowKindTestAddition:
		criteria = append(criteria, "The test reviewer approves the implemented tests")
	default:
		criteria = append(criteria, fmt.Sprintf("Compliance rate reaches %.0f%% for the %s stage",
			gate.Threshold(workflow.Stage), workflow.Stage))
	}

	return criteria
}

// appendNewTasks grows an existing task file with checklist entries it
// does not hold yet. Task files only ever grow while a run owns them.
func appendNewTasks(ctx context.Context, store taskfile.Store, taskPath string, items []string) error {
	if store == nil || taskPath == "" || len(items) == 0 {
		return nil
	}

	file, err := store.Read(ctx, taskPath)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(file.Tasks))
	for _, task := range file.Tasks {
		known[task.Text] = true
	}

	var fresh []models.TaskItem

	for _, item := range items {
		if known[item] {
			continue
		}

		fresh = append(fresh, models.TaskItem{Text: item})
	}

	if len(fresh) == 0 {
		return nil
	}

	return store.AppendTasks(ctx, taskPath, fresh...)
}
