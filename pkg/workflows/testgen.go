package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/taskfile"
)

// Metric values the binary test verdict maps onto, so the standard
// gate can drive the revision loop.
const (
	approvedMetric = 100
	revisionMetric = 0
)

// RecordSkeletonsFactory creates RecordSkeletons actions.
type RecordSkeletonsFactory struct{}

func NewRecordSkeletonsFactory() *RecordSkeletonsFactory {
	return &RecordSkeletonsFactory{}
}

// ID returns the unique identifier for the action.
func (f *RecordSkeletonsFactory) ID() string {
	return ActionRecordSkeletons
}

// Description returns a brief description of the action.
func (f *RecordSkeletonsFactory) Description() string {
	return "Records generated skeleton files and derives the implementation checklist."
}

// Schema returns the JSON schema for configuring this action.
func (f *RecordSkeletonsFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{
				"type":        "string",
				"description": "UID of the skeleton-generator delegate step.",
			},
		},
		"required": []string{"source"},
	}
}

// Create creates a new RecordSkeletons action from the given configuration.
func (f *RecordSkeletonsFactory) Create(config map[string]any) (protocol.Action, error) {
	source, _ := config[ConfigSource].(string)
	if source == "" {
		return nil, errors.New("record-skeletons requires a source step")
	}

	return &RecordSkeletons{source: source}, nil
}

// RecordSkeletons turns the generator's file list into the run's
// working state: the files become the task file's targets and each one
// gets a checklist entry for the batched implementation step.
type RecordSkeletons struct {
	source string
}

func (a *RecordSkeletons) Execute(_ context.Context, workflow *models.Workflow, _ *models.Step, logger *slog.Logger) (any, error) {
	bag := workflow.Bag()

	outputs, err := stepOutputs(bag, a.source)
	if err != nil {
		return nil, err
	}

	files := stringsOutput(outputs, "generatedFiles")
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s produced no generatedFiles", ErrMissingStepResult, a.source)
	}

	items := make([]string, 0, len(files))
	for _, file := range files {
		items = append(items, "implement tests in "+file)
	}

	bag.SetValue(models.KeyGeneratedFiles, files)
	bag.SetValue(models.KeyTargetFiles, files)
	bag.SetValue(models.KeyFixableItems, items)
	appendUnique(bag, models.KeyFilesModified, files)

	logger.Info("Recorded generated skeletons", "files", len(files))

	return map[string]any{"generated_files": files, "tasks": len(items)}, nil
}

// RecordTestReviewFactory creates RecordTestReview actions.
type RecordTestReviewFactory struct {
	taskFiles taskfile.Store
}

func NewRecordTestReviewFactory(taskFiles taskfile.Store) *RecordTestReviewFactory {
	return &RecordTestReviewFactory{taskFiles: taskFiles}
}

// ID returns the unique identifier for the action.
func (f *RecordTestReviewFactory) ID() string {
	return ActionRecordTestReview
}

// Description returns a brief description of the action.
func (f *RecordTestReviewFactory) Description() string {
	return "Records the test reviewer's verdict on the gate's metric scale."
}

// Schema returns the JSON schema for configuring this action.
func (f *RecordTestReviewFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{
				"type":        "string",
				"description": "UID of the test-reviewer delegate step.",
			},
		},
		"required": []string{"source"},
	}
}

// Create creates a new RecordTestReview action from the given configuration.
func (f *RecordTestReviewFactory) Create(config map[string]any) (protocol.Action, error) {
	source, _ := config[ConfigSource].(string)
	if source == "" {
		return nil, errors.New("record-test-review requires a source step")
	}

	return &RecordTestReview{taskFiles: f.taskFiles, source: source}, nil
}

// RecordTestReview maps the reviewer's binary verdict onto the gate
// metric and requeues the required fixes as the next fixable items,
// appending new ones to the task file so the plan keeps growing.
type RecordTestReview struct {
	taskFiles taskfile.Store
	source    string
}

func (a *RecordTestReview) Execute(ctx context.Context, workflow *models.Workflow, _ *models.Step, logger *slog.Logger) (any, error) {
	bag := workflow.Bag()

	outputs, err := stepOutputs(bag, a.source)
	if err != nil {
		return nil, err
	}

	status := stringOutput(outputs, "status")
	fixes := stringsOutput(outputs, "requiredFixes")

	metric := float64(revisionMetric)
	if status == WorkerStatusApproved {
		metric = approvedMetric
	}

	fixable, manual, hasCritical := classifyItems(fixes)

	bag.SetValue(models.KeyTestReviewStatus, status)
	bag.SetValue(models.KeyRequiredFixes, fixes)
	bag.SetValue(models.KeyComplianceRate, metric)
	bag.SetValue(models.KeyUnfulfilledItems, fixes)
	bag.SetValue(models.KeyFixableItems, fixable)
	bag.SetValue(models.KeyManualItems, manual)
	bag.SetValue(models.KeyHasCriticalUnresolved, hasCritical)

	if err := appendNewTasks(ctx, a.taskFiles, bagString(bag, models.KeyTaskFilePath), fixable); err != nil {
		return nil, err
	}

	logger.Info("Recorded test review", "status", status, "required_fixes", len(fixes))

	return map[string]any{"status": status, "required_fixes": len(fixes)}, nil
}
