package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/taskfile"
)

// Markers reviewers attach to unfulfilled items. critical: flags
// severity and forces the gate to fail; manual: flags an item that
// needs a human decision and keeps it out of automated fix lists. The
// two are orthogonal; an item carrying both reads `critical: manual:`.
const (
	CriticalMarker = "critical:"
	ManualMarker   = "manual:"
)

// RecordReviewFactory creates RecordReview actions.
type RecordReviewFactory struct {
	taskFiles taskfile.Store
}

func NewRecordReviewFactory(taskFiles taskfile.Store) *RecordReviewFactory {
	return &RecordReviewFactory{taskFiles: taskFiles}
}

// ID returns the unique identifier for the action.
func (f *RecordReviewFactory) ID() string {
	return ActionRecordReview
}

// Description returns a brief description of the action.
func (f *RecordReviewFactory) Description() string {
	return "Records a reviewer verdict in the run context and classifies the unfulfilled items."
}

// Schema returns the JSON schema for configuring this action.
func (f *RecordReviewFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode": map[string]any{
				"type":        "string",
				"enum":        []string{ReviewModeInitial, ReviewModeFinal},
				"default":     ReviewModeInitial,
				"description": "Whether the verdict is the first review of the run or a post-fix re-review.",
			},
			"source": map[string]any{
				"type":        "string",
				"description": "UID of the delegate step whose outputs are recorded.",
			},
		},
		"required": []string{"source"},
	}
}

// Create creates a new RecordReview action from the given configuration.
func (f *RecordReviewFactory) Create(config map[string]any) (protocol.Action, error) {
	source, _ := config[ConfigSource].(string)
	if source == "" {
		return nil, errors.New("record-review requires a source step")
	}

	mode, _ := config[ConfigMode].(string)
	if mode == "" {
		mode = ReviewModeInitial
	}

	return &RecordReview{taskFiles: f.taskFiles, source: source, mode: mode}, nil
}

// RecordReview moves a reviewer's outputs into the run context: the
// compliance metric under the key the gates read, the unfulfilled
// items verbatim, and the fixable/manual split the fix steps and the
// report rely on. In final mode newly surfaced fixable items are also
// appended to the run's task file so the work plan grows instead of
// silently dropping findings.
type RecordReview struct {
	taskFiles taskfile.Store
	source    string
	mode      string
}

func (a *RecordReview) Execute(ctx context.Context, workflow *models.Workflow, _ *models.Step, logger *slog.Logger) (any, error) {
	bag := workflow.Bag()

	outputs, err := stepOutputs(bag, a.source)
	if err != nil {
		return nil, err
	}

	rate, ok := floatOutput(outputs, "complianceRate")
	if !ok {
		return nil, fmt.Errorf("%w: %s produced no complianceRate", ErrMissingStepResult, a.source)
	}

	items := stringsOutput(outputs, "unfulfilledItems")
	fixable, manual, hasCritical := classifyItems(items)

	bag.SetValue(models.KeyComplianceRate, rate)
	bag.SetValue(models.KeyUnfulfilledItems, items)
	bag.SetValue(models.KeyFixableItems, fixable)
	bag.SetValue(models.KeyManualItems, manual)
	bag.SetValue(models.KeyHasCriticalUnresolved, hasCritical)

	switch a.mode {
	case ReviewModeFinal:
		bag.SetValue(models.KeyFinalComplianceRate, rate)

		// A re-review can surface fixable items the original plan does
		// not cover; they join the checklist instead of getting lost.
		if err := appendNewTasks(ctx, a.taskFiles, bagString(bag, models.KeyTaskFilePath), fixable); err != nil {
			return nil, err
		}
	default:
		bag.SetValue(models.KeyInitialComplianceRate, rate)
	}

	logger.Info("Recorded review",
		"mode", a.mode,
		"compliance_rate", rate,
		"fixable", len(fixable),
		"manual", len(manual),
		"has_critical", hasCritical)

	return map[string]any{
		"compliance_rate": rate,
		"fixable_items":   len(fixable),
		"manual_items":    len(manual),
		"has_critical":    hasCritical,
	}, nil
}

// classifyItems splits unfulfilled review items by their markers. Item
// text stays verbatim in every list; the markers are part of what the
// operator reads.
func classifyItems(items []string) (fixable, manual []string, hasCritical bool) {
	for _, item := range items {
		trimmed := strings.TrimSpace(item)

		rest, isCritical := strings.CutPrefix(trimmed, CriticalMarker)
		if isCritical {
			hasCritical = true
		}

		if strings.HasPrefix(strings.TrimSpace(rest), ManualMarker) {
			manual = append(manual, item)

			continue
		}

		fixable = append(fixable, item)
	}

	return fixable, manual, hasCritical
}
