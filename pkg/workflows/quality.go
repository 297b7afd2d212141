package workflows

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
)

// RecordQualityFactory creates RecordQuality actions.
type RecordQualityFactory struct{}

func NewRecordQualityFactory() *RecordQualityFactory {
	return &RecordQualityFactory{}
}

// ID returns the unique identifier for the action.
func (f *RecordQualityFactory) ID() string {
	return ActionRecordQuality
}

// Description returns a brief description of the action.
func (f *RecordQualityFactory) Description() string {
	return "Records the quality checker's verdict on applied fixes."
}

// Schema returns the JSON schema for configuring this action.
func (f *RecordQualityFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{
				"type":        "string",
				"description": "UID of the quality-check delegate step.",
			},
		},
		"required": []string{"source"},
	}
}

// Create creates a new RecordQuality action from the given configuration.
func (f *RecordQualityFactory) Create(config map[string]any) (protocol.Action, error) {
	source, _ := config[ConfigSource].(string)
	if source == "" {
		return nil, errors.New("record-quality requires a source step")
	}

	return &RecordQuality{source: source}, nil
}

// RecordQuality stores the quality checker's verdict. The verdict is
// advisory: a rejection leaves the checklist open for the re-review to
// score, it does not end the run by itself.
type RecordQuality struct {
	source string
}

func (a *RecordQuality) Execute(_ context.Context, workflow *models.Workflow, _ *models.Step, logger *slog.Logger) (any, error) {
	bag := workflow.Bag()

	outputs, err := stepOutputs(bag, a.source)
	if err != nil {
		return nil, err
	}

	approved := boolOutput(outputs, "approved")
	bag.SetValue(models.KeyQualityApproved, approved)

	if approved {
		logger.Info("Quality checker approved the applied fixes")
	} else {
		logger.Warn("Quality checker rejected the applied fixes")
	}

	return map[string]any{"approved": approved}, nil
}
