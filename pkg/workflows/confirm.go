package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
)

// ConfirmFixesFactory creates ConfirmFixes actions.
type ConfirmFixesFactory struct {
	confirmer protocol.Confirmer
}

func NewConfirmFixesFactory(confirmer protocol.Confirmer) *ConfirmFixesFactory {
	return &ConfirmFixesFactory{confirmer: confirmer}
}

// ID returns the unique identifier for the action.
func (f *ConfirmFixesFactory) ID() string {
	return ActionConfirmFixes
}

// Description returns a brief description of the action.
func (f *ConfirmFixesFactory) Description() string {
	return "Asks the operator whether automated fixes should be attempted."
}

// Schema returns the JSON schema for configuring this action.
func (f *ConfirmFixesFactory) Schema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

// Create creates a new ConfirmFixes action from the given configuration.
func (f *ConfirmFixesFactory) Create(_ map[string]any) (protocol.Action, error) {
	if f.confirmer == nil {
		return nil, errors.New("confirm-fixes requires a confirmer")
	}

	return &ConfirmFixes{confirmer: f.confirmer}, nil
}

// ConfirmFixes puts the fix offer to the operator. The answer lands in
// the run context for the branch that follows; declining is a routine
// outcome that ends the run aborted with a full report, not an error.
type ConfirmFixes struct {
	confirmer protocol.Confirmer
}

func (a *ConfirmFixes) Execute(ctx context.Context, workflow *models.Workflow, _ *models.Step, logger *slog.Logger) (any, error) {
	bag := workflow.Bag()

	fixable := bag.Strings(models.KeyFixableItems)
	manual := bag.Strings(models.KeyManualItems)
	rate, _ := bag.Float64(models.KeyComplianceRate)

	question := fmt.Sprintf("Compliance is at %.1f%% with %d fixable item(s)", rate, len(fixable))
	if len(manual) > 0 {
		question += fmt.Sprintf(" and %d needing manual action", len(manual))
	}

	question += ". Apply automated fixes?"

	confirmed, err := a.confirmer(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("fix confirmation failed: %w", err)
	}

	bag.SetValue(models.KeyFixesConfirmed, confirmed)
	logger.Info("Operator decision recorded", "confirmed", confirmed)

	return map[string]any{"confirmed": confirmed}, nil
}
