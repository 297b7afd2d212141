package workflows_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/taskfile"
	"github.com/ordinoproj/ordino/pkg/workflows"
)

func TestRecordReviewClassifiesMarkers(t *testing.T) {
	items := []string{
		"critical: payment flow unspecified",
		"manual: decide hosting region",
		"  critical: manual: escalate to security  ",
		"missing error handling",
	}

	workflow := workflows.NewDesignReview(workflows.Options{DocumentPath: "docs/design/checkout.md"})
	bag := workflow.Bag()
	bag.SetStepResult("initial-review", map[string]any{
		"complianceRate":   40.0,
		"unfulfilledItems": items,
	})

	action, err := workflows.NewRecordReviewFactory(nil).Create(map[string]any{
		workflows.ConfigSource: "initial-review",
	})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), workflow, nil, discardLogger())
	require.NoError(t, err)

	rate, ok := bag.Float64(models.KeyComplianceRate)
	require.True(t, ok)
	assert.InDelta(t, 40.0, rate, 0.001)

	initial, ok := bag.Float64(models.KeyInitialComplianceRate)
	require.True(t, ok)
	assert.InDelta(t, 40.0, initial, 0.001)

	_, hasFinal := bag.Value(models.KeyFinalComplianceRate)
	assert.False(t, hasFinal)

	assert.Equal(t, items, bag.Strings(models.KeyUnfulfilledItems), "items stay verbatim")
	assert.Equal(t, []string{items[0], items[3]}, bag.Strings(models.KeyFixableItems),
		"a critical item without a manual marker is still fixable")
	assert.Equal(t, []string{items[1], items[2]}, bag.Strings(models.KeyManualItems))
	assert.True(t, bag.Bool(models.KeyHasCriticalUnresolved))
}

func TestRecordReviewClearsCriticalFlagWhenResolved(t *testing.T) {
	workflow := workflows.NewDesignReview(workflows.Options{DocumentPath: "docs/design/checkout.md"})
	bag := workflow.Bag()
	bag.SetValue(models.KeyHasCriticalUnresolved, true)
	bag.SetStepResult("re-review", map[string]any{
		"complianceRate":   88.0,
		"unfulfilledItems": []string{"manual: align with billing roadmap"},
	})

	action, err := workflows.NewRecordReviewFactory(nil).Create(map[string]any{
		workflows.ConfigSource: "re-review",
		workflows.ConfigMode:   workflows.ReviewModeFinal,
	})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), workflow, nil, discardLogger())
	require.NoError(t, err)

	assert.False(t, bag.Bool(models.KeyHasCriticalUnresolved))

	final, ok := bag.Float64(models.KeyFinalComplianceRate)
	require.True(t, ok)
	assert.InDelta(t, 88.0, final, 0.001)
}

func TestRecordReviewRequiresComplianceRate(t *testing.T) {
	workflow := workflows.NewDesignReview(workflows.Options{DocumentPath: "docs/design/checkout.md"})
	workflow.Bag().SetStepResult("initial-review", map[string]any{
		"unfulfilledItems": []string{"a"},
	})

	action, err := workflows.NewRecordReviewFactory(nil).Create(map[string]any{
		workflows.ConfigSource: "initial-review",
	})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), workflow, nil, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complianceRate")
}

func TestRecordReviewFinalModeGrowsTaskFile(t *testing.T) {
	store := taskfile.NewMemoryStore()

	path, err := store.Create(context.Background(), &models.TaskFile{
		Name:      "Design review",
		Type:      "design-review",
		Objective: "Resolve review items",
		Tasks:     []models.TaskItem{{Text: "known item", Done: true}},
	})
	require.NoError(t, err)

	workflow := workflows.NewDesignReview(workflows.Options{DocumentPath: "docs/design/checkout.md"})
	bag := workflow.Bag()
	bag.SetValue(models.KeyTaskFilePath, path)
	bag.SetStepResult("re-review", map[string]any{
		"complianceRate":   60.0,
		"unfulfilledItems": []string{"known item", "newly surfaced item", "manual: needs a decision"},
	})

	action, err := workflows.NewRecordReviewFactory(store).Create(map[string]any{
		workflows.ConfigSource: "re-review",
		workflows.ConfigMode:   workflows.ReviewModeFinal,
	})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), workflow, nil, discardLogger())
	require.NoError(t, err)

	file, err := store.Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, file.Tasks, 2, "only unknown fixable items join the checklist")
	assert.Equal(t, "newly surfaced item", file.Tasks[1].Text)
	assert.False(t, file.Tasks[1].Done)
}
