package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
)

// Mock action for testing
type mockAction struct {
	config map[string]any
}

func (m *mockAction) Execute(_ context.Context, _ *models.Workflow, _ *models.Step, _ *slog.Logger) (any, error) {
	return "success", nil
}

type mockActionFactory struct{}

func (f *mockActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return &mockAction{config: config}, nil
}

func (f *mockActionFactory) ID() string {
	return "mock-action"
}

func (f *mockActionFactory) Description() string {
	return "Does nothing, loudly"
}

func (f *mockActionFactory) Schema() map[string]any {
	return map[string]any{"type": "object"}
}

func TestRegistry_CreateAction(t *testing.T) {
	r := NewRegistry(slog.Default())
	r.RegisterAction(&mockActionFactory{})

	action, err := r.CreateAction("mock-action", map[string]any{"key": "value"})
	require.NoError(t, err)
	require.NotNil(t, action)

	result, err := action.Execute(context.Background(), nil, nil, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "success", result)
}

func TestRegistry_CreateAction_Unregistered(t *testing.T) {
	r := NewRegistry(slog.Default())

	_, err := r.CreateAction("missing-action", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_BuiltinWorkers(t *testing.T) {
	r := NewRegistry(slog.Default())
	RegisterBuiltinWorkers(r)

	assert.Equal(t, []string{
		WorkerCodeFixer,
		WorkerDesignReviewer,
		WorkerQualityChecker,
		WorkerTestImplementer,
		WorkerTestReviewer,
		WorkerTestSkeletonGenerator,
	}, r.AvailableWorkers())

	reviewer, err := r.Worker(WorkerDesignReviewer)
	require.NoError(t, err)
	require.NotNil(t, reviewer.OutputSchema)

	required, ok := reviewer.OutputSchema["required"].([]string)
	require.True(t, ok)
	assert.Contains(t, required, "complianceRate")

	_, err = r.Worker("unknown-worker")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_FixerSchemaCapsBatch(t *testing.T) {
	r := NewRegistry(slog.Default())
	RegisterBuiltinWorkers(r)

	fixer, err := r.Worker(WorkerCodeFixer)
	require.NoError(t, err)

	properties, ok := fixer.OutputSchema["properties"].(map[string]any)
	require.True(t, ok)

	filesModified, ok := properties["filesModified"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, MaxFixBatchSize, filesModified["maxItems"])
}
