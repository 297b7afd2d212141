package file_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
	"github.com/ordinoproj/ordino/pkg/persistence/file"
)

func sampleRun(id string, startedAt time.Time) *models.RunRecord {
	initial := 65.0
	final := 95.0
	delta := 30.0
	finished := startedAt.Add(2 * time.Minute)

	return &models.RunRecord{
		ID:           id,
		WorkflowID:   "wf-" + id,
		Kind:         models.WorkflowKindDesignReview,
		Stage:        models.StagePrototype,
		Status:       models.WorkflowStatusCompleted,
		DocumentPath: "docs/design/checkout.md",
		TaskFilePath: "design-review-2026-08-23/task-01.md",
		Report: &models.Report{
			WorkflowID:    "wf-" + id,
			Kind:          models.WorkflowKindDesignReview,
			Stage:         models.StagePrototype,
			Status:        models.WorkflowStatusCompleted,
			InitialMetric: &initial,
			FinalMetric:   &final,
			Delta:         &delta,
			Iterations:    1,
		},
		StartedAt:  startedAt,
		FinishedAt: &finished,
	}
}

func TestSaveAndLoadRunRoundTrip(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	run := sampleRun("run-1", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, store.SaveRun(ctx, run))

	loaded, err := store.RunByID(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, run.WorkflowID, loaded.WorkflowID)
	assert.Equal(t, run.Status, loaded.Status)
	assert.Equal(t, run.TaskFilePath, loaded.TaskFilePath)
	require.NotNil(t, loaded.Report)
	require.NotNil(t, loaded.Report.Delta)
	assert.InDelta(t, 30.0, *loaded.Report.Delta, 0.001)
	require.NotNil(t, loaded.FinishedAt)
	assert.True(t, run.FinishedAt.Equal(*loaded.FinishedAt))
}

func TestSaveRunOverwritesPreviousVersion(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	run := sampleRun("run-1", time.Now().UTC())
	run.Status = models.WorkflowStatusRunning
	require.NoError(t, store.SaveRun(ctx, run))

	run.Status = models.WorkflowStatusCompleted
	require.NoError(t, store.SaveRun(ctx, run))

	loaded, err := store.RunByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusCompleted, loaded.Status)
}

func TestSaveRunRejectsMissingID(t *testing.T) {
	store := file.NewStore(t.TempDir())

	err := store.SaveRun(context.Background(), &models.RunRecord{})
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrInvalidRun)
}

func TestRunByIDMissing(t *testing.T) {
	store := file.NewStore(t.TempDir())

	_, err := store.RunByID(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, persistence.IsRunNotFound(err))
}

func TestListRunsNewestFirstWithPaging(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := range 5 {
		run := sampleRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.SaveRun(ctx, run))
	}

	page, err := store.ListRuns(ctx, persistence.ListRunsOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.True(t, page.HasNextPage)
	require.Len(t, page.Runs, 2)
	assert.Equal(t, "run-4", page.Runs[0].ID)
	assert.Equal(t, "run-3", page.Runs[1].ID)

	last, err := store.ListRuns(ctx, persistence.ListRunsOptions{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.False(t, last.HasNextPage)
	require.Len(t, last.Runs, 1)
	assert.Equal(t, "run-0", last.Runs[0].ID)
}

func TestListRunsFilters(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()
	base := time.Now().UTC()

	review := sampleRun("review-run", base)
	require.NoError(t, store.SaveRun(ctx, review))

	failed := sampleRun("failed-run", base.Add(time.Minute))
	failed.Kind = models.WorkflowKindTestAddition
	failed.Status = models.WorkflowStatusFailed
	require.NoError(t, store.SaveRun(ctx, failed))

	byKind, err := store.ListRuns(ctx, persistence.ListRunsOptions{Kind: models.WorkflowKindTestAddition})
	require.NoError(t, err)
	require.Len(t, byKind.Runs, 1)
	assert.Equal(t, "failed-run", byKind.Runs[0].ID)

	byStatus, err := store.ListRuns(ctx, persistence.ListRunsOptions{Status: models.WorkflowStatusCompleted})
	require.NoError(t, err)
	require.Len(t, byStatus.Runs, 1)
	assert.Equal(t, "review-run", byStatus.Runs[0].ID)
}

func TestListRunsEmptyStore(t *testing.T) {
	store := file.NewStore(t.TempDir())

	page, err := store.ListRuns(context.Background(), persistence.ListRunsOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Runs)
	assert.Zero(t, page.TotalCount)
	assert.False(t, page.HasNextPage)
}

func TestDeleteRun(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, sampleRun("run-1", time.Now().UTC())))
	require.NoError(t, store.DeleteRun(ctx, "run-1"))

	_, err := store.RunByID(ctx, "run-1")
	assert.True(t, persistence.IsRunNotFound(err))

	err = store.DeleteRun(ctx, "run-1")
	assert.True(t, persistence.IsRunNotFound(err))
}

func TestHealthCheck(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, file.NewStore(dir).HealthCheck(context.Background()))

	missing := file.NewStore(dir + "/absent")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
