package taskfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
)

func sampleTaskFile() *models.TaskFile {
	return &models.TaskFile{
		Name:        "fix payments design doc",
		Type:        "design-review",
		Objective:   "raise compliance above the stage threshold",
		TargetFiles: []string{"docs/payments.md"},
		Tasks: []models.TaskItem{
			{Text: "add failure modes section"},
			{Text: "document retry policy"},
		},
		AcceptanceCriteria: []string{"re-review passes the compliance gate"},
	}
}

func TestFileStore_CreateAndRead_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	relPath, err := store.Create(ctx, sampleTaskFile())
	require.NoError(t, err)

	expectedDir := fmt.Sprintf("design-review-%s", time.Now().UTC().Format("2006-01-02"))
	assert.Equal(t, filepath.Join(expectedDir, "task-01.md"), relPath)

	got, err := store.Read(ctx, relPath)
	require.NoError(t, err)
	assert.Equal(t, sampleTaskFile(), got)
}

func TestFileStore_Create_SequencesWithinDay(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	first, err := store.Create(ctx, sampleTaskFile())
	require.NoError(t, err)

	second, err := store.Create(ctx, sampleTaskFile())
	require.NoError(t, err)

	assert.Contains(t, first, "task-01.md")
	assert.Contains(t, second, "task-02.md")
	assert.NotEqual(t, first, second)
}

func TestFileStore_CreateAt_NeverOverwrites(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	relPath := "design-review-2026-08-23/task-01.md"

	require.NoError(t, store.CreateAt(ctx, relPath, sampleTaskFile()))

	err := store.CreateAt(ctx, relPath, sampleTaskFile())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskFileExists)
	assert.True(t, IsExists(err))
}

func TestFileStore_Read_NotFound(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Read(context.Background(), "design-review-2026-08-23/task-07.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskFileNotFound)
	assert.True(t, IsNotFound(err))
}

func TestFileStore_Read_Malformed(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)

	relPath := "design-review-2026-08-23/task-01.md"
	absPath := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(absPath), 0750))
	require.NoError(t, os.WriteFile(absPath, []byte("this is not a task file"), 0600))

	_, err := store.Read(context.Background(), relPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskFileParse)
	assert.True(t, IsParse(err))
}

func TestFileStore_MarkTaskDone_Idempotent(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	relPath, err := store.Create(ctx, sampleTaskFile())
	require.NoError(t, err)

	require.NoError(t, store.MarkTaskDone(ctx, relPath, 0))

	afterFirst, err := store.Read(ctx, relPath)
	require.NoError(t, err)

	// Checking the same entry again must not change anything
	require.NoError(t, store.MarkTaskDone(ctx, relPath, 0))

	afterSecond, err := store.Read(ctx, relPath)
	require.NoError(t, err)

	assert.Equal(t, afterFirst, afterSecond)
	assert.True(t, afterSecond.Tasks[0].Done)
	assert.False(t, afterSecond.Tasks[1].Done)
}

func TestFileStore_MarkTaskDone_IndexOutOfRange(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	relPath, err := store.Create(ctx, sampleTaskFile())
	require.NoError(t, err)

	err = store.MarkTaskDone(ctx, relPath, 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskIndexOutOfRange)
}

func TestFileStore_AppendGrowsOnly(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	relPath, err := store.Create(ctx, sampleTaskFile())
	require.NoError(t, err)

	require.NoError(t, store.AppendTasks(ctx, relPath, models.TaskItem{Text: "split oversized fix batch"}))
	require.NoError(t, store.AppendTargets(ctx, relPath, "docs/payments-appendix.md"))

	got, err := store.Read(ctx, relPath)
	require.NoError(t, err)

	assert.Len(t, got.Tasks, 3)
	assert.Equal(t, "split oversized fix batch", got.Tasks[2].Text)
	assert.Equal(t, []string{"docs/payments.md", "docs/payments-appendix.md"}, got.TargetFiles)
}

func TestMemoryStore_BehavesLikeFileStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	relPath, err := store.Create(ctx, sampleTaskFile())
	require.NoError(t, err)
	assert.Contains(t, relPath, "task-01.md")

	err = store.CreateAt(ctx, relPath, sampleTaskFile())
	require.Error(t, err)
	assert.True(t, IsExists(err))

	require.NoError(t, store.MarkTaskDone(ctx, relPath, 1))
	require.NoError(t, store.MarkTaskDone(ctx, relPath, 1))

	got, err := store.Read(ctx, relPath)
	require.NoError(t, err)
	assert.True(t, got.Tasks[1].Done)

	// Mutating the returned copy must not touch the stored file
	got.Tasks[0].Text = "mutated"

	fresh, err := store.Read(ctx, relPath)
	require.NoError(t, err)
	assert.Equal(t, "add failure modes section", fresh.Tasks[0].Text)

	_, err = store.Read(ctx, "missing/task-01.md")
	assert.True(t, IsNotFound(err))
}
