package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
)

func testSchedule(t *testing.T, expression string) *models.Schedule {
	t.Helper()

	sched, err := models.NewSchedule(
		"watch-1",
		models.WorkflowKindDesignReview,
		"docs/design/checkout.md",
		expression,
	)
	require.NoError(t, err)

	return sched
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWatcherRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	sched := testSchedule(t, "*/15 * * * *")
	sched.CronExpression = "every tuesday"

	_, err := NewWatcher(sched, func(context.Context) error { return nil }, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every tuesday")
}

func TestNewWatcherRequiresRunFunc(t *testing.T) {
	t.Parallel()

	_, err := NewWatcher(testSchedule(t, "0 9 * * 1"), nil, discardLogger())
	require.Error(t, err)
}

func TestWatcherFireAdvancesSchedule(t *testing.T) {
	t.Parallel()

	sched := testSchedule(t, "*/5 * * * *")
	before := sched.NextDueAt

	runs := 0
	watcher, err := NewWatcher(sched, func(context.Context) error {
		runs++
		return nil
	}, discardLogger())
	require.NoError(t, err)

	watcher.fire(context.Background())

	assert.Equal(t, 1, runs)
	assert.False(t, sched.NextDueAt.Before(before), "next firing time must not move backwards")
}

func TestWatcherKeepsGoingAfterFailedRun(t *testing.T) {
	t.Parallel()

	runs := 0
	watcher, err := NewWatcher(testSchedule(t, "*/5 * * * *"), func(context.Context) error {
		runs++
		return errors.New("worker timeout")
	}, discardLogger())
	require.NoError(t, err)

	watcher.fire(context.Background())
	watcher.fire(context.Background())

	assert.Equal(t, 2, runs)
}

func TestWatcherStartStop(t *testing.T) {
	t.Parallel()

	// Fires at midnight on January 1st, so never during the test.
	watcher, err := NewWatcher(testSchedule(t, "0 0 1 1 *"), func(context.Context) error {
		t.Error("schedule must not fire during the test window")
		return nil
	}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, watcher.Start(context.Background()))
	watcher.Stop()
}

func TestWatcherStopWithoutStart(t *testing.T) {
	t.Parallel()

	watcher, err := NewWatcher(testSchedule(t, "0 9 * * 1"), func(context.Context) error { return nil }, discardLogger())
	require.NoError(t, err)

	watcher.Stop()
}
