// Package schedule re-runs review workflows on a cron cadence for
// watch mode.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/ordinoproj/ordino/pkg/models"
)

// RunFunc executes one workflow run when the schedule fires.
type RunFunc func(ctx context.Context) error

// Watcher fires a workflow run whenever its schedule's cron
// expression matches. A failed run is logged and the watch keeps
// going; overlapping firings are skipped while a run is in flight.
type Watcher struct {
	schedule *models.Schedule
	run      RunFunc
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewWatcher(sched *models.Schedule, run RunFunc, logger *slog.Logger) (*Watcher, error) {
	if run == nil {
		return nil, errors.New("watcher requires a run function")
	}

	if err := sched.Validate(); err != nil {
		return nil, fmt.Errorf("invalid watch schedule: %w", err)
	}

	if _, err := cron.ParseStandard(sched.CronExpression); err != nil {
		return nil, fmt.Errorf("invalid cron expression '%s': %w", sched.CronExpression, err)
	}

	return &Watcher{
		schedule: sched,
		run:      run,
		logger:   logger.With("module", "watcher", "schedule_id", sched.ID),
	}, nil
}

func (w *Watcher) Start(ctx context.Context) error {
	w.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := w.cron.AddFunc(w.schedule.CronExpression, func() {
		w.fire(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job for %s: %w", w.schedule.DocumentPath, err)
	}

	w.cron.Start()
	w.logger.Info("Watch started",
		"document", w.schedule.DocumentPath,
		"cron", w.schedule.CronExpression,
		"next_due_at", w.schedule.NextDueAt)

	return nil
}

func (w *Watcher) fire(ctx context.Context) {
	logger := w.logger.With("document", w.schedule.DocumentPath)
	logger.Info("Schedule fired, starting run")

	if err := w.run(ctx); err != nil {
		logger.Error("Scheduled run failed", "error", err)
	}

	if err := w.schedule.UpdateNextDueAt(); err != nil {
		logger.Error("Failed to compute next firing time", "error", err)
		return
	}

	logger.Info("Run finished", "next_due_at", w.schedule.NextDueAt)
}

// Stop halts the scheduler and waits for any in-flight run to finish.
func (w *Watcher) Stop() {
	if w.cron == nil {
		return
	}

	<-w.cron.Stop().Done()
	w.logger.Info("Watch stopped")
}
