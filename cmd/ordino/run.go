package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	pkgcmd "github.com/ordinoproj/ordino/pkg/cmd"
	"github.com/ordinoproj/ordino/pkg/engine"
	"github.com/ordinoproj/ordino/pkg/eventbus"
	"github.com/ordinoproj/ordino/pkg/log"
	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/taskfile"
	"github.com/ordinoproj/ordino/pkg/workers"
	"github.com/ordinoproj/ordino/pkg/workflows"
)

const serviceName = "ordino"

// runtime bundles everything one workflow run needs. Watch mode keeps
// a single runtime alive across firings.
type runtime struct {
	logger    *slog.Logger
	store     persistence.Persistence
	transport protocol.WorkerTransport
	eventBus  eventbus.EventBus
	engine    *engine.Engine
}

func newRuntime(ctx context.Context, command *cli.Command, module string) (*runtime, error) {
	logger := log.WithModule(module)

	store, err := pkgcmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, err
	}

	transport, err := pkgcmd.NewTransport(ctx, command.String("workers-url"), logger)
	if err != nil {
		if closeErr := store.Close(ctx); closeErr != nil {
			logger.ErrorContext(ctx, "Failed to close run store", "error", closeErr)
		}

		return nil, err
	}

	eventBus := pkgcmd.NewEventBus(command.String("event-bus"), logger)

	taskFiles := taskfile.NewFileStore(command.String("task-dir"))
	confirmer := newConfirmer(command.Bool("yes"))
	reg := pkgcmd.NewRegistry(logger, command.String("plugins-path"), taskFiles, confirmer)
	tracer := pkgcmd.NewTracer(ctx, serviceName, logger)

	client := workers.NewClient(reg, transport, eventBus, tracer, logger, command.Duration("timeout"))

	return &runtime{
		logger:    logger,
		store:     store,
		transport: transport,
		eventBus:  eventBus,
		engine:    engine.NewEngine(reg, client, eventBus, tracer, logger),
	}, nil
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.eventBus.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
	}

	if err := r.transport.Close(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close worker transport", "error", err)
	}

	if err := r.store.Close(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close run store", "error", err)
	}
}

func runWorkflow(ctx context.Context, command *cli.Command, kind models.WorkflowKind) error {
	log.Setup(command.String("log-level"))

	rt, err := newRuntime(ctx, command, string(kind))
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	workflow, err := buildWorkflow(command, kind)
	if err != nil {
		return err
	}

	return rt.execute(ctx, workflow)
}

func buildWorkflow(command *cli.Command, kind models.WorkflowKind) (*models.Workflow, error) {
	stage, err := models.ParseStage(command.String("stage"))
	if err != nil {
		return nil, err
	}

	opts := workflows.Options{
		DocumentPath:  command.Args().First(),
		DocsDir:       command.String("docs-dir"),
		Stage:         stage,
		MaxIterations: command.Int("max-iterations"),
	}

	if kind == models.WorkflowKindTestAddition {
		return workflows.NewTestAddition(opts), nil
	}

	return workflows.NewDesignReview(opts), nil
}

// execute runs one workflow, recording the run before and after so
// history shows it even when the process dies mid-run.
func (r *runtime) execute(ctx context.Context, workflow *models.Workflow) error {
	run := &models.RunRecord{
		ID:           uuid.New().String(),
		WorkflowID:   workflow.ID,
		Kind:         workflow.Kind,
		Stage:        workflow.Stage,
		Status:       models.WorkflowStatusRunning,
		DocumentPath: workflow.DocumentPath,
		StartedAt:    time.Now().UTC(),
	}

	if err := r.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}

	result, runErr := r.engine.Run(ctx, workflow)

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Report = result

	if result != nil {
		run.Status = result.Status
		run.DocumentPath = result.DocumentPath
		run.TaskFilePath = result.TaskFilePath
	} else {
		run.Status = models.WorkflowStatusFailed
	}

	if runErr != nil {
		run.Error = runErr.Error()
	}

	if err := r.store.SaveRun(ctx, run); err != nil {
		r.logger.ErrorContext(ctx, "Failed to record run outcome", "error", err)
	}

	if result != nil {
		fmt.Print(renderReport(result, run.ID))
	}

	if runErr != nil {
		return fmt.Errorf("run %s failed: %w", run.ID, runErr)
	}

	return nil
}
