package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/ordinoproj/ordino/pkg/log"
	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/schedule"
)

func watchDocument(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("watch")

	document := command.Args().First()
	if document == "" {
		return errors.New("watch requires a document path")
	}

	sched, err := models.NewSchedule(
		uuid.New().String(),
		models.WorkflowKindDesignReview,
		document,
		command.String("cron"),
	)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, command, "watch")
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	watcher, err := schedule.NewWatcher(sched, func(runCtx context.Context) error {
		workflow, buildErr := buildWorkflow(command, models.WorkflowKindDesignReview)
		if buildErr != nil {
			return buildErr
		}

		return rt.execute(runCtx, workflow)
	}, logger)
	if err != nil {
		return err
	}

	if err := watcher.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.InfoContext(ctx, "Shutting down watch...")
	watcher.Stop()

	return nil
}
