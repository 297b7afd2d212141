package main

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"

	pkgcmd "github.com/ordinoproj/ordino/pkg/cmd"
	"github.com/ordinoproj/ordino/pkg/log"
	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
)

func listRuns(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("runs")

	store, err := pkgcmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.Close(ctx); closeErr != nil {
			logger.ErrorContext(ctx, "Failed to close run store", "error", closeErr)
		}
	}()

	result, err := store.ListRuns(ctx, persistence.ListRunsOptions{
		Kind:   models.WorkflowKind(command.String("kind")),
		Status: models.WorkflowStatus(command.String("status")),
		Limit:  command.Int("limit"),
		Offset: command.Int("offset"),
	})
	if err != nil {
		return err
	}

	fmt.Print(renderRunList(result))

	return nil
}

func showRun(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("runs")

	id := command.Args().First()
	if id == "" {
		return errors.New("run id is required")
	}

	store, err := pkgcmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.Close(ctx); closeErr != nil {
			logger.ErrorContext(ctx, "Failed to close run store", "error", closeErr)
		}
	}()

	run, err := store.RunByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Print(renderRun(run))

	return nil
}
