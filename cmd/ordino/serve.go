package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	pkgcmd "github.com/ordinoproj/ordino/pkg/cmd"
	"github.com/ordinoproj/ordino/pkg/log"
	"github.com/ordinoproj/ordino/pkg/registry"
)

func serveAPI(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing Ordino API")

	store, err := pkgcmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.Close(ctx); closeErr != nil {
			logger.ErrorContext(ctx, "Failed to close run store", "error", closeErr)
		}
	}()

	reg := registry.NewRegistry(logger)
	registry.RegisterBuiltinWorkers(reg)

	api := NewAPI(logger, store, reg)

	return api.Start(command.Int("port"))
}
