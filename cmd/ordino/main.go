package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	cli "github.com/urfave/cli/v3"

	"github.com/ordinoproj/ordino/pkg/models"
)

func main() {
	cmd := &cli.Command{
		Name:                  "ordino",
		Usage:                 "Run gated review workflows over design documents",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			{
				Name:      "review",
				Aliases:   []string{"r"},
				Usage:     "Review a document and fix what the gate rejects",
				ArgsUsage: "[document-path]",
				Flags:     runFlags(),
				Action: func(ctx context.Context, command *cli.Command) error {
					return runWorkflow(ctx, command, models.WorkflowKindDesignReview)
				},
			},
			{
				Name:      "testgen",
				Aliases:   []string{"t"},
				Usage:     "Generate and implement tests for a document",
				ArgsUsage: "[document-path]",
				Flags:     runFlags(),
				Action: func(ctx context.Context, command *cli.Command) error {
					return runWorkflow(ctx, command, models.WorkflowKindTestAddition)
				},
			},
			{
				Name:  "runs",
				Usage: "Inspect run history",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List recorded runs, newest first",
						Flags:  append(storeFlags(), listFlags()...),
						Action: listRuns,
					},
					{
						Name:      "show",
						Usage:     "Show one run and its report",
						ArgsUsage: "<run-id>",
						Flags:     storeFlags(),
						Action:    showRun,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the run-history API",
				Flags:  serveFlags(),
				Action: serveAPI,
			},
			{
				Name:      "watch",
				Usage:     "Re-run the review workflow on a cron schedule",
				ArgsUsage: "<document-path>",
				Flags:     append(runFlags(), watchFlags()...),
				Action:    watchDocument,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
