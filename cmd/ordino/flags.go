package main

import (
	cli "github.com/urfave/cli/v3"

	"github.com/ordinoproj/ordino/pkg/workers"
	"github.com/ordinoproj/ordino/pkg/workflows"
)

const defaultPort = 9091

// runFlags covers the review, testgen and watch commands.
func runFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "stage",
			Aliases: []string{"s"},
			Usage:   "Gate stage the document must pass (prototype, production)",
			Value:   "prototype",
			Sources: cli.EnvVars("STAGE"),
		},
		&cli.IntFlag{
			Name:    "max-iterations",
			Usage:   "Fix cycles allowed before the loop budget fails the run",
			Value:   workflows.DefaultMaxIterations,
			Sources: cli.EnvVars("MAX_ITERATIONS"),
		},
		&cli.StringFlag{
			Name:    "docs-dir",
			Usage:   "Directory searched when no document path is given",
			Value:   workflows.DefaultDocsDir,
			Sources: cli.EnvVars("DOCS_DIR"),
		},
		&cli.StringFlag{
			Name:    "task-dir",
			Usage:   "Root directory for task checklist files",
			Value:   "tasks",
			Sources: cli.EnvVars("TASK_DIR"),
		},
		&cli.StringFlag{
			Name:    "workers-url",
			Usage:   "Worker endpoint: http(s) base URL or redis:// queue",
			Value:   "http://localhost:9090",
			Sources: cli.EnvVars("WORKERS_URL"),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Per-delegation worker timeout",
			Value:   workers.DefaultInvokeTimeout,
			Sources: cli.EnvVars("WORKER_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Audit event channel (gochannel, kafka)",
			Value:   "gochannel",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "plugins-path",
			Usage:   "Path to the directory containing action plugins",
			Value:   "",
			Sources: cli.EnvVars("PLUGINS_PATH"),
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Accept fix offers without prompting",
			Sources: cli.EnvVars("ASSUME_YES"),
		},
	}, storeFlags()...)
}

// storeFlags covers every command that touches run history.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Run history location: a directory path or postgres:// URL",
			Value:   ".ordino",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}
}

func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "kind",
			Usage:   "Filter by workflow kind (design-review, test-addition)",
			Sources: cli.EnvVars("RUN_KIND"),
		},
		&cli.StringFlag{
			Name:    "status",
			Usage:   "Filter by run status (pending, running, completed, failed, aborted)",
			Sources: cli.EnvVars("RUN_STATUS"),
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of runs to print",
			Value: 20,
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Number of runs to skip",
			Value: 0,
		},
	}
}

func serveFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to run the API server on",
			Value:   defaultPort,
			Sources: cli.EnvVars("PORT"),
		},
	}, storeFlags()...)
}

func watchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "cron",
			Usage:    "Standard 5-field cron expression for firing the review",
			Required: true,
			Sources:  cli.EnvVars("WATCH_CRON"),
		},
	}
}
