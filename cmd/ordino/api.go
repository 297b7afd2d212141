// Package main provides the ordino command-line interface.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/ordinoproj/ordino/pkg/persistence"
	"github.com/ordinoproj/ordino/pkg/registry"
	"github.com/ordinoproj/ordino/pkg/web"
)

type API struct {
	logger   *slog.Logger
	runs     persistence.Persistence
	registry *registry.Registry
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	runs persistence.Persistence,
	registry *registry.Registry,
) *API {
	return &API{
		logger:   logger,
		runs:     runs,
		registry: registry,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.runs, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Ordino API")
	})

	runs := app.Group("/api/runs")
	runs.Get("/", handlers.GetRuns)
	runs.Get("/:id", handlers.GetRun)
	runs.Get("/:id/report", handlers.GetRunReport)
	runs.Delete("/:id", handlers.DeleteRun)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
