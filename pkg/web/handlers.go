// Package web provides the HTTP handlers for the run-history API.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
	"github.com/ordinoproj/ordino/pkg/registry"
)

type APIHandlers struct {
	runs      persistence.Persistence
	validator *validator.Validate
	registry  *registry.Registry
}

func NewAPIHandlers(
	runs persistence.Persistence,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		runs:      runs,
		validator: validator,
		registry:  registry,
	}
}

func (h *APIHandlers) GetRuns(c fiber.Ctx) error {
	req, err := parseListRunsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Limit == 0 {
		req.Limit = persistence.DefaultListLimit
	}

	result, err := h.runs.ListRuns(c.Context(), persistence.ListRunsOptions{
		Kind:   models.WorkflowKind(req.Kind),
		Status: models.WorkflowStatus(req.Status),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{
		"runs":          result.Runs,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
	})
}

// parseListRunsRequest parses the query parameters for listing runs.
func parseListRunsRequest(c fiber.Ctx) (*ListRunsRequest, error) {
	req := &ListRunsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.Kind = c.Query("kind")
	req.Status = c.Query("status")

	return req, nil
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.runs.RunByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) GetRunReport(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.runs.RunByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	if run.Report == nil {
		return notFound(c, "Run has not produced a report yet")
	}

	return c.JSON(run.Report)
}

func (h *APIHandlers) DeleteRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	if err := h.runs.DeleteRun(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeCheck := "ok"
	healthy := true

	if err := h.runs.HealthCheck(c.Context()); err != nil {
		storeCheck = err.Error()
		healthy = false
	}

	workers := h.registry.AvailableWorkers()
	if len(workers) == 0 {
		healthy = false
	}

	status := "healthy"
	message := "Ordino API is healthy"
	httpStatus := http.StatusOK

	if !healthy {
		status = "unhealthy"
		message = "Ordino API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"run_store": storeCheck,
			"workers":   workers,
		},
		"timestamp": time.Now().UTC(),
	})
}
