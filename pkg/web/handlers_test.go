package web_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
	"github.com/ordinoproj/ordino/pkg/persistence/file"
	"github.com/ordinoproj/ordino/pkg/registry"
	"github.com/ordinoproj/ordino/pkg/web"
)

func setupTestApp(t *testing.T) (*fiber.App, persistence.Persistence) {
	t.Helper()

	store := file.NewStore(t.TempDir())
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := registry.NewRegistry(logger)
	registry.RegisterBuiltinWorkers(reg)

	handlers := web.NewAPIHandlers(store, validate, reg)

	app := fiber.New()
	app.Get("/health", handlers.HealthCheck)

	runs := app.Group("/api/runs")
	runs.Get("/", handlers.GetRuns)
	runs.Get("/:id", handlers.GetRun)
	runs.Get("/:id/report", handlers.GetRunReport)
	runs.Delete("/:id", handlers.DeleteRun)

	return app, store
}

func seedRun(
	t *testing.T,
	store persistence.Persistence,
	id string,
	status models.WorkflowStatus,
	startedAt time.Time,
) *models.RunRecord {
	t.Helper()

	run := &models.RunRecord{
		ID:           id,
		WorkflowID:   "wf-" + id,
		Kind:         models.WorkflowKindDesignReview,
		Stage:        models.StagePrototype,
		Status:       status,
		DocumentPath: "docs/design/checkout.md",
		StartedAt:    startedAt,
	}

	if status == models.WorkflowStatusCompleted {
		initial, final := 65.0, 95.0
		delta := final - initial
		finished := startedAt.Add(time.Minute)

		run.TaskFilePath = "design-review-2026-08-23/task-01.md"
		run.Report = &models.Report{
			WorkflowID:    run.WorkflowID,
			Kind:          run.Kind,
			Stage:         run.Stage,
			Status:        status,
			DocumentPath:  run.DocumentPath,
			TaskFilePath:  run.TaskFilePath,
			InitialMetric: &initial,
			FinalMetric:   &final,
			Delta:         &delta,
			Iterations:    1,
			FilesModified: []string{"internal/checkout/checkout.go"},
			GeneratedAt:   finished,
		}
		run.FinishedAt = &finished
	}

	require.NoError(t, store.SaveRun(context.Background(), run))

	return run
}

func TestAPIHandlers_GetRuns(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name:           "lists newest first with pagination metadata",
			url:            "/api/runs?limit=2",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result struct {
					Runs        []models.RunRecord `json:"runs"`
					TotalCount  int64              `json:"total_count"`
					HasNextPage bool               `json:"has_next_page"`
					Pagination  struct {
						Limit  int `json:"limit"`
						Offset int `json:"offset"`
					} `json:"pagination"`
				}
				require.NoError(t, json.Unmarshal(body, &result))

				require.Len(t, result.Runs, 2)
				assert.Equal(t, "run-3", result.Runs[0].ID)
				assert.Equal(t, "run-2", result.Runs[1].ID)
				assert.Equal(t, int64(3), result.TotalCount)
				assert.True(t, result.HasNextPage)
				assert.Equal(t, 2, result.Pagination.Limit)
				assert.Equal(t, 0, result.Pagination.Offset)
			},
		},
		{
			name:           "filters by status",
			url:            "/api/runs?status=failed",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result struct {
					Runs       []models.RunRecord `json:"runs"`
					TotalCount int64              `json:"total_count"`
				}
				require.NoError(t, json.Unmarshal(body, &result))

				require.Len(t, result.Runs, 1)
				assert.Equal(t, "run-2", result.Runs[0].ID)
				assert.Equal(t, int64(1), result.TotalCount)
			},
		},
		{
			name:           "defaults the limit",
			url:            "/api/runs",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result struct {
					Runs       []models.RunRecord `json:"runs"`
					Pagination struct {
						Limit int `json:"limit"`
					} `json:"pagination"`
				}
				require.NoError(t, json.Unmarshal(body, &result))

				assert.Len(t, result.Runs, 3)
				assert.Equal(t, persistence.DefaultListLimit, result.Pagination.Limit)
			},
		},
		{
			name:           "rejects a non-numeric limit",
			url:            "/api/runs?limit=many",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects an unknown kind",
			url:            "/api/runs?kind=code-review",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects an oversized limit",
			url:            "/api/runs?limit=500",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, store := setupTestApp(t)
			seedRun(t, store, "run-1", models.WorkflowStatusCompleted, base)
			seedRun(t, store, "run-2", models.WorkflowStatusFailed, base.Add(time.Hour))
			seedRun(t, store, "run-3", models.WorkflowStatusCompleted, base.Add(2*time.Hour))

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateResult != nil {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.validateResult(t, body)
			}
		})
	}
}

func TestAPIHandlers_GetRun(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	seeded := seedRun(t, store, "run-1", models.WorkflowStatusCompleted, time.Now().UTC())

	req := httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run models.RunRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, seeded.ID, run.ID)
	assert.Equal(t, seeded.WorkflowID, run.WorkflowID)
	assert.Equal(t, models.WorkflowStatusCompleted, run.Status)
	require.NotNil(t, run.Report)
	assert.InDelta(t, 30.0, *run.Report.Delta, 0.001)
}

func TestAPIHandlers_GetRunNotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var problem struct {
		Type   string `json:"type"`
		Status int    `json:"status"`
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "run_not_found", problem.Type)
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, "Run not found", problem.Detail)
}

func TestAPIHandlers_GetRunReport(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	seedRun(t, store, "run-1", models.WorkflowStatusCompleted, time.Now().UTC())
	seedRun(t, store, "run-2", models.WorkflowStatusRunning, time.Now().UTC())

	t.Run("returns the report alone", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/runs/run-1/report", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)

		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var report models.Report
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, models.WorkflowKindDesignReview, report.Kind)
		require.NotNil(t, report.InitialMetric)
		assert.InDelta(t, 65.0, *report.InitialMetric, 0.001)
		assert.Equal(t, 1, report.Iterations)
	})

	t.Run("missing report is not found", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/runs/run-2/report", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)

		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAPIHandlers_DeleteRun(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	seedRun(t, store, "run-1", models.WorkflowStatusCompleted, time.Now().UTC())

	req := httptest.NewRequest(http.MethodDelete, "/api/runs/run-1", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/api/runs/run-1", nil)

	resp, err = app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Checkers struct {
			RunStore string   `json:"run_store"`
			Workers  []string `json:"workers"`
		} `json:"checkers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checkers.RunStore)
	assert.Contains(t, health.Checkers.Workers, registry.WorkerDesignReviewer)
}
