package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
)

const runColumns = `
	id
  , workflow_id
  , kind
  , stage
  , status
  , document_path
  , task_file_path
  , report
  , error
  , started_at
  , finished_at
`

// RunRepository handles run-record database operations.
type RunRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB, logger *slog.Logger) *RunRepository {
	return &RunRepository{db: db, logger: logger}
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*models.RunRecord, error) {
	var (
		run        models.RunRecord
		reportJSON []byte
		finishedAt sql.NullTime
	)

	err := scanner.Scan(
		&run.ID,
		&run.WorkflowID,
		&run.Kind,
		&run.Stage,
		&run.Status,
		&run.DocumentPath,
		&run.TaskFilePath,
		&reportJSON,
		&run.Error,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(reportJSON) > 0 {
		run.Report = &models.Report{}

		if err := json.Unmarshal(reportJSON, run.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}

// Save upserts a run record, generating an id when the record has none.
func (r *RunRepository) Save(ctx context.Context, run *models.RunRecord) error {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return persistence.NewRunError("SaveRun", "", fmt.Errorf("failed to generate run id: %w", err))
		}

		run.ID = id.String()
	}

	var reportJSON []byte

	if run.Report != nil {
		data, err := json.Marshal(run.Report)
		if err != nil {
			return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to marshal report: %w", err))
		}

		reportJSON = data
	}

	query := `
		INSERT INTO runs (id, workflow_id, kind, stage,
status, document_path, task_file_path, report, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			task_file_path = EXCLUDED.task_file_path,
			report = EXCLUDED.report,
			error = EXCLUDED.error,
			finished_at = EXCLUDED.finished_at
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.WorkflowID,
		run.Kind,
		run.Stage,
		run.Status,
		run.DocumentPath,
		run.TaskFilePath,
		reportJSON,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	return nil
}

// GetByID retrieves a run record by its id.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.RunRecord, error) {
	query := `SELECT` + runColumns + `FROM runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("RunByID", id, err)
	}

	return run, nil
}

// List returns one page of run history, newest first.
func (r *RunRepository) List(ctx context.Context, opts persistence.ListRunsOptions) (*persistence.RunListResult, error) {
	if opts.Limit <= 0 || opts.Limit > persistence.MaxListLimit {
		opts.Limit = persistence.DefaultListLimit
	}

	where := ""
	args := []any{}

	if opts.Kind != "" {
		args = append(args, opts.Kind)
		where = appendCondition(where, "kind = $"+strconv.Itoa(len(args)))
	}

	if opts.Status != "" {
		args = append(args, opts.Status)
		where = appendCondition(where, "status = $"+strconv.Itoa(len(args)))
	}

	var total int64

	countQuery := "SELECT COUNT(*) FROM runs" + where

	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, persistence.NewRunError("ListRuns", "", fmt.Errorf("failed to count runs: %w", err))
	}

	args = append(args, opts.Limit, opts.Offset)
	query := "SELECT" + runColumns + "FROM runs" + where +
		" ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewRunError("ListRuns", "", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	runs := make([]*models.RunRecord, 0)

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, persistence.NewRunError("ListRuns", "", fmt.Errorf("failed to scan run: %w", err))
		}

		runs = append(runs, run)
	}

	err = rows.Err()
	if err != nil {
		return nil, persistence.NewRunError("ListRuns", "", fmt.Errorf("error iterating runs: %w", err))
	}

	return &persistence.RunListResult{
		Runs:        runs,
		TotalCount:  total,
		HasNextPage: int64(opts.Offset+len(runs)) < total,
	}, nil
}

func appendCondition(where, condition string) string {
	if where == "" {
		return " WHERE " + condition
	}

	return where + " AND " + condition
}

// Delete removes a run record.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE id = $1", id)
	if err != nil {
		return persistence.NewRunError("DeleteRun", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRunError("DeleteRun", id, fmt.Errorf("failed to get rows affected: %w", err))
	}

	if affected == 0 {
		return persistence.NewRunError("DeleteRun", id, persistence.ErrRunNotFound)
	}

	return nil
}
