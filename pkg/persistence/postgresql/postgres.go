// Package postgresql provides the PostgreSQL run store.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
	"github.com/ordinoproj/ordino/pkg/persistence/sqlbase"
)

// Store implements persistence.Persistence on PostgreSQL.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	runs   *RunRepository
}

// NewStore connects, migrates the schema and returns a ready store.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		db:     database,
		logger: logger,
		runs:   NewRunRepository(database, logger),
	}, nil
}

// SaveRun saves a run record to the database.
func (s *Store) SaveRun(ctx context.Context, run *models.RunRecord) error {
	return s.runs.Save(ctx, run)
}

// RunByID returns a run record by its id.
func (s *Store) RunByID(ctx context.Context, id string) (*models.RunRecord, error) {
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns one page of run history, newest first.
func (s *Store) ListRuns(ctx context.Context, opts persistence.ListRunsOptions) (*persistence.RunListResult, error) {
	return s.runs.List(ctx, opts)
}

// DeleteRun removes a run record.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	return s.runs.Delete(ctx, id)
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
