// Package file provides the file-backed run store. Each run is one
// JSON document under <root>/runs/<id>.json.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
)

// Store implements persistence.Persistence on the local file system.
type Store struct {
	root string
}

// NewStore creates a file store rooted at the given directory. A
// file:// prefix on the root is accepted and stripped.
func NewStore(root string) *Store {
	return &Store{root: strings.TrimPrefix(root, "file://")}
}

func (s *Store) runsDir() string {
	return path.Join(s.root, "runs")
}

func (s *Store) runPath(id string) string {
	return filepath.Clean(path.Join(s.runsDir(), id+".json"))
}

// SaveRun writes the record, overwriting any previous version of the
// same run.
func (s *Store) SaveRun(_ context.Context, run *models.RunRecord) error {
	if run.ID == "" {
		return persistence.NewRunError("SaveRun", "", persistence.ErrInvalidRun)
	}

	if err := os.MkdirAll(s.runsDir(), 0750); err != nil {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to create runs directory: %w", err))
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to marshal run: %w", err))
	}

	if err := os.WriteFile(s.runPath(run.ID), data, 0600); err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	return nil
}

// RunByID loads one run record.
func (s *Store) RunByID(_ context.Context, id string) (*models.RunRecord, error) {
	body, err := os.ReadFile(s.runPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("RunByID", id, err)
	}

	var run models.RunRecord

	if err := json.Unmarshal(body, &run); err != nil {
		return nil, persistence.NewRunError("RunByID", id, fmt.Errorf("failed to unmarshal run: %w", err))
	}

	return &run, nil
}

// ListRuns loads every record and filters and pages in memory. Run
// history stays small enough that a scan per listing is fine.
func (s *Store) ListRuns(ctx context.Context, opts persistence.ListRunsOptions) (*persistence.RunListResult, error) {
	if opts.Limit <= 0 || opts.Limit > persistence.MaxListLimit {
		opts.Limit = persistence.DefaultListLimit
	}

	// Glob ignores a missing runs directory; an empty store lists empty.
	names, err := fs.Glob(os.DirFS(s.runsDir()), "*.json")
	if err != nil {
		return nil, persistence.NewRunError("ListRuns", "", err)
	}

	all := make([]*models.RunRecord, 0, len(names))

	for _, name := range names {
		run, err := s.RunByID(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}

		if opts.Kind != "" && run.Kind != opts.Kind {
			continue
		}

		if opts.Status != "" && run.Status != opts.Status {
			continue
		}

		all = append(all, run)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].StartedAt.After(all[j].StartedAt)
	})

	total := int64(len(all))

	start := opts.Offset
	if start >= len(all) {
		return &persistence.RunListResult{Runs: []*models.RunRecord{}, TotalCount: total}, nil
	}

	end := min(start+opts.Limit, len(all))

	return &persistence.RunListResult{
		Runs:        all[start:end],
		TotalCount:  total,
		HasNextPage: end < len(all),
	}, nil
}

// DeleteRun removes a run record.
func (s *Store) DeleteRun(_ context.Context, id string) error {
	err := os.Remove(s.runPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewRunError("DeleteRun", id, persistence.ErrRunNotFound)
		}

		return persistence.NewRunError("DeleteRun", id, err)
	}

	return nil
}

// HealthCheck verifies the root directory exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return persistence.NewRunError("HealthCheck", "", err)
	}

	return nil
}

// Close is a no-op for the file store.
func (s *Store) Close(_ context.Context) error {
	return nil
}
