package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
)

// ResolveDocumentFactory creates ResolveDocument actions.
type ResolveDocumentFactory struct{}

func NewResolveDocumentFactory() *ResolveDocumentFactory {
	return &ResolveDocumentFactory{}
}

// ID returns the unique identifier for the action.
func (f *ResolveDocumentFactory) ID() string {
	return ActionResolveDocument
}

// Description returns a brief description of the action.
func (f *ResolveDocumentFactory) Description() string {
	return "Resolves the document a run reviews, falling back to the most recently modified document in the docs directory."
}

// Schema returns the JSON schema for configuring this action.
func (f *ResolveDocumentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"docs_dir": map[string]any{
				"type":        "string",
				"description": "Directory scanned when the workflow carries no explicit document path.",
				"default":     DefaultDocsDir,
			},
		},
	}
}

// Create creates a new ResolveDocument action from the given configuration.
func (f *ResolveDocumentFactory) Create(config map[string]any) (protocol.Action, error) {
	docsDir, _ := config[ConfigDocsDir].(string)
	if docsDir == "" {
		docsDir = DefaultDocsDir
	}

	return &ResolveDocument{docsDir: docsDir}, nil
}

// ResolveDocument pins down which document the run works against. An
// explicit workflow path must exist on disk; without one the most
// recently modified non-template markdown file in the docs directory
// is picked. Resolution failure aborts the run before any delegation.
type ResolveDocument struct {
	docsDir string
}

func (a *ResolveDocument) Execute(_ context.Context, workflow *models.Workflow, _ *models.Step, logger *slog.Logger) (any, error) {
	path := workflow.DocumentPath

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
	} else {
		latest, err := latestDocument(a.docsDir)
		if err != nil {
			return nil, err
		}

		path = latest
		workflow.DocumentPath = path
	}

	workflow.Bag().SetValue(models.KeyDocumentPath, path)
	logger.Info("Resolved document", "document_path", path)

	return map[string]any{"document_path": path}, nil
}

// latestDocument returns the most recently modified non-template
// markdown file under dir.
func latestDocument(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: docs directory %s does not exist", ErrDocumentNotFound, dir)
		}

		return "", err
	}

	var (
		latest     string
		latestTime time.Time
	)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") || isTemplateName(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return "", err
		}

		if latest == "" || info.ModTime().After(latestTime) {
			latest = entry.Name()
			latestTime = info.ModTime()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("%w: no reviewable document under %s", ErrDocumentNotFound, dir)
	}

	return filepath.Join(dir, latest), nil
}

// isTemplateName filters the blank documents new designs are copied
// from; those are never review targets.
func isTemplateName(name string) bool {
	lower := strings.ToLower(name)

	return strings.HasPrefix(lower, "_") || strings.Contains(lower, "template")
}
