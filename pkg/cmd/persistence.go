package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ordinoproj/ordino/pkg/persistence"
	"github.com/ordinoproj/ordino/pkg/persistence/file"
	"github.com/ordinoproj/ordino/pkg/persistence/postgresql"

	_ "github.com/lib/pq"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql"}

// NewPersistence selects the run-history backend from the database URL
// scheme. Anything that is not postgres falls back to the file store,
// so a plain directory path works as a URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		store, err := postgresql.NewStore(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres run store: %w", err)
		}

		return store, nil
	default:
		return file.NewStore(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
