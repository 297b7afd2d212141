package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/workers"
)

// NewTransport selects the worker transport from the workers URL
// scheme: redis:// queues delegations through Redis lists, anything
// else is treated as the base URL of an HTTP worker endpoint.
func NewTransport(ctx context.Context, workersURL string, logger *slog.Logger) (protocol.WorkerTransport, error) {
	if strings.HasPrefix(workersURL, "redis://") {
		transport, err := workers.NewRedisTransport(ctx, workersURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect worker transport: %w", err)
		}

		return transport, nil
	}

	return workers.NewHTTPTransport(workersURL, logger), nil
}
