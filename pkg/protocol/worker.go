package protocol

import (
	"context"

	"github.com/ordinoproj/ordino/pkg/models"
)

// WorkerTransport carries one delegation request to a worker and
// returns the raw outputs it produced. Transports block until the
// worker answers or the context expires; they never retry.
type WorkerTransport interface {
	Send(ctx context.Context, request *models.DelegationRequest) (map[string]any, error)
	Close(ctx context.Context) error
}

// Confirmer asks the operator a yes/no question. A false answer is a
// routine branch outcome, not an error.
type Confirmer func(ctx context.Context, question string) (bool, error)
