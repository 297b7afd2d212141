package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ordinoproj/ordino/pkg/models"
)

// MockTransport is a mock implementation of the protocol.WorkerTransport interface.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, request *models.DelegationRequest) (map[string]any, error) {
	args := m.Called(ctx, request)

	outputs, _ := args.Get(0).(map[string]any)

	return outputs, args.Error(1)
}

func (m *MockTransport) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// ScriptedResponse is one canned worker answer.
type ScriptedResponse struct {
	Outputs map[string]any
	Err     error
	Delay   time.Duration // how long the fake worker "works" before answering
}

// ScriptedTransport plays back canned responses in order and records
// every request it carried. Engine tests script the full conversation
// of a run with it.
type ScriptedTransport struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	requests  []*models.DelegationRequest
}

func NewScriptedTransport(responses ...ScriptedResponse) *ScriptedTransport {
	return &ScriptedTransport{responses: responses}
}

// Script appends further responses to the playback queue.
func (t *ScriptedTransport) Script(responses ...ScriptedResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.responses = append(t.responses, responses...)
}

func (t *ScriptedTransport) Send(ctx context.Context, request *models.DelegationRequest) (map[string]any, error) {
	t.mu.Lock()
	t.requests = append(t.requests, request)

	if len(t.responses) == 0 {
		t.mu.Unlock()

		return nil, fmt.Errorf("no scripted response left for worker %s", request.WorkerType)
	}

	next := t.responses[0]
	t.responses = t.responses[1:]
	t.mu.Unlock()

	if next.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(next.Delay):
		}
	}

	if next.Err != nil {
		return nil, next.Err
	}

	return next.Outputs, nil
}

func (t *ScriptedTransport) Close(_ context.Context) error {
	return nil
}

// Requests returns every delegation request carried, in order.
func (t *ScriptedTransport) Requests() []*models.DelegationRequest {
	t.mu.Lock()
	defer t.mu.Unlock()

	carried := make([]*models.DelegationRequest, len(t.requests))
	copy(carried, t.requests)

	return carried
}

// RequestTypes returns the worker type of each carried request, in order.
func (t *ScriptedTransport) RequestTypes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	types := make([]string, 0, len(t.requests))
	for _, request := range t.requests {
		types = append(types, request.WorkerType)
	}

	return types
}
