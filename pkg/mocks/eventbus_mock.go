// Package mocks provides test doubles for the orchestrator's
// interfaces. Mock* types are testify mocks; the remaining fakes are
// plain in-memory implementations for tests that care about recorded
// interactions rather than expectations.
package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ordinoproj/ordino/pkg/eventbus"
	"github.com/ordinoproj/ordino/pkg/events"
)

// MockEventBus is a mock implementation of the eventbus.EventBus interface.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	args := m.Called(eventType, handler)

	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}

func (m *MockEventBus) GenerateID() string {
	args := m.Called()

	return args.String(0)
}

// CapturingEventBus records every published event in order. Subscribe
// and Handle are no-ops; tests read the captured stream directly.
type CapturingEventBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func NewCapturingEventBus() *CapturingEventBus {
	return &CapturingEventBus{}
}

func (b *CapturingEventBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)

	return nil
}

func (b *CapturingEventBus) Handle(_ events.EventType, _ eventbus.EventHandler) error {
	return nil
}

func (b *CapturingEventBus) Subscribe(_ context.Context) error {
	return nil
}

func (b *CapturingEventBus) Close() error {
	return nil
}

func (b *CapturingEventBus) GenerateID() string {
	return uuid.New().String()
}

// Events returns the captured events in publication order.
func (b *CapturingEventBus) Events() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	captured := make([]eventbus.Event, len(b.events))
	copy(captured, b.events)

	return captured
}

// EventTypes returns just the type of each captured event, in order.
func (b *CapturingEventBus) EventTypes() []events.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := make([]events.EventType, 0, len(b.events))
	for _, event := range b.events {
		types = append(types, event.GetType())
	}

	return types
}
