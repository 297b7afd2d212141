// Package workers invokes external workers over a pluggable transport
// and enforces the response contract registered for each worker type.
// The orchestrator performs no domain work of its own; the only way a
// run touches code or documents is through an invocation made here.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ordinoproj/ordino/pkg/eventbus"
	"github.com/ordinoproj/ordino/pkg/events"
	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/otelhelper"
	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/registry"
)

// DefaultInvokeTimeout bounds a single invocation when no timeout is
// configured. Workers run reviews and fixes, not quick lookups, so the
// default is generous.
const DefaultInvokeTimeout = 5 * time.Minute

// Client hands delegation requests to workers and classifies what
// comes back. One invocation is one transport round trip: no retries,
// no fallback transports.
type Client struct {
	registry  *registry.Registry
	transport protocol.WorkerTransport
	eventBus  eventbus.EventBus
	tracer    trace.Tracer
	logger    *slog.Logger
	timeout   time.Duration
}

func NewClient(
	reg *registry.Registry,
	transport protocol.WorkerTransport,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
	timeout time.Duration,
) *Client {
	if timeout <= 0 {
		timeout = DefaultInvokeTimeout
	}

	return &Client{
		registry:  reg,
		transport: transport,
		eventBus:  bus,
		tracer:    tracer,
		logger:    logger.With("module", "workers"),
		timeout:   timeout,
	}
}

// Invoke sends one delegation request and blocks until the worker
// answers, the timeout expires, or ctx is cancelled. On success the
// result carries the schema-validated outputs. On failure the result
// is still returned, with the outcome classified, alongside the error.
func (c *Client) Invoke(ctx context.Context, workflowID string, request *models.DelegationRequest) (*models.DelegationResult, error) {
	definition, err := c.registry.Worker(request.WorkerType)
	if err != nil {
		return nil, NewWorkerError("Invoke", request.WorkerType, err)
	}

	if request.ID == "" {
		request.ID = uuid.New().String()
	}

	var span trace.Span
	if c.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, c.tracer, "workers.invoke",
			attribute.String(otelhelper.WorkerTypeKey, request.WorkerType),
			attribute.String(otelhelper.RequestIDKey, request.ID),
		)
		defer span.End()
	}

	logger := c.logger.With("worker_type", request.WorkerType, "request_id", request.ID)
	logger.InfoContext(ctx, "Invoking worker", "description", request.Description, "timeout", c.timeout)

	c.publish(ctx, workflowID, events.WorkerInvoked{
		BaseEvent:   events.NewBaseEvent(events.WorkerInvokedEvent, workflowID),
		RequestID:   request.ID,
		WorkerType:  request.WorkerType,
		Description: request.Description,
	})

	invokeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startedAt := time.Now().UTC()
	outputs, sendErr := c.transport.Send(invokeCtx, request)
	completedAt := time.Now().UTC()

	result := &models.DelegationResult{
		RequestID:   request.ID,
		WorkerType:  request.WorkerType,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	}

	var invokeErr error

	switch {
	case sendErr != nil:
		outcome, classified := classify(sendErr)
		result.Outcome = outcome
		result.Message = classified.Error()
		invokeErr = NewWorkerError("Invoke", request.WorkerType, classified)
	default:
		schemaErr := validateOutputs(definition.OutputSchema, outputs)
		if schemaErr != nil {
			result.Outcome = models.DelegationOutcomeProtocolError
			result.Message = schemaErr.Error()
			invokeErr = NewWorkerError("Invoke", request.WorkerType, fmt.Errorf("%w: %v", ErrProtocol, schemaErr))
		} else {
			result.Outcome = models.DelegationOutcomeSuccess
			result.Outputs = outputs
		}
	}

	c.publish(ctx, workflowID, events.WorkerFinished{
		BaseEvent:  events.NewBaseEvent(events.WorkerFinishedEvent, workflowID),
		RequestID:  request.ID,
		WorkerType: request.WorkerType,
		Outcome:    result.Outcome,
		Message:    result.Message,
		DurationMs: result.Duration().Milliseconds(),
	})

	if invokeErr != nil {
		if span != nil {
			otelhelper.SetError(span, invokeErr)
		}

		logger.ErrorContext(ctx, "Worker invocation failed", "outcome", result.Outcome, "error", invokeErr)

		return result, invokeErr
	}

	logger.InfoContext(ctx, "Worker invocation succeeded", "duration_ms", result.Duration().Milliseconds())

	return result, nil
}

// Close releases the underlying transport.
func (c *Client) Close(ctx context.Context) error {
	return c.transport.Close(ctx)
}

// classify maps a transport error onto the delegation outcome taxonomy.
// Anything a transport could not attribute more precisely counts as the
// worker failing to deliver.
func classify(err error) (models.DelegationOutcome, error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.DelegationOutcomeTimeout, fmt.Errorf("%w: %v", ErrWorkerTimeout, err)
	case IsTimeout(err):
		return models.DelegationOutcomeTimeout, err
	case IsProtocol(err):
		return models.DelegationOutcomeProtocolError, err
	case IsWorkerFailure(err):
		return models.DelegationOutcomeWorkerError, err
	default:
		return models.DelegationOutcomeWorkerError, fmt.Errorf("%w: %v", ErrWorkerFailed, err)
	}
}

func validateOutputs(schema, outputs map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(outputs)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var violations []string
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(violations, "; "))
	}

	return nil
}

func (c *Client) publish(ctx context.Context, key string, event eventbus.Event) {
	if c.eventBus == nil {
		return
	}

	err := c.eventBus.Publish(ctx, key, event)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to publish audit event", "event_type", event.GetType(), "error", err)
	}
}
