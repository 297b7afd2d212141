// Package engine advances a workflow strictly one step at a time:
// actions run in process, delegations cross the worker boundary, gates
// decide whether to jump forward or loop back, and the terminal step
// turns the accumulated run context into a report. All control flow is
// expressed through step status mutation; the engine itself knows
// nothing about reviews, fixes or any other domain vocabulary.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ordinoproj/ordino/pkg/eventbus"
	"github.com/ordinoproj/ordino/pkg/events"
	"github.com/ordinoproj/ordino/pkg/gate"
	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/otelhelper"
	"github.com/ordinoproj/ordino/pkg/registry"
	"github.com/ordinoproj/ordino/pkg/report"
	"github.com/ordinoproj/ordino/pkg/template"
	"github.com/ordinoproj/ordino/pkg/workers"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Engine executes workflows sequentially. One engine instance is safe
// to reuse across runs; each Run call owns the workflow it is given.
type Engine struct {
	registry *registry.Registry
	client   *workers.Client
	eventBus eventbus.EventBus
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewEngine(
	reg *registry.Registry,
	client *workers.Client,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		registry: reg,
		client:   client,
		eventBus: eventBus,
		tracer:   tracer,
		logger:   logger.With("module", "engine"),
	}
}

// Run executes the workflow until its terminal step finishes or a step
// fails. The first delegation failure stops the run; there is no retry
// at this level. A report is returned alongside the error whenever the
// run got far enough to start, so a failed run still tells the caller
// what state the document was left in.
func (e *Engine) Run(ctx context.Context, workflow *models.Workflow) (*models.Report, error) {
	if err := validate.Struct(workflow); err != nil {
		return nil, NewRunError("Run", workflow.ID, fmt.Errorf("%w: %v", ErrInvalidWorkflow, err))
	}

	logger := e.logger.With(
		"workflow_id", workflow.ID,
		"kind", string(workflow.Kind),
		"stage", string(workflow.Stage),
	)

	var span trace.Span

	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "engine.run", trace.WithAttributes(
			attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
			attribute.String(otelhelper.WorkflowNameKey, workflow.Name),
			attribute.String(otelhelper.StageKey, string(workflow.Stage)),
			attribute.String(otelhelper.DocumentPathKey, workflow.DocumentPath),
		))
		defer span.End()
	}

	started := time.Now()
	workflow.Status = models.WorkflowStatusRunning
	workflow.StartedAt = &started

	logger.InfoContext(ctx, "Starting run",
		"steps", len(workflow.Steps),
		"max_iterations", workflow.MaxIterations)

	e.publish(ctx, workflow.ID, events.RunStarted{
		BaseEvent:    events.NewBaseEvent(events.RunStartedEvent, workflow.ID),
		Kind:         workflow.Kind,
		Stage:        workflow.Stage,
		DocumentPath: workflow.DocumentPath,
	})

	finalReport, err := e.advance(ctx, workflow, logger)

	finished := time.Now()
	workflow.FinishedAt = &finished

	if err != nil {
		if IsRunAborted(err) {
			workflow.Status = models.WorkflowStatusAborted
		} else {
			workflow.Status = models.WorkflowStatusFailed
		}

		workflow.Bag().SetValue(models.KeyRunFailure, failureMessage(err))

		if span != nil {
			otelhelper.SetError(span, err)
		}

		logger.ErrorContext(ctx, "Run failed", "status", string(workflow.Status), "error", err)

		e.publish(ctx, workflow.ID, events.RunFailed{
			BaseEvent:  events.NewBaseEvent(events.RunFailedEvent, workflow.ID),
			FailedStep: FailedStepUID(err),
			Error:      err.Error(),
			DurationMs: finished.Sub(started).Milliseconds(),
		})

		return report.Build(workflow), err
	}

	logger.InfoContext(ctx, "Run finished",
		"status", string(workflow.Status),
		"iterations", workflow.Bag().Iterations,
		"duration", finished.Sub(started))

	e.publish(ctx, workflow.ID, events.RunFinished{
		BaseEvent:  events.NewBaseEvent(events.RunFinishedEvent, workflow.ID),
		Status:     workflow.Status,
		DurationMs: finished.Sub(started).Milliseconds(),
		Report:     finalReport,
	})

	return finalReport, nil
}

// advance drives the step loop. It always picks the earliest pending
// step in document order; gates and branches redirect the run purely
// by flipping statuses, so looping back means resetting a region to
// pending and letting the scan find it again.
func (e *Engine) advance(ctx context.Context, workflow *models.Workflow, logger *slog.Logger) (*models.Report, error) {
	byID := stepsByID(workflow)

	var finalReport *models.Report

	for {
		if err := ctx.Err(); err != nil {
			return nil, NewRunError("Run", workflow.ID, fmt.Errorf("%w: %v", ErrRunAborted, err))
		}

		step := nextPending(workflow)
		if step == nil {
			return nil, NewRunError("Run", workflow.ID,
				errors.New("workflow ran out of steps without reaching a terminal"))
		}

		if !step.Runnable(byID) {
			return nil, NewStepError("Run", workflow.ID, step.UID,
				errors.New("step has unsatisfied dependencies"))
		}

		stepLogger := logger.With("step_uid", step.UID, "step_kind", string(step.Kind))
		stepStarted := time.Now()
		step.Status = models.StepStatusRunning

		e.publish(ctx, workflow.ID, events.StepStarted{
			BaseEvent: events.NewBaseEvent(events.StepStartedEvent, workflow.ID),
			StepUID:   step.UID,
			StepName:  step.Name,
			Kind:      step.Kind,
		})

		stepLogger.InfoContext(ctx, "Executing step")

		var (
			op      string
			stepErr error
		)

		switch step.Kind {
		case models.StepKindAction:
			op = "Action"
			stepErr = e.runAction(ctx, workflow, step, stepLogger)
		case models.StepKindDelegate:
			op = "Delegate"
			stepErr = e.runDelegate(ctx, workflow, step, stepLogger)
		case models.StepKindGate:
			op = "Gate"
			stepErr = e.runGate(ctx, workflow, step, stepLogger)
		case models.StepKindBranch:
			op = "Branch"
			stepErr = e.runBranch(ctx, workflow, step, stepLogger)
		case models.StepKindTerminal:
			op = "Terminal"
			finalReport, stepErr = e.finishTerminal(ctx, workflow, step, stepLogger)
		default:
			op = "Run"
			stepErr = fmt.Errorf("unknown step kind %q", step.Kind)
		}

		if stepErr != nil {
			step.Status = models.StepStatusFailed
			e.publishStepFinished(ctx, workflow.ID, step, stepStarted)

			stepLogger.ErrorContext(ctx, "Step failed", "error", stepErr)

			// A cancelled run context means the operator stopped the
			// run, not that the step itself was at fault.
			if ctx.Err() != nil {
				stepErr = fmt.Errorf("%w: %v", ErrRunAborted, stepErr)
			}

			return nil, NewStepError(op, workflow.ID, step.UID, stepErr)
		}

		// A failed loop gate resets itself to pending along with its
		// region; only a step that is still running actually finished.
		if step.Status == models.StepStatusRunning {
			step.Status = models.StepStatusDone
		}

		if step.Status == models.StepStatusDone {
			e.publishStepFinished(ctx, workflow.ID, step, stepStarted)
		}

		if step.Kind == models.StepKindTerminal {
			return finalReport, nil
		}
	}
}

// runAction resolves the step's action through the registry and
// executes it in process. The step UID rides along in the config so
// actions can report where they ran.
func (e *Engine) runAction(ctx context.Context, workflow *models.Workflow, step *models.Step, logger *slog.Logger) error {
	config := make(map[string]any, len(step.Configuration)+1)
	for key, value := range step.Configuration {
		config[key] = value
	}

	config["id"] = step.UID

	action, err := e.registry.CreateAction(step.Uses, config)
	if err != nil {
		return err
	}

	result, err := action.Execute(ctx, workflow, step, logger)
	if err != nil {
		return err
	}

	if result != nil {
		workflow.Bag().SetStepResult(step.UID, result)
	}

	return nil
}

// runDelegate renders the request from the run context and hands it to
// the worker client. With a batch_key configured the referenced list is
// split into bounded chunks, one invocation each, failing fast on the
// first chunk that does not succeed.
func (e *Engine) runDelegate(ctx context.Context, workflow *models.Workflow, step *models.Step, logger *slog.Logger) error {
	bag := workflow.Bag()

	description, err := template.RenderStringWithContext(step.ConfigString(models.ConfigDescription), bag)
	if err != nil {
		return fmt.Errorf("failed to render description: %w", err)
	}

	if description == "" {
		description = step.Name
	}

	prompt, err := template.RenderStringWithContext(step.ConfigString(models.ConfigPrompt), bag)
	if err != nil {
		return fmt.Errorf("failed to render prompt: %w", err)
	}

	inputs, err := renderInputs(step, bag)
	if err != nil {
		return err
	}

	batchKey := step.ConfigString(models.ConfigBatchKey)
	if batchKey == "" {
		result, err := e.client.Invoke(ctx, workflow.ID, &models.DelegationRequest{
			WorkerType:  step.Uses,
			Description: description,
			Prompt:      prompt,
			Inputs:      inputs,
		})
		if err != nil {
			return err
		}

		bag.SetStepResult(step.UID, result.Outputs)

		return nil
	}

	items := bag.Strings(batchKey)
	if len(items) == 0 {
		logger.InfoContext(ctx, "Batch list is empty, nothing to delegate", "batch_key", batchKey)
		bag.SetStepResult(step.UID, []any{})

		return nil
	}

	batchInput := step.ConfigString(models.ConfigBatchInput)
	if batchInput == "" {
		batchInput = "items"
	}

	batchSize := configuredBatchSize(step)
	results := make([]any, 0, (len(items)+batchSize-1)/batchSize)

	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))

		chunkInputs := make(map[string]any, len(inputs)+1)
		for key, value := range inputs {
			chunkInputs[key] = value
		}

		chunkInputs[batchInput] = items[start:end]

		result, err := e.client.Invoke(ctx, workflow.ID, &models.DelegationRequest{
			WorkerType:  step.Uses,
			Description: fmt.Sprintf("%s (%d-%d of %d)", description, start+1, end, len(items)),
			Prompt:      prompt,
			Inputs:      chunkInputs,
		})
		if err != nil {
			return err
		}

		results = append(results, result.Outputs)
	}

	bag.SetStepResult(step.UID, results)

	return nil
}

// runGate evaluates the stage threshold against the configured metric.
// A passing gate jumps to its pass target; a failing gate either loops
// back into its improvement region, falls through when it has no loop
// target, or ends the run when the iteration budget is spent.
func (e *Engine) runGate(ctx context.Context, workflow *models.Workflow, step *models.Step, logger *slog.Logger) error {
	bag := workflow.Bag()

	metricKey := step.ConfigString(models.ConfigMetricKey)
	if metricKey == "" {
		metricKey = models.KeyComplianceRate
	}

	metric, ok := bag.Float64(metricKey)
	if !ok {
		return fmt.Errorf("gate metric %q is not set in the run context", metricKey)
	}

	verdict := gate.Evaluate(metric, workflow.Stage, bag.Bool(models.KeyHasCriticalUnresolved))

	// Every evaluation of a looping gate is one improvement iteration,
	// whichever way the verdict goes.
	loopTarget := step.ConfigString(models.ConfigLoopTarget)
	if loopTarget != "" {
		bag.Iterations++
	}

	e.publish(ctx, workflow.ID, events.GateEvaluated{
		BaseEvent: events.NewBaseEvent(events.GateEvaluatedEvent, workflow.ID),
		StepUID:   step.UID,
		Verdict:   verdict,
		Iteration: bag.Iterations,
	})

	logger.InfoContext(ctx, "Gate evaluated",
		"metric", metric,
		"threshold", verdict.ThresholdUsed,
		"passed", verdict.Passed,
		"iteration", bag.Iterations)

	bag.SetStepResult(step.UID, verdict)

	if verdict.Passed {
		passTarget := step.ConfigString(models.ConfigPassTarget)
		if passTarget == "" {
			return nil
		}

		return e.jumpForward(ctx, workflow, step, passTarget)
	}

	if loopTarget == "" {
		return nil
	}

	if bag.Iterations >= workflow.MaxIterations {
		return fmt.Errorf("%w: gate %s still failing after %d iterations (metric %.1f, threshold %.1f)",
			ErrLoopBudgetExceeded, step.UID, bag.Iterations, metric, verdict.ThresholdUsed)
	}

	return e.resetRegion(ctx, workflow, step, loopTarget, logger)
}

// runBranch routes on a boolean from the run context: true falls
// through to the next step, false jumps to the configured target.
func (e *Engine) runBranch(ctx context.Context, workflow *models.Workflow, step *models.Step, logger *slog.Logger) error {
	conditionKey := step.ConfigString(models.ConfigConditionKey)
	if conditionKey == "" {
		return errors.New("branch step has no condition_key configured")
	}

	bag := workflow.Bag()
	condition := bag.Bool(conditionKey)
	bag.SetStepResult(step.UID, condition)

	logger.InfoContext(ctx, "Branch evaluated", "condition_key", conditionKey, "condition", condition)

	if condition {
		return nil
	}

	falseTarget := step.ConfigString(models.ConfigFalseTarget)
	if falseTarget == "" {
		return errors.New("branch step has no false_target configured")
	}

	return e.jumpForward(ctx, workflow, step, falseTarget)
}

// finishTerminal assembles the report and settles the final status. A
// run whose operator declined the offered fixes ends aborted, not
// completed, even though it reached the terminal step normally.
func (e *Engine) finishTerminal(ctx context.Context, workflow *models.Workflow, step *models.Step, logger *slog.Logger) (*models.Report, error) {
	bag := workflow.Bag()

	declined := false
	if confirmed, ok := bag.Value(models.KeyFixesConfirmed); ok {
		if value, isBool := confirmed.(bool); isBool && !value {
			declined = true
		}
	}

	if declined {
		workflow.Status = models.WorkflowStatusAborted
		logger.InfoContext(ctx, "Run ends aborted, fixes were declined")
	} else {
		workflow.Status = models.WorkflowStatusCompleted
	}

	finalReport := report.Build(workflow)
	bag.SetStepResult(step.UID, finalReport)

	return finalReport, nil
}

// jumpForward skips every pending step between the current one and the
// target, exclusive on both ends. The target must exist and lie ahead.
func (e *Engine) jumpForward(ctx context.Context, workflow *models.Workflow, from *models.Step, targetUID string) error {
	fromIndex := workflow.StepIndex(from.UID)

	targetIndex := workflow.StepIndex(targetUID)
	if targetIndex < 0 {
		return fmt.Errorf("%w: %s", ErrStepNotFound, targetUID)
	}

	if targetIndex <= fromIndex {
		return fmt.Errorf("%w: %s is not ahead of %s", ErrInvalidJump, targetUID, from.UID)
	}

	for _, step := range workflow.Steps[fromIndex+1 : targetIndex] {
		if step.Status != models.StepStatusPending {
			continue
		}

		step.Status = models.StepStatusSkipped

		e.publish(ctx, workflow.ID, events.StepSkipped{
			BaseEvent: events.NewBaseEvent(events.StepSkippedEvent, workflow.ID),
			StepUID:   step.UID,
			Reason:    "jumped over by " + from.UID,
		})
	}

	return nil
}

// resetRegion rewinds the loop region to pending, the gate itself
// included, so the next scan re-enters at the loop target and the gate
// re-evaluates after the region runs again.
func (e *Engine) resetRegion(ctx context.Context, workflow *models.Workflow, gateStep *models.Step, targetUID string, logger *slog.Logger) error {
	gateIndex := workflow.StepIndex(gateStep.UID)

	targetIndex := workflow.StepIndex(targetUID)
	if targetIndex < 0 {
		return fmt.Errorf("%w: %s", ErrStepNotFound, targetUID)
	}

	if targetIndex > gateIndex {
		return fmt.Errorf("%w: loop target %s is ahead of gate %s", ErrInvalidJump, targetUID, gateStep.UID)
	}

	for _, step := range workflow.Steps[targetIndex : gateIndex+1] {
		step.Status = models.StepStatusPending
	}

	logger.InfoContext(ctx, "Looping back for another improvement pass",
		"loop_target", targetUID,
		"iteration", workflow.Bag().Iterations)

	return nil
}

func (e *Engine) publishStepFinished(ctx context.Context, workflowID string, step *models.Step, started time.Time) {
	e.publish(ctx, workflowID, events.StepFinished{
		BaseEvent:  events.NewBaseEvent(events.StepFinishedEvent, workflowID),
		StepUID:    step.UID,
		Status:     step.Status,
		DurationMs: time.Since(started).Milliseconds(),
	})
}

func (e *Engine) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	if err := e.eventBus.Publish(ctx, workflowID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish audit event",
			"event_type", string(event.GetType()),
			"error", err)
	}
}

// renderInputs templates every string input against the run context.
// Non-string values pass through untouched.
func renderInputs(step *models.Step, bag *models.RunContext) (map[string]any, error) {
	raw, ok := step.Configuration[models.ConfigInputs].(map[string]any)
	if !ok {
		return nil, nil
	}

	inputs := make(map[string]any, len(raw))

	for name, value := range raw {
		text, isString := value.(string)
		if !isString {
			inputs[name] = value

			continue
		}

		rendered, err := template.RenderWithContext(text, bag)
		if err != nil {
			return nil, fmt.Errorf("failed to render input %q: %w", name, err)
		}

		inputs[name] = rendered
	}

	return inputs, nil
}

func configuredBatchSize(step *models.Step) int {
	batchSize := registry.MaxFixBatchSize

	if raw, ok := step.Configuration[models.ConfigBatchSize]; ok {
		switch size := raw.(type) {
		case int:
			batchSize = size
		case float64:
			batchSize = int(size)
		}
	}

	if batchSize <= 0 || batchSize > registry.MaxFixBatchSize {
		batchSize = registry.MaxFixBatchSize
	}

	return batchSize
}

// failureMessage condenses a run error for the report: the failing
// step plus the underlying cause, without the run id noise.
func failureMessage(err error) string {
	var runErr *RunError
	if errors.As(err, &runErr) && runErr.StepUID != "" {
		return fmt.Sprintf("step %s: %v", runErr.StepUID, runErr.Err)
	}

	return err.Error()
}

func nextPending(workflow *models.Workflow) *models.Step {
	for _, step := range workflow.Steps {
		if step.Status == models.StepStatusPending {
			return step
		}
	}

	return nil
}

func stepsByID(workflow *models.Workflow) map[int]*models.Step {
	byID := make(map[int]*models.Step, len(workflow.Steps))
	for _, step := range workflow.Steps {
		byID[step.ID] = step
	}

	return byID
}
