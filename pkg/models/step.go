package models

// StepKind determines how the engine executes a step.
type StepKind string

const (
	StepKindAction   StepKind = "action"   // Local side effect through the registry
	StepKindDelegate StepKind = "delegate" // Worker invocation through the client
	StepKindGate     StepKind = "gate"     // Threshold check over the run context
	StepKindBranch   StepKind = "branch"   // Boolean route over the run context
	StepKindTerminal StepKind = "terminal" // Report assembly, run complete
)

// StepStatus is the per-step execution state.
type StepStatus string

const (
	StepStatusPending StepStatus = "pending"
	StepStatusRunning StepStatus = "running"
	StepStatusDone    StepStatus = "done"
	StepStatusSkipped StepStatus = "skipped"
	StepStatusFailed  StepStatus = "failed"
)

// Configuration keys understood by the engine, per step kind.
const (
	ConfigMetricKey    = "metric_key"    // gate: run-context key holding the observed metric
	ConfigPassTarget   = "pass_target"   // gate: step UID to jump to when the gate passes
	ConfigLoopTarget   = "loop_target"   // gate: step UID to re-enter when the gate fails
	ConfigConditionKey = "condition_key" // branch: run-context key holding the boolean
	ConfigFalseTarget  = "false_target"  // branch: step UID to jump to when the condition is false

	ConfigDescription = "description" // delegate: request description template
	ConfigPrompt      = "prompt"      // delegate: request prompt template
	ConfigInputs      = "inputs"      // delegate: request input templates
	ConfigBatchKey    = "batch_key"   // delegate: run-context key holding the list to split
	ConfigBatchInput  = "batch_input" // delegate: input name each batch chunk is passed under
	ConfigBatchSize   = "batch_size"  // delegate: chunk size cap, default registry.MaxFixBatchSize
)

type Step struct {
	ID            int            `json:"id"`
	UID           string         `json:"uid"  validate:"required,lowercase"`
	Name          string         `json:"name" validate:"required"`
	Kind          StepKind       `json:"kind" validate:"required,oneof=action delegate gate branch terminal"`
	Status        StepStatus     `json:"status"`
	DependsOn     []int          `json:"depends_on,omitempty"`
	Uses          string         `json:"uses,omitempty"` // registry id of the action or worker type
	Configuration map[string]any `json:"configuration,omitempty"`
}

// ConfigString reads a string configuration value, empty when absent.
func (s *Step) ConfigString(key string) string {
	if s.Configuration == nil {
		return ""
	}

	value, ok := s.Configuration[key].(string)
	if !ok {
		return ""
	}

	return value
}

// Runnable reports whether every dependency of the step is satisfied.
// Skipped dependencies count as satisfied so that jumped-over regions
// do not wedge the run.
func (s *Step) Runnable(byID map[int]*Step) bool {
	if s.Status != StepStatusPending {
		return false
	}

	for _, dep := range s.DependsOn {
		depStep, ok := byID[dep]
		if !ok {
			return false
		}

		if depStep.Status != StepStatusDone && depStep.Status != StepStatusSkipped {
			return false
		}
	}

	return true
}
