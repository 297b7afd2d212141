// Package workflows assembles the built-in workflow templates and the
// domain actions their steps run. Everything the orchestrator knows
// about reviews, fixes and test generation lives here; the engine
// underneath only sees actions, delegates, gates and branches.
package workflows

import (
	"time"

	"github.com/google/uuid"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/registry"
)

// Action ids registered by this package.
const (
	ActionResolveDocument  = "resolve-document"
	ActionRecordReview     = "record-review"
	ActionCreateTaskFile   = "create-task-file"
	ActionConfirmFixes     = "confirm-fixes"
	ActionRecordFixes      = "record-fixes"
	ActionRecordQuality    = "record-quality"
	ActionRecordSkeletons  = "record-skeletons"
	ActionRecordTestReview = "record-test-review"
)

// Configuration keys the domain actions read from their step.
const (
	ConfigDocsDir   = "docs_dir"
	ConfigMode      = "mode"
	ConfigSource    = "source"
	ConfigObjective = "objective"
)

// Review recording modes.
const (
	ReviewModeInitial = "initial"
	ReviewModeFinal   = "final"
)

// Status vocabulary workers report in their outputs.
const (
	WorkerStatusSuccess       = "success"
	WorkerStatusPartial       = "partial"
	WorkerStatusApproved      = "approved"
	WorkerStatusNeedsRevision = "needs_revision"
)

// Defaults applied when the caller leaves an option empty.
const (
	DefaultDocsDir       = "docs/design"
	DefaultMaxIterations = 3
)

// Options selects the document, stage and loop budget a workflow is
// built with. An empty DocumentPath means the resolve step picks the
// most recently modified non-template document under DocsDir.
type Options struct {
	DocumentPath  string
	DocsDir       string
	Stage         models.Stage
	MaxIterations int
}

func (o Options) withDefaults() Options {
	if o.DocsDir == "" {
		o.DocsDir = DefaultDocsDir
	}

	if o.Stage == "" {
		o.Stage = models.StagePrototype
	}

	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}

	return o
}

func (o Options) documentLabel() string {
	if o.DocumentPath != "" {
		return o.DocumentPath
	}

	return "the latest document in " + o.DocsDir
}

// NewDesignReview builds the review workflow: review the document,
// gate on the stage threshold, and on a confirmed failure run the
// bounded fix loop (fix, quality check, re-review) until the gate
// passes or the iteration budget runs out.
func NewDesignReview(opts Options) *models.Workflow {
	opts = opts.withDefaults()

	steps := []*models.Step{
		step("resolve-document", "Resolve design document", models.StepKindAction, ActionResolveDocument, map[string]any{
			ConfigDocsDir: opts.DocsDir,
		}),
		step("initial-review", "Initial design review", models.StepKindDelegate, registry.WorkerDesignReviewer, map[string]any{
			models.ConfigDescription: "Review {{ .values.document_path }} against its checklist",
			models.ConfigInputs: map[string]any{
				"document": "{{ .values.document_path }}",
				"stage":    string(opts.Stage),
			},
		}),
		step("record-initial-review", "Record initial review", models.StepKindAction, ActionRecordReview, map[string]any{
			ConfigMode:   ReviewModeInitial,
			ConfigSource: "initial-review",
		}),
		step("quality-gate", "Compliance gate", models.StepKindGate, "", map[string]any{
			models.ConfigPassTarget: "finalize",
		}),
		step("confirm-fixes", "Offer automated fixes", models.StepKindAction, ActionConfirmFixes, nil),
		step("fixes-branch", "Route on fix decision", models.StepKindBranch, "", map[string]any{
			models.ConfigConditionKey: models.KeyFixesConfirmed,
			models.ConfigFalseTarget:  "finalize",
		}),
		step("create-task-file", "Write fix task file", models.StepKindAction, ActionCreateTaskFile, map[string]any{
			ConfigObjective: "Resolve the unfulfilled review items for {{ .values.document_path }}",
		}),
		step("apply-fixes", "Apply fixes", models.StepKindDelegate, registry.WorkerCodeFixer, map[string]any{
			models.ConfigDescription: "Apply fixes from {{ .values.task_file_path }}",
			models.ConfigBatchKey:    models.KeyFixableItems,
			models.ConfigBatchInput:  "items",
			models.ConfigInputs: map[string]any{
				"task_file": "{{ .values.task_file_path }}",
				"document":  "{{ .values.document_path }}",
			},
		}),
		step("record-fixes", "Record applied fixes", models.StepKindAction, ActionRecordFixes, map[string]any{
			ConfigSource: "apply-fixes",
		}),
		step("quality-check", "Check fix quality", models.StepKindDelegate, registry.WorkerQualityChecker, map[string]any{
			models.ConfigDescription: "Check the fixes recorded in {{ .values.task_file_path }}",
			models.ConfigInputs: map[string]any{
				"task_file": "{{ .values.task_file_path }}",
				"document":  "{{ .values.document_path }}",
			},
		}),
		step("record-quality", "Record quality verdict", models.StepKindAction, ActionRecordQuality, map[string]any{
			ConfigSource: "quality-check",
		}),
		step("re-review", "Re-review after fixes", models.StepKindDelegate, registry.WorkerDesignReviewer, map[string]any{
			models.ConfigDescription: "Re-review {{ .values.document_path }} after fixes",
			models.ConfigInputs: map[string]any{
				"document": "{{ .values.document_path }}",
				"stage":    string(opts.Stage),
			},
		}),
		step("record-re-review", "Record re-review", models.StepKindAction, ActionRecordReview, map[string]any{
			ConfigMode:   ReviewModeFinal,
			ConfigSource: "re-review",
		}),
		step("loop-gate", "Re-check compliance gate", models.StepKindGate, "", map[string]any{
			models.ConfigPassTarget: "finalize",
			models.ConfigLoopTarget: "apply-fixes",
		}),
		step("finalize", "Finalize report", models.StepKindTerminal, "", nil),
	}

	return assemble(models.WorkflowKindDesignReview, "Design review of "+opts.documentLabel(), opts, steps)
}

// NewTestAddition builds the test-generation workflow: generate
// skeletons, write the implementation task file, implement in bounded
// batches, and loop on the test reviewer's verdict until approved or
// the iteration budget runs out.
func NewTestAddition(opts Options) *models.Workflow {
	opts = opts.withDefaults()

	steps := []*models.Step{
		step("resolve-document", "Resolve design document", models.StepKindAction, ActionResolveDocument, map[string]any{
			ConfigDocsDir: opts.DocsDir,
		}),
		step("generate-skeletons", "Generate test skeletons", models.StepKindDelegate, registry.WorkerTestSkeletonGenerator, map[string]any{
			models.ConfigDescription: "Generate test skeletons for {{ .values.document_path }}",
			models.ConfigInputs: map[string]any{
				"document": "{{ .values.document_path }}",
			},
		}),
		step("record-skeletons", "Record generated skeletons", models.StepKindAction, ActionRecordSkeletons, map[string]any{
			ConfigSource: "generate-skeletons",
		}),
		step("create-task-file", "Write implementation task file", models.StepKindAction, ActionCreateTaskFile, map[string]any{
			ConfigObjective: "Implement the generated test skeletons for {{ .values.document_path }}",
		}),
		step("implement-tests", "Implement tests", models.StepKindDelegate, registry.WorkerTestImplementer, map[string]any{
			models.ConfigDescription: "Implement tests from {{ .values.task_file_path }}",
			models.ConfigBatchKey:    models.KeyFixableItems,
			models.ConfigBatchInput:  "items",
			models.ConfigInputs: map[string]any{
				"task_file": "{{ .values.task_file_path }}",
				"document":  "{{ .values.document_path }}",
			},
		}),
		step("record-implementation", "Record implemented tests", models.StepKindAction, ActionRecordFixes, map[string]any{
			ConfigSource: "implement-tests",
		}),
		step("test-review", "Review implemented tests", models.StepKindDelegate, registry.WorkerTestReviewer, map[string]any{
			models.ConfigDescription: "Review the tests implemented for {{ .values.document_path }}",
			models.ConfigInputs: map[string]any{
				"task_file": "{{ .values.task_file_path }}",
				"document":  "{{ .values.document_path }}",
			},
		}),
		step("record-test-review", "Record test review", models.StepKindAction, ActionRecordTestReview, map[string]any{
			ConfigSource: "test-review",
		}),
		step("test-gate", "Test approval gate", models.StepKindGate, "", map[string]any{
			models.ConfigPassTarget: "finalize",
			models.ConfigLoopTarget: "implement-tests",
		}),
		step("finalize", "Finalize report", models.StepKindTerminal, "", nil),
	}

	return assemble(models.WorkflowKindTestAddition, "Test addition for "+opts.documentLabel(), opts, steps)
}

func step(uid, name string, kind models.StepKind, uses string, config map[string]any) *models.Step {
	return &models.Step{
		UID:           uid,
		Name:          name,
		Kind:          kind,
		Status:        models.StepStatusPending,
		Uses:          uses,
		Configuration: config,
	}
}

func assemble(kind models.WorkflowKind, name string, opts Options, steps []*models.Step) *models.Workflow {
	for i, s := range steps {
		s.ID = i + 1
		if i > 0 {
			s.DependsOn = []int{i}
		}
	}

	return &models.Workflow{
		ID:            uuid.New().String(),
		Name:          name,
		Kind:          kind,
		Status:        models.WorkflowStatusPending,
		Stage:         opts.Stage,
		DocumentPath:  opts.DocumentPath,
		MaxIterations: opts.MaxIterations,
		Steps:         steps,
		CreatedAt:     time.Now().UTC(),
	}
}
