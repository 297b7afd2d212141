package models

import "github.com/google/uuid"

// Well-known run-context keys shared between steps, gates and the
// report builder. Steps communicate exclusively through these values;
// no step ever reaches into another step's internals.
const (
	KeyComplianceRate        = "compliance_rate"
	KeyInitialComplianceRate = "initial_compliance_rate"
	KeyFinalComplianceRate   = "final_compliance_rate"
	KeyUnfulfilledItems      = "unfulfilled_items"
	KeyManualItems           = "manual_items"
	KeyHasCriticalUnresolved = "has_critical_unresolved"
	KeyFixesConfirmed        = "fixes_confirmed"
	KeyFilesModified         = "files_modified"
	KeyTaskFilePath          = "task_file_path"
	KeyDocumentPath          = "document_path"
	KeyTargetFiles           = "target_files"
	KeyGeneratedFiles        = "generated_files"
	KeyRequiredFixes         = "required_fixes"
	KeyTestReviewStatus      = "test_review_status"
	KeyQualityApproved       = "quality_approved"
	KeyFixableItems          = "fixable_items"
	KeyRunFailure            = "run_failure"
)

// RunContext is the shared state bag a workflow run accumulates while
// its steps execute.
type RunContext struct {
	ID          string         `json:"id"`
	WorkflowID  string         `json:"workflow_id"`
	Values      map[string]any `json:"values,omitempty"`
	StepResults map[string]any `json:"step_results,omitempty"`
	Iterations  int            `json:"iterations"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewRunContext(workflowID string) *RunContext {
	return &RunContext{
		ID:          uuid.New().String(),
		WorkflowID:  workflowID,
		Values:      make(map[string]any),
		StepResults: make(map[string]any),
	}
}

func (c *RunContext) SetValue(key string, value any) {
	if c.Values == nil {
		c.Values = make(map[string]any)
	}

	c.Values[key] = value
}

func (c *RunContext) Value(key string) (any, bool) {
	value, ok := c.Values[key]

	return value, ok
}

// Float64 reads a numeric value, accepting the integer forms JSON
// decoding and literal step configuration produce.
func (c *RunContext) Float64(key string) (float64, bool) {
	value, ok := c.Values[key]
	if !ok {
		return 0, false
	}

	switch number := value.(type) {
	case float64:
		return number, true
	case float32:
		return float64(number), true
	case int:
		return float64(number), true
	case int64:
		return float64(number), true
	}

	return 0, false
}

// Bool reads a boolean value, false when absent or not a bool.
func (c *RunContext) Bool(key string) bool {
	value, ok := c.Values[key].(bool)
	if !ok {
		return false
	}

	return value
}

// Strings reads a string-slice value, tolerating the []any form a JSON
// round trip produces. Non-string elements are dropped.
func (c *RunContext) Strings(key string) []string {
	switch list := c.Values[key].(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))

		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	}

	return nil
}

// AppendStrings grows a string-slice value in place.
func (c *RunContext) AppendStrings(key string, items ...string) {
	if len(items) == 0 {
		return
	}

	c.SetValue(key, append(c.Strings(key), items...))
}

// SetStepResult records the outputs a step produced under its UID.
func (c *RunContext) SetStepResult(stepUID string, result any) {
	if c.StepResults == nil {
		c.StepResults = make(map[string]any)
	}

	c.StepResults[stepUID] = result
}

func (c *RunContext) StepResult(stepUID string) (any, bool) {
	result, ok := c.StepResults[stepUID]

	return result, ok
}
