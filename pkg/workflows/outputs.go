package workflows

import (
	"fmt"

	"github.com/ordinoproj/ordino/pkg/models"
)

// stepOutputs fetches the outputs map a delegate step stored in the
// run context.
func stepOutputs(bag *models.RunContext, stepUID string) (map[string]any, error) {
	result, ok := bag.StepResult(stepUID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStepResult, stepUID)
	}

	outputs, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds no outputs map", ErrMissingStepResult, stepUID)
	}

	return outputs, nil
}

// batchOutputs fetches the per-chunk outputs a batched delegate stored.
// A plain outputs map is accepted too, so recording actions work the
// same whether the delegate was batched or not.
func batchOutputs(bag *models.RunContext, stepUID string) ([]map[string]any, error) {
	result, ok := bag.StepResult(stepUID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingStepResult, stepUID)
	}

	switch typed := result.(type) {
	case []any:
		out := make([]map[string]any, 0, len(typed))

		for _, entry := range typed {
			outputs, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s holds a malformed batch entry", ErrMissingStepResult, stepUID)
			}

			out = append(out, outputs)
		}

		return out, nil
	case map[string]any:
		return []map[string]any{typed}, nil
	}

	return nil, fmt.Errorf("%w: %s holds no outputs", ErrMissingStepResult, stepUID)
}

// floatOutput reads a numeric worker output, accepting the integer
// forms JSON decoding produces.
func floatOutput(outputs map[string]any, key string) (float64, bool) {
	switch number := outputs[key].(type) {
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

// stringsOutput reads a string-list worker output, tolerating the
// []any form a JSON round trip produces.
func stringsOutput(outputs map[string]any, key string) []string {
	switch list := outputs[key].(type) {
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

func stringOutput(outputs map[string]any, key string) string {
	value, _ := outputs[key].(string)

	return value
}

func boolOutput(outputs map[string]any, key string) bool {
	value, _ := outputs[key].(bool)

	return value
}

func bagString(bag *models.RunContext, key string) string {
	value, ok := bag.Value(key)
	if !ok {
		return ""
	}

	text, _ := value.(string)

	return text
}
