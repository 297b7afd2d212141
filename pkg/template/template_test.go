package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
)

func TestRender_SimpleExpression(t *testing.T) {
	data := map[string]any{
		"document": "docs/payments.md",
		"rate":     65,
		"passed":   true,
	}

	// Test simple field access
	result, err := Render("{{ .document }}", data)
	require.NoError(t, err)
	assert.Equal(t, "docs/payments.md", result)

	// Test boolean expression
	result, err = Render("{{ .passed }}", data)
	require.NoError(t, err)
	assert.Equal(t, true, result)

	// Test number field - always map to float
	result, err = Render("{{ .rate }}", data)
	require.NoError(t, err)
	assert.Equal(t, 65.0, result)
}

func TestRender_JSONConstruction(t *testing.T) {
	data := map[string]any{
		"document": "docs/payments.md",
		"items": []any{
			"add failure modes section",
			"document retry policy",
		},
	}

	result, err := Render(`{
		"document": "{{ .document }}",
		"open_items": {{ len .items }}
	}`, data)
	require.NoError(t, err)

	resultMap, ok := result.(map[string]any)

	require.True(t, ok)
	assert.Equal(t, "docs/payments.md", resultMap["document"])
	assert.Equal(t, 2.0, resultMap["open_items"])
}

func TestRenderWithContext_ExposesBag(t *testing.T) {
	bag := models.NewRunContext("wf-123")
	bag.SetValue(models.KeyComplianceRate, 65.0)
	bag.SetStepResult("initial-review", map[string]any{
		"complianceRate": 65.0,
	})

	result, err := RenderWithContext("{{ .values.compliance_rate }}", bag)
	require.NoError(t, err)
	assert.Equal(t, 65.0, result)

	result, err = RenderWithContext("run {{ .run.workflow_id }}", bag)
	require.NoError(t, err)
	assert.Equal(t, "run wf-123", result)

	result, err = RenderWithContext(`{{ index .step_results "initial-review" "complianceRate" }}`, bag)
	require.NoError(t, err)
	assert.Equal(t, 65.0, result)
}

func TestRenderString_NoCoercion(t *testing.T) {
	result, err := RenderString("{{ .rate }}", map[string]any{"rate": 65})
	require.NoError(t, err)
	assert.Equal(t, "65", result)
}

func TestRender_ConditionalExpression(t *testing.T) {
	data := map[string]any{
		"review": map[string]any{
			"complianceRate": 92.0,
		},
	}

	result, err := Render("{{ if ge .review.complianceRate 90.0 }}pass{{ else }}fail{{ end }}", data)
	require.NoError(t, err)
	assert.Equal(t, "pass", result)
}

func TestRender_ErrorHandling(t *testing.T) {
	data := map[string]any{
		"test": "value",
	}

	// Test invalid template expression
	_, err := Render("{ invalid..expression }}", data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse json")

	// Test reference to non-existent function
	_, err = Render("{{ nonexistent.field }}", data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "function \"nonexistent\" not defined")
}

func TestRender_StringInterpolation(t *testing.T) {
	data := map[string]any{
		"worker": "design-reviewer",
		"doc":    "docs/payments.md",
	}

	result, err := Render("Review {{.doc}} with {{.worker}}", data)
	require.NoError(t, err)
	assert.Equal(t, "Review docs/payments.md with design-reviewer", result)
}
