// Package template renders worker prompts and task-file documents from
// the run context.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/ordinoproj/ordino/pkg/models"
)

// RenderWithContext renders a template against the run context bag.
// Step outputs are reachable as .step_results.<uid>, accumulated values
// as .values.<key>.
func RenderWithContext(input string, bag *models.RunContext) (any, error) {
	return Render(input, contextData(bag))
}

// RenderStringWithContext renders a template against the run context
// bag without output coercion.
func RenderStringWithContext(input string, bag *models.RunContext) (string, error) {
	return RenderString(input, contextData(bag))
}

func contextData(bag *models.RunContext) map[string]any {
	return map[string]any{
		"values":       bag.Values,
		"step_results": bag.StepResults,
		"env":          getEnvVars(),
		"run": map[string]any{
			"id":          bag.ID,
			"workflow_id": bag.WorkflowID,
			"iterations":  bag.Iterations,
		},
	}
}

// Render executes a template and coerces the output: JSON-looking
// results decode to maps or slices, numeric and boolean strings to
// their typed values, everything else stays a string.
func Render(templateStr string, data any) (any, error) {
	result, err := RenderString(templateStr, data)
	if err != nil {
		return nil, err
	}

	result = strings.TrimSpace(result)
	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return jsonResult, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}

// RenderString executes a template and returns the raw output without
// any type coercion. Task-file documents are rendered this way.
func RenderString(templateStr string, data any) (string, error) {
	tmpl, err := template.
		New("render").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}
				num := make([]byte, 1)
				_, err := rand.Read(num)
				if err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	return buf.String(), nil
}

// getEnvVars returns environment variables as a map.
func getEnvVars() map[string]any {
	envMap := make(map[string]any)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	return envMap
}
