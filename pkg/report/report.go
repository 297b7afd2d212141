// Package report assembles the final summary of a run from its context
// bag.
package report

import (
	"time"

	"github.com/ordinoproj/ordino/pkg/models"
)

// Build assembles the report for a run in its current state. It reads
// only the workflow and its context bag. A metric the run never
// produced stays absent rather than defaulting to zero, and Delta
// exists only when both metrics do, so a first-review pass is
// distinguishable from an improvement to the same value.
func Build(workflow *models.Workflow) *models.Report {
	bag := workflow.Bag()

	r := &models.Report{
		WorkflowID:    workflow.ID,
		Kind:          workflow.Kind,
		Stage:         workflow.Stage,
		Status:        workflow.Status,
		DocumentPath:  documentPath(workflow),
		TaskFilePath:  stringValue(bag, models.KeyTaskFilePath),
		Iterations:    bag.Iterations,
		FilesModified: bag.Strings(models.KeyFilesModified),
		GeneratedAt:   time.Now().UTC(),
	}

	if initial, ok := bag.Float64(models.KeyInitialComplianceRate); ok {
		r.InitialMetric = &initial
	}

	if final, ok := bag.Float64(models.KeyFinalComplianceRate); ok {
		r.FinalMetric = &final
	}

	if r.InitialMetric != nil && r.FinalMetric != nil {
		delta := *r.FinalMetric - *r.InitialMetric
		r.Delta = &delta
	}

	r.RemainingIssues = remainingIssues(bag)

	return r
}

// documentPath prefers the resolved path a run recorded over the one
// the workflow was created with, which may have been empty before
// most-recent-document fallback ran.
func documentPath(workflow *models.Workflow) string {
	if resolved := stringValue(workflow.Bag(), models.KeyDocumentPath); resolved != "" {
		return resolved
	}

	return workflow.DocumentPath
}

// remainingIssues lists what still stands between the document and a
// clean pass: a run failure first, then the unfulfilled items from the
// latest review verbatim, critical: and manual: markers included.
func remainingIssues(bag *models.RunContext) []string {
	var issues []string

	if failure := stringValue(bag, models.KeyRunFailure); failure != "" {
		issues = append(issues, "failed: "+failure)
	}

	issues = append(issues, bag.Strings(models.KeyUnfulfilledItems)...)

	return issues
}

func stringValue(bag *models.RunContext, key string) string {
	value, ok := bag.Value(key)
	if !ok {
		return ""
	}

	text, _ := value.(string)

	return text
}
