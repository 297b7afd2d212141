package registry

// MaxFixBatchSize caps how many files a single fix or implementation
// delegation may touch. Larger target sets are split into several
// invocations; the worker response schema enforces the same bound.
const MaxFixBatchSize = 5

// WorkerDefinition describes one external worker type: what it does
// and the JSON schema its responses must satisfy. A response that
// fails the schema is a protocol error, never silently patched.
type WorkerDefinition struct {
	Type         string
	Description  string
	OutputSchema map[string]any
}

// Builtin worker type ids.
const (
	WorkerDesignReviewer        = "design-reviewer"
	WorkerCodeFixer             = "code-fixer"
	WorkerQualityChecker        = "quality-checker"
	WorkerTestReviewer          = "test-reviewer"
	WorkerTestSkeletonGenerator = "test-skeleton-generator"
	WorkerTestImplementer       = "test-implementer"
)

// RegisterBuiltinWorkers installs the worker catalog every deployment
// ships with.
func RegisterBuiltinWorkers(r *Registry) {
	r.RegisterWorker(&WorkerDefinition{
		Type:         WorkerDesignReviewer,
		Description:  "Reviews a document against its checklist and scores compliance",
		OutputSchema: reviewerSchema(),
	})

	r.RegisterWorker(&WorkerDefinition{
		Type:         WorkerCodeFixer,
		Description:  "Applies fixes for unfulfilled checklist items across target files",
		OutputSchema: fixerSchema(),
	})

	r.RegisterWorker(&WorkerDefinition{
		Type:         WorkerQualityChecker,
		Description:  "Approves or rejects applied fixes before re-review",
		OutputSchema: qualitySchema(),
	})

	r.RegisterWorker(&WorkerDefinition{
		Type:         WorkerTestReviewer,
		Description:  "Reviews implemented tests and lists required fixes",
		OutputSchema: testReviewerSchema(),
	})

	r.RegisterWorker(&WorkerDefinition{
		Type:         WorkerTestSkeletonGenerator,
		Description:  "Generates test skeleton files for a document's targets",
		OutputSchema: skeletonSchema(),
	})

	// Implementation runs under the same response contract as fixing:
	// a status plus the bounded list of files touched.
	r.RegisterWorker(&WorkerDefinition{
		Type:         WorkerTestImplementer,
		Description:  "Implements test bodies inside generated skeleton files",
		OutputSchema: fixerSchema(),
	})
}

func reviewerSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"complianceRate": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 100, //nolint:mnd // percentage bound
			},
			"unfulfilledItems": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"complianceRate", "unfulfilledItems"},
	}
}

func fixerSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type": "string",
				"enum": []string{"success", "partial", "failed"},
			},
			"filesModified": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"maxItems": MaxFixBatchSize,
			},
		},
		"required": []string{"status", "filesModified"},
	}
}

func qualitySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"approved": map[string]any{"type": "boolean"},
		},
		"required": []string{"approved"},
	}
}

func testReviewerSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type": "string",
				"enum": []string{"approved", "needs_revision"},
			},
			"requiredFixes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"status", "requiredFixes"},
	}
}

func skeletonSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"generatedFiles": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"generatedFiles"},
	}
}
