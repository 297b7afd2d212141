package web

// ListRunsRequest captures the query parameters accepted by GET /api/runs.
type ListRunsRequest struct {
	Kind   string `query:"kind"   validate:"omitempty,oneof=design-review test-addition"`
	Status string `query:"status" validate:"omitempty,oneof=pending running completed failed aborted"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}
