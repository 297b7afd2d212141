package models

// GateVerdict is the outcome of evaluating a compliance gate. A failed
// verdict asks for user confirmation before any fix work starts; a
// passed one never does.
type GateVerdict struct {
	Passed                   bool    `json:"passed"`
	RequiresUserConfirmation bool    `json:"requires_user_confirmation"`
	ThresholdUsed            float64 `json:"threshold_used"`
	ObservedMetric           float64 `json:"observed_metric"`
}
