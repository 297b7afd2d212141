// Package gate decides whether a compliance metric clears the bar for
// the current delivery stage.
package gate

import "github.com/ordinoproj/ordino/pkg/models"

// Stage thresholds for the compliance metric, in percent.
const (
	PrototypeThreshold  = 70.0
	ProductionThreshold = 90.0
)

// Threshold returns the passing bar for a stage. Unknown stages get
// the stricter production bar.
func Threshold(stage models.Stage) float64 {
	if stage == models.StagePrototype {
		return PrototypeThreshold
	}

	return ProductionThreshold
}

// Evaluate applies the stage threshold to an observed metric. Meeting
// the threshold exactly passes. A critical unresolved item fails the
// gate no matter how high the metric is. A failed verdict always asks
// for user confirmation before fix work starts; a passed one never
// does. Evaluation is pure and carries no state between calls.
func Evaluate(metric float64, stage models.Stage, hasCriticalUnresolved bool) models.GateVerdict {
	threshold := Threshold(stage)
	passed := metric >= threshold && !hasCriticalUnresolved

	return models.GateVerdict{
		Passed:                   passed,
		RequiresUserConfirmation: !passed,
		ThresholdUsed:            threshold,
		ObservedMetric:           metric,
	}
}
