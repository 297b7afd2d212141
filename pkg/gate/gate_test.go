package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ordinoproj/ordino/pkg/models"
)

func TestEvaluate_StageThresholds(t *testing.T) {
	tests := []struct {
		name     string
		metric   float64
		stage    models.Stage
		critical bool
		passed   bool
	}{
		{name: "prototype at threshold passes", metric: 70, stage: models.StagePrototype, passed: true},
		{name: "prototype just below fails", metric: 69.9, stage: models.StagePrototype, passed: false},
		{name: "prototype well above passes", metric: 95, stage: models.StagePrototype, passed: true},
		{name: "production below fails", metric: 89, stage: models.StageProduction, passed: false},
		{name: "production at threshold passes", metric: 90, stage: models.StageProduction, passed: true},
		{name: "prototype passing metric fails production", metric: 75, stage: models.StageProduction, passed: false},
		{name: "critical item fails a perfect score", metric: 100, stage: models.StagePrototype, critical: true, passed: false},
		{name: "critical item fails production too", metric: 100, stage: models.StageProduction, critical: true, passed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.metric, tt.stage, tt.critical)

			assert.Equal(t, tt.passed, verdict.Passed)
			assert.Equal(t, !tt.passed, verdict.RequiresUserConfirmation)
			assert.Equal(t, tt.metric, verdict.ObservedMetric)
			assert.Equal(t, Threshold(tt.stage), verdict.ThresholdUsed)
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	first := Evaluate(84.2, models.StageProduction, false)
	second := Evaluate(84.2, models.StageProduction, false)

	assert.Equal(t, first, second)
}

func TestThreshold_UnknownStageUsesProduction(t *testing.T) {
	assert.Equal(t, ProductionThreshold, Threshold(models.Stage("staging")))
}
