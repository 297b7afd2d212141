package models

import "fmt"

// Stage selects which compliance threshold the review gate applies.
type Stage string

const (
	StagePrototype  Stage = "prototype"
	StageProduction Stage = "production"
)

// ParseStage maps a flag or environment value onto a Stage.
func ParseStage(value string) (Stage, error) {
	switch Stage(value) {
	case StagePrototype:
		return StagePrototype, nil
	case StageProduction:
		return StageProduction, nil
	}

	return "", fmt.Errorf("unknown stage %q (want prototype or production)", value)
}
