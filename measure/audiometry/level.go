package audiometry

import (
	"math"

	"github.com/cwbudde/algo-audiocheck/dsp/core"
)

const (
	// MaxLevel is the top of the operator level range.
	MaxLevel = 100
	// LevelStep is the increment of StepUp and StepDown.
	LevelStep = 5
	// ReferenceLevel plays at unity gain.
	ReferenceLevel = 80
	// FloorDb is the lowest recordable threshold.
	FloorDb = -10.0
)

// GainForLevel maps an operator level to linear tone gain: silence at or
// below 0, otherwise one decade per 20 levels around [ReferenceLevel].
func GainForLevel(level int) float64 {
	if level <= 0 {
		return 0
	}
	return core.DBToLinear(float64(level - ReferenceLevel))
}

// RecordedDb maps a confirmed level to dB HL.
func RecordedDb(level int) float64 {
	return math.Max(float64(level-10), FloorDb)
}

func clampLevel(level int) int {
	return core.Clamp(level, 0, MaxLevel)
}
