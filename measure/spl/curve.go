package spl

import (
	"math"

	"github.com/cwbudde/algo-audiocheck/dsp/core"
)

const (
	// MinDb is the lowest level EstimateDb reports.
	MinDb = 25.0
	// MaxDb is the highest level EstimateDb reports.
	MaxDb = 130.0
)

// EstimateDb maps the mean analyser byte magnitude avg (0..255) to dB.
// The curve is monotonically non-decreasing and clamped to [MinDb, MaxDb].
func EstimateDb(avg float64) float64 {
	var db float64
	switch {
	case math.IsNaN(avg) || avg < 0.5:
		db = 25
	case avg < 2:
		db = 25 + (avg/2)*10
	case avg < 10:
		db = 35 + ((avg-2)/8)*15
	case avg < 30:
		db = 50 + ((avg-10)/20)*15
	case avg < 60:
		db = 65 + ((avg-30)/30)*15
	case avg < 100:
		db = 80 + ((avg-60)/40)*15
	default:
		db = 95 + math.Min((avg-100)/10, 30)
	}
	return core.Clamp(db, MinDb, MaxDb)
}
