package audiometry

import (
	"maps"
	"slices"

	"github.com/cwbudde/algo-audiocheck/audio/synth"
)

// Frequencies are tested in this order on each ear, high band first.
var Frequencies = []int{1000, 2000, 4000, 8000, 500, 250}

// Ear is the side under test.
type Ear = synth.Side

// Ears in test order.
const (
	Left  = synth.Left
	Right = synth.Right
)

// Result maps ear and frequency to the recorded threshold in dB HL.
type Result struct {
	ears [2]map[int]float64
}

// NewResult returns an empty result.
func NewResult() Result {
	return Result{ears: [2]map[int]float64{{}, {}}}
}

// Set records db for ear at hz.
func (r *Result) Set(ear Ear, hz int, db float64) {
	if r.ears[ear] == nil {
		r.ears[ear] = map[int]float64{}
	}
	r.ears[ear][hz] = db
}

// Get returns the threshold of ear at hz.
func (r Result) Get(ear Ear, hz int) (float64, bool) {
	db, ok := r.ears[ear][hz]
	return db, ok
}

// Ear returns a copy of the thresholds of one ear.
func (r Result) Ear(ear Ear) map[int]float64 {
	return maps.Clone(r.ears[ear])
}

// Len returns the number of recorded thresholds.
func (r Result) Len() int {
	return len(r.ears[Left]) + len(r.ears[Right])
}

// Clone returns an independent copy.
func (r Result) Clone() Result {
	return Result{ears: [2]map[int]float64{
		maps.Clone(r.ears[Left]),
		maps.Clone(r.ears[Right]),
	}}
}

// Audiogram returns the thresholds of ear in ascending frequency order.
// Frequencies not measured yet have Tested unset.
func (r Result) Audiogram(ear Ear) []Threshold {
	freqs := slices.Clone(Frequencies)
	slices.Sort(freqs)
	out := make([]Threshold, len(freqs))
	for i, hz := range freqs {
		db, ok := r.Get(ear, hz)
		out[i] = Threshold{Ear: ear, Frequency: hz, DB: db, Tested: ok}
	}
	return out
}

// Threshold is a single audiogram point.
type Threshold struct {
	Ear       Ear
	Frequency int
	DB        float64
	Tested    bool
}

// mean of the thresholds at freqs; untested frequencies count as 0 dB.
func (r Result) mean(ear Ear, freqs ...int) float64 {
	var sum float64
	for _, hz := range freqs {
		sum += r.ears[ear][hz]
	}
	return sum / float64(len(freqs))
}
