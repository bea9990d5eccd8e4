// Package rolling keeps the running statistics of a stream of loudness
// readings: all-time min and max, a mean over the most recent readings, and
// the end-of-measurement trim that discards the click of a closing
// microphone.
package rolling

import (
	"math"

	"github.com/cwbudde/algo-audiocheck/dsp/core"
)

const (
	// DefaultCapacity is the number of readings kept for the mean.
	DefaultCapacity = 100
	// TrimCount readings are dropped from the end when finalizing.
	TrimCount = 12
	// TrimThreshold is the total reading count above which trimming applies.
	TrimThreshold = 15
	// FinalCount readings are averaged for the final display value.
	FinalCount = 5
)

// Summary is the outcome of a finished measurement.
type Summary struct {
	Min     float64
	Avg     float64
	Max     float64
	Final   float64
	Count   int
	Trimmed bool
}

// Option configures a Window.
type Option func(*Window)

// WithCapacity sets the mean window length.
func WithCapacity(n int) Option {
	return func(w *Window) {
		if n > 0 {
			w.capacity = n
		}
	}
}

// Window accumulates readings. It is not safe for concurrent use.
type Window struct {
	capacity int
	values   []float64
	total    int
	min      float64
	max      float64
	mean     float64
	hasData  bool
}

// New creates an empty window.
func New(opts ...Option) *Window {
	w := &Window{capacity: DefaultCapacity}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.values = make([]float64, 0, w.capacity+1)
	return w
}

// Push adds a reading and recomputes the windowed mean.
func (w *Window) Push(x float64) {
	w.total++
	if !w.hasData {
		w.min, w.max = x, x
		w.hasData = true
	} else {
		w.min = math.Min(w.min, x)
		w.max = math.Max(w.max, x)
	}

	w.values = append(w.values, x)
	if len(w.values) > w.capacity {
		w.values = append(w.values[:0], w.values[1:]...)
	}
	w.mean = core.Mean(w.values)
}

// Len returns the number of readings in the window.
func (w *Window) Len() int { return len(w.values) }

// Total returns the number of readings pushed since the last reset.
func (w *Window) Total() int { return w.total }

// Min returns the smallest reading ever pushed, 0 when empty.
func (w *Window) Min() float64 { return w.min }

// Max returns the largest reading ever pushed, 0 when empty.
func (w *Window) Max() float64 { return w.max }

// Mean returns the mean of the windowed readings, 0 when empty.
func (w *Window) Mean() float64 { return w.mean }

// Last returns the newest reading, 0 when empty.
func (w *Window) Last() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return w.values[len(w.values)-1]
}

// Values returns a copy of the windowed readings, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Reset clears all readings.
func (w *Window) Reset() {
	*w = Window{capacity: w.capacity, values: w.values[:0]}
}

// Finalize summarises the measurement. When more than [TrimThreshold]
// readings were pushed the last [TrimCount] windowed readings are dropped
// and min, mean and max are taken over the rest; Final is then the mean of
// the last [FinalCount] retained readings. Otherwise the running values
// stand and Final is the newest reading. The window itself is unchanged.
func (w *Window) Finalize() Summary {
	s := Summary{
		Min:   w.min,
		Avg:   w.mean,
		Max:   w.max,
		Final: w.Last(),
		Count: w.total,
	}
	if w.total <= TrimThreshold || len(w.values) <= TrimCount {
		return s
	}

	kept := w.values[:len(w.values)-TrimCount]
	s.Trimmed = true
	s.Avg = core.Mean(kept)
	s.Min, s.Max = kept[0], kept[0]
	for _, v := range kept[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Final = core.Mean(kept[max(0, len(kept)-FinalCount):])
	return s
}
