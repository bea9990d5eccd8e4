package viz

import "github.com/cwbudde/algo-audiocheck/dsp/spectrum"

// Frame is the plain data a presentation layer binds to.
type Frame struct {
	// Active is set while the meter runs.
	Active bool
	// Bars are spectrum bar heights in [0, 1]; nil when idle.
	Bars []float64
	// History is the loudness trace, oldest first.
	History []float64
	// Placeholder asks for the idle spectrum labels: the meter is stopped
	// and no reading was ever taken.
	Placeholder bool
}

// NewFrame assembles a frame from the analyser bins and the history. bins
// are ignored when the meter is not active.
func NewFrame(active bool, bins []byte, h *History, bars int) Frame {
	if bars <= 0 {
		bars = DefaultBars
	}
	f := Frame{Active: active}
	if h != nil {
		f.History = h.Values()
	}
	if active {
		f.Bars = spectrum.LinearBars(bins, bars)
		return f
	}
	f.Placeholder = h == nil || !h.HasData()
	return f
}
