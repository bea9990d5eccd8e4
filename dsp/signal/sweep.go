package signal

import "math"

// ExpSweepFrequency returns the instantaneous frequency of an exponential
// sweep from f0 to f1 over duration seconds, t seconds after it started:
//
//	f(t) = f0 * (f1/f0)^(t/T)
//
// t is clamped to [0, duration].
func ExpSweepFrequency(f0, f1, t, duration float64) float64 {
	if duration <= 0 || f0 <= 0 || f1 <= 0 {
		return f0
	}
	if t <= 0 {
		return f0
	}
	if t >= duration {
		return f1
	}
	return f0 * math.Pow(f1/f0, t/duration)
}
