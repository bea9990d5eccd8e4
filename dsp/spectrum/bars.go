package spectrum

// LinearBars folds analyser byte bins into count display bars spaced
// linearly from 0 Hz to Nyquist. Each bar is the mean of step = len(bins)/count
// consecutive bins (at least one), normalised to [0, 1]. Bars past the end of
// bins read 0.
func LinearBars(bins []byte, count int) []float64 {
	if count <= 0 {
		return nil
	}
	out := make([]float64, count)
	step := len(bins) / count
	if step < 1 {
		step = 1
	}
	for i := range out {
		start := i * step
		if start >= len(bins) {
			break
		}
		sum := 0
		for _, b := range bins[start:min(start+step, len(bins))] {
			sum += int(b)
		}
		out[i] = float64(sum) / float64(step) / 255
	}
	return out
}

// BandAverage returns the mean byte value of bins, 0 for an empty slice.
func BandAverage(bins []byte) float64 {
	if len(bins) == 0 {
		return 0
	}
	sum := 0
	for _, b := range bins {
		sum += int(b)
	}
	return float64(sum) / float64(len(bins))
}
