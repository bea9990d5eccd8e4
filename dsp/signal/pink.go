package signal

// PinkFilter approximates a -3 dB/octave tilt with Paul Kellett's refined
// 7-term recurrence. The zero value is a reset filter.
//
// The b6 term is read into the output sum before it is updated with the
// current input, so it always contributes the previous sample's value.
type PinkFilter struct {
	b0, b1, b2, b3, b4, b5, b6 float64
}

// pinkGain roughly compensates the filter's passband gain.
const pinkGain = 0.11

// Process filters one white noise sample.
func (f *PinkFilter) Process(white float64) float64 {
	f.b0 = 0.99886*f.b0 + white*0.0555179
	f.b1 = 0.99332*f.b1 + white*0.0750759
	f.b2 = 0.96900*f.b2 + white*0.1538520
	f.b3 = 0.86650*f.b3 + white*0.3104856
	f.b4 = 0.55000*f.b4 + white*0.5329522
	f.b5 = -0.7616*f.b5 - white*0.0168980
	out := (f.b0 + f.b1 + f.b2 + f.b3 + f.b4 + f.b5 + f.b6 + white*0.5362) * pinkGain
	f.b6 = white * 0.115926
	return out
}

// ProcessInPlace filters buf sample by sample.
func (f *PinkFilter) ProcessInPlace(buf []float64) {
	for i, w := range buf {
		buf[i] = f.Process(w)
	}
}

// Reset clears the filter state.
func (f *PinkFilter) Reset() {
	*f = PinkFilter{}
}
