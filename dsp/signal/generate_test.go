package signal

import (
	"math"
	"testing"
)

func TestWhiteNoiseBoundsAndSeed(t *testing.T) {
	a := NewGenerator(WithSeed(42))
	b := NewGenerator(WithSeed(42))

	x, err := a.WhiteNoise(1, 4096)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}
	y, _ := b.WhiteNoise(1, 4096)

	for i := range x {
		if x[i] < -1 || x[i] > 1 {
			t.Fatalf("sample %d out of range: %g", i, x[i])
		}
		if x[i] != y[i] {
			t.Fatalf("sample %d differs for equal seeds", i)
		}
	}

	// successive buffers continue the stream
	z, _ := a.WhiteNoise(1, 4096)
	same := true
	for i := range x {
		if x[i] != z[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("second buffer repeated the first")
	}

	a.SetSeed(42)
	w, _ := a.WhiteNoise(1, 4096)
	if w[0] != x[0] || w[4095] != x[4095] {
		t.Fatal("SetSeed did not restart the stream")
	}
}

func TestWhiteNoiseRejectsNegativeAmplitude(t *testing.T) {
	g := NewGenerator()
	if _, err := g.WhiteNoise(-1, 16); err == nil {
		t.Fatal("expected error")
	}
}

func TestPinkNoiseTilt(t *testing.T) {
	g := NewGenerator(WithSeed(7))
	white, _ := g.WhiteNoise(1, 1<<15)
	g.SetSeed(7)
	pink, err := g.PinkNoise(1 << 15)
	if err != nil {
		t.Fatalf("PinkNoise() error = %v", err)
	}

	// first difference acts as a crude high-pass; its energy relative to the
	// signal energy is much lower for pink noise than for white.
	ratio := func(x []float64) float64 {
		var e, d float64
		for i := 1; i < len(x); i++ {
			e += x[i] * x[i]
			diff := x[i] - x[i-1]
			d += diff * diff
		}
		return d / e
	}
	if rw, rp := ratio(white), ratio(pink); rp >= rw {
		t.Fatalf("pink diff ratio %g not below white %g", rp, rw)
	}

	for i, v := range pink {
		if math.IsNaN(v) || math.Abs(v) > 1.5 {
			t.Fatalf("pink sample %d = %g", i, v)
		}
	}
}

func TestPinkFilterFirstSample(t *testing.T) {
	var f PinkFilter
	got := f.Process(1)
	want := (0.0555179 + 0.0750759 + 0.1538520 + 0.3104856 + 0.5329522 - 0.0168980 + 0.5362) * 0.11
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("first output = %g, want %g", got, want)
	}
	// b6 from the previous sample now contributes
	second := f.Process(0)
	if second == 0 {
		t.Fatal("filter has no memory")
	}
	f.Reset()
	if f.Process(0) != 0 {
		t.Fatal("Reset did not clear state")
	}
}

func TestCalibrationNoiseIsQuietAndBounded(t *testing.T) {
	g := NewGenerator(WithSeed(3))
	out, err := g.CalibrationNoise(48000)
	if err != nil {
		t.Fatalf("CalibrationNoise() error = %v", err)
	}
	for i, v := range out {
		// the integrator can never exceed 3.5 * 0.02/0.02
		if math.Abs(v) > 3.5 {
			t.Fatalf("sample %d = %g", i, v)
		}
	}
}

func TestExpSweepFrequency(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"start", 0, 20},
		{"before start", -1, 20},
		{"middle", 5, math.Sqrt(20 * 20000)},
		{"end", 10, 20000},
		{"after end", 12, 20000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExpSweepFrequency(20, 20000, tc.t, 10)
			if math.Abs(got-tc.want) > 1e-9*tc.want {
				t.Fatalf("got %g, want %g", got, tc.want)
			}
		})
	}
}
