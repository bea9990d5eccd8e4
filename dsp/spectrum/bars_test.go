package spectrum

import (
	"math"
	"testing"
)

func TestLinearBars(t *testing.T) {
	bins := make([]byte, 1024)
	for i := range bins {
		bins[i] = 255
	}
	bins[0] = 0

	bars := LinearBars(bins, 64)
	if len(bars) != 64 {
		t.Fatalf("len = %d, want 64", len(bars))
	}
	// step 16: first bar averages one zero and fifteen full bins
	if want := 15.0 / 16.0; math.Abs(bars[0]-want) > 1e-12 {
		t.Fatalf("bars[0] = %g, want %g", bars[0], want)
	}
	for i := 1; i < len(bars); i++ {
		if bars[i] != 1 {
			t.Fatalf("bars[%d] = %g, want 1", i, bars[i])
		}
	}
}

func TestLinearBarsFewerBinsThanBars(t *testing.T) {
	bars := LinearBars([]byte{255, 51}, 4)
	want := []float64{1, 0.2, 0, 0}
	for i := range want {
		if math.Abs(bars[i]-want[i]) > 1e-12 {
			t.Fatalf("bars = %v, want %v", bars, want)
		}
	}
	if LinearBars([]byte{1}, 0) != nil {
		t.Fatal("zero bars should return nil")
	}
}

func TestBandAverage(t *testing.T) {
	if got := BandAverage(nil); got != 0 {
		t.Fatalf("BandAverage(nil) = %g", got)
	}
	if got := BandAverage([]byte{0, 100, 200}); got != 100 {
		t.Fatalf("BandAverage() = %g, want 100", got)
	}
}
