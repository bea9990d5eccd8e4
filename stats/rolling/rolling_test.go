package rolling

import "testing"

func TestPushTracksRunningValues(t *testing.T) {
	w := New()
	for _, v := range []float64{50, 70, 60} {
		w.Push(v)
	}
	if w.Min() != 50 || w.Max() != 70 || w.Mean() != 60 {
		t.Fatalf("min/max/mean = %g/%g/%g", w.Min(), w.Max(), w.Mean())
	}
	if w.Len() != 3 || w.Total() != 3 || w.Last() != 60 {
		t.Fatalf("len/total/last = %d/%d/%g", w.Len(), w.Total(), w.Last())
	}
}

func TestWindowIsBounded(t *testing.T) {
	w := New(WithCapacity(4))
	for i := 1; i <= 10; i++ {
		w.Push(float64(i))
	}
	if w.Len() != 4 || w.Total() != 10 {
		t.Fatalf("len/total = %d/%d", w.Len(), w.Total())
	}
	// mean covers 7..10, min and max cover everything
	if w.Mean() != 8.5 || w.Min() != 1 || w.Max() != 10 {
		t.Fatalf("mean/min/max = %g/%g/%g", w.Mean(), w.Min(), w.Max())
	}
	vals := w.Values()
	vals[0] = 99
	if w.Values()[0] != 7 {
		t.Fatal("Values() exposes internal storage")
	}
}

func TestFinalizeWithoutTrim(t *testing.T) {
	w := New()
	for _, v := range []float64{10, 20, 30} {
		w.Push(v)
	}
	s := w.Finalize()
	want := Summary{Min: 10, Avg: 20, Max: 30, Final: 30, Count: 3}
	if s != want {
		t.Fatalf("Finalize() = %+v, want %+v", s, want)
	}
}

func TestFinalizeTrimsTrailingClick(t *testing.T) {
	w := New()
	for i := 0; i < 8; i++ {
		w.Push(60)
	}
	// the stop click lands in the last readings
	for i := 0; i < 12; i++ {
		w.Push(120)
	}
	s := w.Finalize()
	if !s.Trimmed {
		t.Fatal("expected trim for 20 readings")
	}
	if s.Avg != 60 || s.Min != 60 || s.Max != 60 || s.Final != 60 {
		t.Fatalf("Finalize() = %+v", s)
	}
	if s.Count != 20 {
		t.Fatalf("Count = %d", s.Count)
	}
}

func TestFinalizeIdenticalSamples(t *testing.T) {
	w := New()
	for i := 0; i < 20; i++ {
		w.Push(42.5)
	}
	if s := w.Finalize(); !s.Trimmed || s.Avg != 42.5 {
		t.Fatalf("Finalize() = %+v", s)
	}
}

func TestFinalizeThresholdBoundary(t *testing.T) {
	tests := []struct {
		n    int
		trim bool
	}{
		{15, false},
		{16, true},
	}
	for _, tc := range tests {
		w := New()
		for i := 1; i <= tc.n; i++ {
			w.Push(float64(i))
		}
		s := w.Finalize()
		if s.Trimmed != tc.trim {
			t.Fatalf("n=%d trimmed=%v", tc.n, s.Trimmed)
		}
		if tc.trim {
			// 16 readings keep 1..4
			if s.Avg != 2.5 || s.Min != 1 || s.Max != 4 || s.Final != 2.5 {
				t.Fatalf("n=16 summary %+v", s)
			}
		}
	}
}

func TestFinalizeAfterOverflow(t *testing.T) {
	w := New()
	for i := 1; i <= 120; i++ {
		w.Push(float64(i))
	}
	s := w.Finalize()
	// window holds 21..120, trim keeps 21..108
	if s.Avg != 64.5 || s.Min != 21 || s.Max != 108 || s.Final != 106 {
		t.Fatalf("Finalize() = %+v", s)
	}
}

func TestReset(t *testing.T) {
	w := New(WithCapacity(3))
	w.Push(5)
	w.Reset()
	if w.Len() != 0 || w.Total() != 0 || w.Mean() != 0 || w.Min() != 0 {
		t.Fatal("Reset left state behind")
	}
	w.Push(-3)
	if w.Min() != -3 || w.Max() != -3 {
		t.Fatalf("min/max after reset = %g/%g", w.Min(), w.Max())
	}
	for i := 0; i < 5; i++ {
		w.Push(1)
	}
	if w.Len() != 3 {
		t.Fatalf("capacity lost on Reset: len %d", w.Len())
	}
}
