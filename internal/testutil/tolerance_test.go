package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float64
		want    float64
		wantErr bool
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0, false},
		{"one off", []float64{1, 2, 3}, []float64{1, 2.5, 3}, 0.5, false},
		{"sign", []float64{-1}, []float64{1}, 2, false},
		{"empty", nil, nil, 0, false},
		{"length mismatch", []float64{1}, []float64{1, 2}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MaxAbsDiff(tc.a, tc.b)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

// recorder captures a Fatalf without stopping the test.
type recorder struct {
	testing.TB
	failed bool
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(string, ...any) { r.failed = true }

func TestRequireHelpers(t *testing.T) {
	tests := []struct {
		name string
		run  func(testing.TB)
		fail bool
	}{
		{"near", func(tb testing.TB) { RequireSliceNearlyEqual(tb, []float64{1, 2}, []float64{1, 2.0001}, 1e-3) }, false},
		{"far", func(tb testing.TB) { RequireSliceNearlyEqual(tb, []float64{1, 2}, []float64{1, 2.1}, 1e-3) }, true},
		{"nan", func(tb testing.TB) { RequireSliceNearlyEqual(tb, []float64{math.NaN()}, []float64{0}, 1) }, true},
		{"finite", func(tb testing.TB) { RequireFinite(tb, []float64{0, -1, 1e300}) }, false},
		{"inf", func(tb testing.TB) { RequireFinite(tb, []float64{0, math.Inf(1)}) }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &recorder{TB: t}
			tc.run(r)
			if r.failed != tc.fail {
				t.Fatalf("failed = %v, want %v", r.failed, tc.fail)
			}
		})
	}
}
