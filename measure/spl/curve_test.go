package spl

import (
	"math"
	"testing"
)

func TestEstimateDbTable(t *testing.T) {
	tests := []struct {
		avg  float64
		want float64
	}{
		{0, 25},
		{0.4, 25},
		{0.5, 27.5},
		{1, 30},
		{2, 35},
		{6, 42.5},
		{10, 50},
		{20, 57.5},
		{30, 65},
		{45, 72.5},
		{60, 80},
		{80, 87.5},
		{100, 95},
		{150, 100},
		{255, 110.5},
		{1000, 125},
		{math.NaN(), 25},
		{-3, 25},
	}
	for _, tt := range tests {
		got := EstimateDb(tt.avg)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EstimateDb(%v) = %v, want %v", tt.avg, got, tt.want)
		}
	}
}

func TestEstimateDbMonotonicAndClamped(t *testing.T) {
	prev := EstimateDb(0)
	for avg := 0.0; avg <= 1000; avg += 0.25 {
		db := EstimateDb(avg)
		if db < prev-1e-12 {
			t.Fatalf("EstimateDb not monotonic at %v: %v < %v", avg, db, prev)
		}
		if db < MinDb || db > MaxDb {
			t.Fatalf("EstimateDb(%v) = %v outside [%v, %v]", avg, db, MinDb, MaxDb)
		}
		prev = db
	}
}
