package spl

import (
	"math"
	"testing"
)

func TestClassifyExposureBoundaries(t *testing.T) {
	tests := []struct {
		db   float64
		key  string
		icon Icon
	}{
		{20, "warningVeryQuiet", IconOK},
		{39.9, "warningVeryQuiet", IconOK},
		{40, "warningSafe", IconOK},
		{69.9, "warningSafe", IconOK},
		{70, "warningExtended", IconCaution},
		{85, "warning8h", IconCaution},
		{88, "warning4h", IconCaution},
		{91, "warning2h", IconCaution},
		{94, "warning1h", IconAlarm},
		{97, "warning30m", IconAlarm},
		{100, "warning15m", IconAlarm},
		{103, "warning7m", IconAlarm},
		{106, "warning3m", IconAlarm},
		{109, "warning1m", IconAlarm},
		{112, "warningLess1m", IconAlarm},
		{115, "warningImmediate", IconAlarm},
		{130, "warningImmediate", IconAlarm},
	}
	for _, tt := range tests {
		got := ClassifyExposure(tt.db)
		if got.MessageKey != tt.key || got.Icon != tt.icon {
			t.Errorf("ClassifyExposure(%v) = %+v, want %s %s", tt.db, got, tt.key, tt.icon)
		}
	}
}

func TestClassifyExposureBandsAreOrdered(t *testing.T) {
	prev := -1
	for db := 0.0; db <= 130; db += 0.5 {
		band := ClassifyExposure(db).Band
		if band < prev {
			t.Fatalf("band decreased at %v dB", db)
		}
		prev = band
	}
	if prev != ExposureBands-1 {
		t.Fatalf("last band = %d, want %d", prev, ExposureBands-1)
	}
}

func TestClassifyLevel(t *testing.T) {
	tests := []struct {
		db      float64
		status  string
		label   string
		percent float64
	}{
		{30, "statusQuiet", "labelStatus", 30.0 / 130 * 100},
		{55, "statusModerate", "labelStatus", 55.0 / 130 * 100},
		{70, "statusElevated", "labelCaution", 70.0 / 130 * 100},
		{90, "statusLoud", "labelWarning", 90.0 / 130 * 100},
		{100, "statusVeryLoud", "labelDanger", 100.0 / 130 * 100},
		{140, "statusVeryLoud", "labelDanger", 100},
	}
	for _, tt := range tests {
		got := ClassifyLevel(tt.db)
		if got.StatusKey != tt.status || got.LabelKey != tt.label || math.Abs(got.Percent-tt.percent) > 1e-9 {
			t.Errorf("ClassifyLevel(%v) = %+v", tt.db, got)
		}
	}
}

func TestClassifyReport(t *testing.T) {
	tests := []struct {
		avg  float64
		want Verdict
		key  string
	}{
		{50, VerdictSafe, "reportSafe"},
		{69.99, VerdictSafe, "reportSafe"},
		{70, VerdictCaution, "reportCaution"},
		{84.9, VerdictCaution, "reportCaution"},
		{85, VerdictHigh, "reportHigh"},
	}
	for _, tt := range tests {
		got := ClassifyReport(tt.avg)
		if got != tt.want || got.Key() != tt.key {
			t.Errorf("ClassifyReport(%v) = %v (%s), want %v", tt.avg, got, got.Key(), tt.want)
		}
	}
}
