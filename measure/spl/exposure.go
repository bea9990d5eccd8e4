package spl

import "math"

// Icon is the traffic-light marker shown next to an exposure message.
type Icon int

const (
	// IconOK marks levels below 70 dB.
	IconOK Icon = iota
	// IconCaution marks levels from 70 dB up to 94 dB.
	IconCaution
	// IconAlarm marks levels of 94 dB and above.
	IconAlarm
)

// String returns the emoji used by the web UI.
func (i Icon) String() string {
	switch i {
	case IconOK:
		return "✅"
	case IconCaution:
		return "⚠️"
	default:
		return "🚨"
	}
}

// Exposure is the permissible-exposure band of a level. MessageKey names the
// translated warning text.
type Exposure struct {
	Band       int
	Icon       Icon
	MessageKey string
}

type exposureBand struct {
	below float64
	key   string
}

// Upper bounds are exclusive; anything at or above the last bound is
// immediate danger.
var exposureBands = []exposureBand{
	{40, "warningVeryQuiet"},
	{70, "warningSafe"},
	{85, "warningExtended"},
	{88, "warning8h"},
	{91, "warning4h"},
	{94, "warning2h"},
	{97, "warning1h"},
	{100, "warning30m"},
	{103, "warning15m"},
	{106, "warning7m"},
	{109, "warning3m"},
	{112, "warning1m"},
	{115, "warningLess1m"},
	{math.Inf(1), "warningImmediate"},
}

// ExposureBands is the number of distinct exposure bands.
var ExposureBands = len(exposureBands)

// ClassifyExposure returns the exposure band of db.
func ClassifyExposure(db float64) Exposure {
	band := len(exposureBands) - 1
	for i, b := range exposureBands {
		if db < b.below {
			band = i
			break
		}
	}
	icon := IconAlarm
	switch {
	case db < 70:
		icon = IconOK
	case db < 94:
		icon = IconCaution
	}
	return Exposure{Band: band, Icon: icon, MessageKey: exposureBands[band].key}
}

// Level is the display state of a live reading.
type Level struct {
	// StatusKey names the headline status text.
	StatusKey string
	// LabelKey names the heading of the exposure box.
	LabelKey string
	// Percent fills the level bar, db/130 capped at 100.
	Percent float64
}

// ClassifyLevel returns the display state of db.
func ClassifyLevel(db float64) Level {
	l := Level{Percent: math.Min(db/MaxDb*100, 100)}
	switch {
	case db < 40:
		l.StatusKey, l.LabelKey = "statusQuiet", "labelStatus"
	case db < 70:
		l.StatusKey, l.LabelKey = "statusModerate", "labelStatus"
	case db < 85:
		l.StatusKey, l.LabelKey = "statusElevated", "labelCaution"
	case db < 100:
		l.StatusKey, l.LabelKey = "statusLoud", "labelWarning"
	default:
		l.StatusKey, l.LabelKey = "statusVeryLoud", "labelDanger"
	}
	return l
}

// Verdict is the overall rating of a finished measurement.
type Verdict int

const (
	// VerdictSafe is an average below 70 dB.
	VerdictSafe Verdict = iota
	// VerdictCaution is an average from 70 dB up to 85 dB.
	VerdictCaution
	// VerdictHigh is an average of 85 dB or more.
	VerdictHigh
)

// Key returns the translation key of the verdict.
func (v Verdict) Key() string {
	switch v {
	case VerdictSafe:
		return "reportSafe"
	case VerdictCaution:
		return "reportCaution"
	default:
		return "reportHigh"
	}
}

func (v Verdict) String() string {
	switch v {
	case VerdictSafe:
		return "safe"
	case VerdictCaution:
		return "caution"
	default:
		return "high"
	}
}

// ClassifyReport rates a measurement by its average level.
func ClassifyReport(avg float64) Verdict {
	switch {
	case avg < 70:
		return VerdictSafe
	case avg < 85:
		return VerdictCaution
	default:
		return VerdictHigh
	}
}
