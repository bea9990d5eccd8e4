package audiometry

import "math"

// Class is a hearing-loss category of a pure-tone average.
type Class int

const (
	ClassNormal Class = iota
	ClassMild
	ClassModerate
	ClassSevere
	ClassProfound
)

func (c Class) String() string {
	switch c {
	case ClassNormal:
		return "Normal"
	case ClassMild:
		return "Mild"
	case ClassModerate:
		return "Moderate"
	case ClassSevere:
		return "Severe"
	default:
		return "Profound"
	}
}

// Classify returns the category of a pure-tone average in dB HL.
func Classify(pta float64) Class {
	switch {
	case pta <= 20:
		return ClassNormal
	case pta <= 40:
		return ClassMild
	case pta <= 60:
		return ClassModerate
	case pta <= 80:
		return ClassSevere
	default:
		return ClassProfound
	}
}

// Frequencies averaged into the speech-range PTA and the high-frequency
// average.
var (
	PTAFrequencies = []int{500, 1000, 2000, 4000}
	HFAFrequencies = []int{2000, 4000, 8000}
)

// Hearing-age bounds in years.
const (
	MinHearingAge = 18
	MaxHearingAge = 90
)

// HearingAge estimates an age from the average high-frequency threshold:
// 20 years up to 10 dB, 1.2 years per dB above, 5 years more for women.
func HearingAge(avgHFA float64, gender Gender) int {
	age := 20 + math.Max(0, avgHFA-10)*1.2
	if gender == GenderFemale {
		age += 5
	}
	return max(MinHearingAge, min(MaxHearingAge, int(round(age))))
}

// AgeComment rates a hearing age.
type AgeComment int

const (
	// AgeExcellent is a hearing age of 30 or less.
	AgeExcellent AgeComment = iota
	// AgeGood is a hearing age of 50 or less.
	AgeGood
	// AgeAging is anything older.
	AgeAging
)

// CommentFor rates age.
func CommentFor(age int) AgeComment {
	switch {
	case age <= 30:
		return AgeExcellent
	case age <= 50:
		return AgeGood
	default:
		return AgeAging
	}
}

func (c AgeComment) String() string {
	switch c {
	case AgeExcellent:
		return "Excellent! Your ears are young."
	case AgeGood:
		return "Good. Normal for an adult."
	default:
		return "Signs of aging detected. Protect your ears."
	}
}

// EarScore summarises one ear.
type EarScore struct {
	PTA   float64
	Class Class
	HFA   float64
}

// Score is the aggregate outcome of a test.
type Score struct {
	Left       EarScore
	Right      EarScore
	AvgHFA     float64
	HearingAge int
	Comment    AgeComment
}

// ScoreResult scores r for profile. Untested frequencies count as 0 dB.
func ScoreResult(r Result, profile UserProfile) Score {
	ear := func(e Ear) EarScore {
		pta := r.mean(e, PTAFrequencies...)
		return EarScore{PTA: pta, Class: Classify(pta), HFA: r.mean(e, HFAFrequencies...)}
	}
	s := Score{Left: ear(Left), Right: ear(Right)}
	s.AvgHFA = (s.Left.HFA + s.Right.HFA) / 2
	s.HearingAge = HearingAge(s.AvgHFA, profile.Gender)
	s.Comment = CommentFor(s.HearingAge)
	return s
}

// round rounds half up.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
