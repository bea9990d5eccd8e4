package webdemo

import (
	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
	"github.com/cwbudde/algo-audiocheck/measure/spl"
)

// SpeakerState is the plain-data view of the speaker test.
type SpeakerState struct {
	Action    string  `json:"action"`
	Frequency float64 `json:"frequency"`
	Sweeping  bool    `json:"sweeping"`
	SweepFrac float64 `json:"sweepProgress"`
	SweepHz   float64 `json:"sweepFrequency"`
}

// MeterState is the plain-data view of the sound meter.
type MeterState struct {
	Running  bool    `json:"running"`
	DB       float64 `json:"db"`
	Min      float64 `json:"min"`
	Avg      float64 `json:"avg"`
	Max      float64 `json:"max"`
	Samples  int     `json:"samples"`
	Status   string  `json:"status"`
	Label    string  `json:"label"`
	Percent  float64 `json:"percent"`
	Exposure string  `json:"exposure"`
	Icon     string  `json:"icon"`
}

// ReportState is the plain-data view of a finished measurement.
type ReportState struct {
	Min      float64 `json:"min"`
	Avg      float64 `json:"avg"`
	Max      float64 `json:"max"`
	Final    float64 `json:"final"`
	Samples  int     `json:"samples"`
	Exposure string  `json:"exposure"`
	Icon     string  `json:"icon"`
	Verdict  string  `json:"verdict"`
}

// ThresholdState is one audiogram point.
type ThresholdState struct {
	Frequency int     `json:"frequency"`
	DB        float64 `json:"db"`
	Tested    bool    `json:"tested"`
}

// EarState is the score of one ear.
type EarState struct {
	PTA   float64 `json:"pta"`
	Class string  `json:"class"`
	HFA   float64 `json:"hfa"`
}

// ScoreState is the plain-data view of a hearing score.
type ScoreState struct {
	Left       EarState `json:"left"`
	Right      EarState `json:"right"`
	HearingAge int      `json:"hearingAge"`
	Comment    string   `json:"comment"`
}

// HearingState is the plain-data view of the hearing test.
type HearingState struct {
	State     string           `json:"state"`
	Ear       string           `json:"ear"`
	Frequency int              `json:"frequency"`
	Level     int              `json:"level"`
	Progress  float64          `json:"progress"`
	Advancing bool             `json:"advancing"`
	Left      []ThresholdState `json:"left"`
	Right     []ThresholdState `json:"right"`
	Score     *ScoreState      `json:"score,omitempty"`
}

// SpeakerState returns the speaker test state.
func (e *Engine) SpeakerState() SpeakerState {
	s := SpeakerState{
		Action:    e.Speaker.Action().String(),
		Frequency: e.Speaker.Frequency(),
	}
	s.SweepFrac, s.SweepHz, s.Sweeping = e.Speaker.SweepProgress()
	return s
}

// MeterState returns the live sound meter reading.
func (e *Engine) MeterState() MeterState {
	r := e.Meter.Reading()
	lvl := spl.ClassifyLevel(r.DB)
	exp := spl.ClassifyExposure(r.Avg)
	return MeterState{
		Running:  e.Meter.Running(),
		DB:       r.DB,
		Min:      r.Min,
		Avg:      r.Avg,
		Max:      r.Max,
		Samples:  r.Samples,
		Status:   lvl.StatusKey,
		Label:    lvl.LabelKey,
		Percent:  lvl.Percent,
		Exposure: exp.MessageKey,
		Icon:     exp.Icon.String(),
	}
}

func newReportState(rep spl.Report) ReportState {
	return ReportState{
		Min:      rep.Min,
		Avg:      rep.Avg,
		Max:      rep.Max,
		Final:    rep.Final,
		Samples:  rep.Samples,
		Exposure: rep.Exposure.MessageKey,
		Icon:     rep.Exposure.Icon.String(),
		Verdict:  rep.Verdict.Key(),
	}
}

// HearingState returns the hearing test state.
func (e *Engine) HearingState() HearingState {
	snap := e.Hearing.Snapshot()
	s := HearingState{
		State:     snap.State.String(),
		Ear:       snap.Ear.String(),
		Frequency: snap.Frequency,
		Level:     snap.Level,
		Progress:  snap.Progress,
		Advancing: snap.Advancing,
		Left:      thresholds(snap.Result, audiometry.Left),
		Right:     thresholds(snap.Result, audiometry.Right),
	}
	if snap.Score != nil {
		sc := snap.Score
		s.Score = &ScoreState{
			Left:       EarState{PTA: sc.Left.PTA, Class: sc.Left.Class.String(), HFA: sc.Left.HFA},
			Right:      EarState{PTA: sc.Right.PTA, Class: sc.Right.Class.String(), HFA: sc.Right.HFA},
			HearingAge: sc.HearingAge,
			Comment:    sc.Comment.String(),
		}
	}
	return s
}

func thresholds(r audiometry.Result, ear audiometry.Ear) []ThresholdState {
	pts := r.Audiogram(ear)
	out := make([]ThresholdState, len(pts))
	for i, p := range pts {
		out[i] = ThresholdState{Frequency: p.Frequency, DB: p.DB, Tested: p.Tested}
	}
	return out
}
