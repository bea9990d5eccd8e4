package server

import "github.com/cwbudde/algo-audiocheck/measure/spl"

// LevelMessage carries the live reading, pushed while the meter runs.
type LevelMessage struct {
	Type     string  `json:"type"`
	DB       float64 `json:"db"`
	Min      float64 `json:"min"`
	Avg      float64 `json:"avg"`
	Max      float64 `json:"max"`
	Status   string  `json:"status"`
	Percent  float64 `json:"percent"`
	Exposure string  `json:"exposure"`
	Icon     string  `json:"icon"`
}

// SpectrumMessage carries bar heights in [0, 1].
type SpectrumMessage struct {
	Type string    `json:"type"`
	Bars []float64 `json:"bars"`
}

// ReportMessage carries the result of a finished measurement.
type ReportMessage struct {
	Type     string  `json:"type"`
	Min      float64 `json:"min"`
	Avg      float64 `json:"avg"`
	Max      float64 `json:"max"`
	Final    float64 `json:"final"`
	Samples  int     `json:"samples"`
	Trimmed  bool    `json:"trimmed"`
	Exposure string  `json:"exposure"`
	Verdict  string  `json:"verdict"`
}

func levelMessage(r spl.Reading) LevelMessage {
	lvl := spl.ClassifyLevel(r.DB)
	exp := spl.ClassifyExposure(r.Avg)
	return LevelMessage{
		Type:     "level",
		DB:       r.DB,
		Min:      r.Min,
		Avg:      r.Avg,
		Max:      r.Max,
		Status:   lvl.StatusKey,
		Percent:  lvl.Percent,
		Exposure: exp.MessageKey,
		Icon:     exp.Icon.String(),
	}
}

func reportMessage(rep spl.Report) ReportMessage {
	return ReportMessage{
		Type:     "report",
		Min:      rep.Min,
		Avg:      rep.Avg,
		Max:      rep.Max,
		Final:    rep.Final,
		Samples:  rep.Samples,
		Trimmed:  rep.Trimmed,
		Exposure: rep.Exposure.MessageKey,
		Verdict:  rep.Verdict.Key(),
	}
}
