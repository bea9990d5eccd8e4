package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
	"github.com/cwbudde/algo-audiocheck/measure/spl"
)

// messages maps the meter's message keys to English text.
var messages = map[string]string{
	"warningVeryQuiet": "Very quiet. No risk to hearing.",
	"warningSafe":      "Safe for unlimited exposure.",
	"warningExtended":  "Safe, but extended exposure may cause fatigue.",
	"warning8h":        "Safe for up to 8 hours per day.",
	"warning4h":        "Safe for up to 4 hours per day.",
	"warning2h":        "Safe for up to 2 hours per day.",
	"warning1h":        "Safe for up to 1 hour per day.",
	"warning30m":       "Safe for up to 30 minutes per day.",
	"warning15m":       "Safe for up to 15 minutes per day.",
	"warning7m":        "Safe for up to 7 minutes per day.",
	"warning3m":        "Safe for up to 3 minutes per day.",
	"warning1m":        "Safe for up to 1 minute per day.",
	"warningLess1m":    "Safe for less than 1 minute per day.",
	"warningImmediate": "Immediate risk of hearing damage!",
	"statusQuiet":      "Quiet",
	"statusModerate":   "Moderate",
	"statusElevated":   "Elevated",
	"statusLoud":       "Loud",
	"statusVeryLoud":   "Very loud",
	"reportSafe":       "Safe listening environment.",
	"reportCaution":    "Moderate exposure. Take regular breaks.",
	"reportHigh":       "High exposure. Consider hearing protection.",
}

// Message returns the English text of a message key, or the key itself.
func Message(key string) string {
	if s, ok := messages[key]; ok {
		return s
	}
	return key
}

func row(sb *strings.Builder, key, value string) {
	sb.WriteString(KeyStyle.Render(fmt.Sprintf("%-10s", key)))
	sb.WriteString(" ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

func db(v float64) string {
	return ValueStyle.Render(fmt.Sprintf("%5.1f dB", v))
}

// MeterReport renders a finished sound meter measurement. peak is the
// recording's sample peak in dBFS.
func MeterReport(source string, seconds, peak float64, rep spl.Report) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Sound meter 🔊"))
	sb.WriteString("\n")
	row(&sb, "Source", ValueStyle.Render(source))
	row(&sb, "Duration", ValueStyle.Render(fmt.Sprintf("%.1f s", seconds)))
	row(&sb, "Peak", ValueStyle.Render(fmt.Sprintf("%.1f dBFS", peak)))
	row(&sb, "Readings", ValueStyle.Render(fmt.Sprintf("%d", rep.Samples)))
	row(&sb, "Minimum", db(rep.Min))
	row(&sb, "Average", db(rep.Avg))
	row(&sb, "Maximum", db(rep.Max))
	row(&sb, "Final", db(rep.Final)+" "+KeyStyle.Render(Message(rep.Status.StatusKey)))

	style := IconStyle(rep.Exposure.Icon)
	verdict := lipgloss.JoinVertical(lipgloss.Left,
		style.Render(rep.Exposure.Icon.String()+" "+Message(rep.Exposure.MessageKey)),
		Message(rep.Verdict.Key()),
	)
	sb.WriteString(BoxStyle.BorderForeground(style.GetForeground()).Render(verdict))
	sb.WriteString("\n")
	return sb.String()
}

// Audiogram renders the thresholds of both ears as a table.
func Audiogram(res audiometry.Result) string {
	var sb strings.Builder
	sb.WriteString(KeyStyle.Render(fmt.Sprintf("%-8s", "Hz")))
	for _, ear := range []audiometry.Ear{audiometry.Left, audiometry.Right} {
		sb.WriteString(KeyStyle.Render(fmt.Sprintf("%8s", ear)))
	}
	sb.WriteString("\n")

	left := res.Audiogram(audiometry.Left)
	right := res.Audiogram(audiometry.Right)
	for i := range left {
		sb.WriteString(fmt.Sprintf("%-8d", left[i].Frequency))
		for _, th := range []audiometry.Threshold{left[i], right[i]} {
			if !th.Tested {
				sb.WriteString(KeyStyle.Render(fmt.Sprintf("%8s", "-")))
				continue
			}
			sb.WriteString(ValueStyle.Render(fmt.Sprintf("%8.0f", th.DB)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HearingScore renders the score of a completed hearing test.
func HearingScore(res audiometry.Result, s audiometry.Score) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Hearing test 👂"))
	sb.WriteString("\n")
	sb.WriteString(Audiogram(res))
	sb.WriteString("\n")
	row(&sb, "Left", ValueStyle.Render(fmt.Sprintf("%.0f dB HL", s.Left.PTA))+" "+KeyStyle.Render(s.Left.Class.String()))
	row(&sb, "Right", ValueStyle.Render(fmt.Sprintf("%.0f dB HL", s.Right.PTA))+" "+KeyStyle.Render(s.Right.Class.String()))
	row(&sb, "Age", ValueStyle.Render(fmt.Sprintf("%d", s.HearingAge)))
	sb.WriteString(BoxStyle.Render(s.Comment.String()))
	sb.WriteString("\n")
	return sb.String()
}
