package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-audiocheck/internal/cli"
	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
)

var (
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D4FF"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

const barWidth = 30

func renderHeader(subtitle string) string {
	return cli.TitleStyle.Render("Hearing test 👂") + "\n" + hintStyle.Render(subtitle) + "\n\n"
}

func renderQuestionnaire(m Model) string {
	var (
		question string
		options  []string
	)
	switch m.Step {
	case StepAge:
		question, options = "How old are you?", AgeGroups
	case StepGender:
		question = "Gender"
		for _, g := range Genders {
			options = append(options, string(g))
		}
	default:
		question, options = "What are you listening with?", Devices
	}

	var b strings.Builder
	b.WriteString(renderHeader(fmt.Sprintf("Question %d of 3", int(m.Step)+1)))
	b.WriteString(cli.ValueStyle.Render(question))
	b.WriteString("\n\n")
	for i, opt := range options {
		if i == m.Cursor {
			b.WriteString(cursorStyle.Render("› " + opt))
		} else {
			b.WriteString("  " + opt)
		}
		b.WriteString("\n")
	}
	b.WriteString(renderError(m))
	b.WriteString("\n" + hintStyle.Render("↑/↓ choose • enter select • q quit"))
	return b.String()
}

func renderCalibration(m Model) string {
	var b strings.Builder
	b.WriteString(renderHeader("Calibration"))
	b.WriteString("Put on your headphones and play the calibration sound.\n")
	b.WriteString("Set your system volume so it is clearly audible but comfortable.\n\n")
	if m.Calibrating {
		b.WriteString(cursorStyle.Render("♪ playing calibration sound"))
		b.WriteString("\n")
	}
	b.WriteString(renderError(m))
	b.WriteString("\n" + hintStyle.Render("p play • enter start test • q quit"))
	return b.String()
}

func renderTest(m Model) string {
	s := m.Snapshot

	var b strings.Builder
	b.WriteString(renderHeader(fmt.Sprintf("%s ear • %d Hz", earName(s.Ear), s.Frequency)))

	if s.State == audiometry.StateIntermission {
		b.WriteString("Left ear done. Switch attention to your right ear.\n\n")
		b.WriteString(hintStyle.Render("enter continue • q quit"))
		return b.String()
	}

	b.WriteString(cli.KeyStyle.Render("Level    "))
	b.WriteString(renderBar(float64(s.Level)/audiometry.MaxLevel, barWidth))
	b.WriteString(fmt.Sprintf(" %3d\n", s.Level))
	b.WriteString(cli.KeyStyle.Render("Progress "))
	b.WriteString(renderBar(s.Progress/100, barWidth))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n\n", s.Progress))

	switch {
	case s.Advancing:
		b.WriteString(cursorStyle.Render("✓ recorded"))
	case s.Level == 0:
		b.WriteString("Raise the level until you just hear the beeps.")
	default:
		b.WriteString("Press space as soon as you hear the beeps.")
	}
	b.WriteString("\n\n" + hintStyle.Render("↑/↓ level • space I hear it • q quit"))
	return b.String()
}

func renderDone(m Model) string {
	s := m.Snapshot
	if s.Score == nil {
		return renderHeader("Complete")
	}
	return cli.HearingScore(s.Result, *s.Score) + "\n" + hintStyle.Render("enter quit")
}

func earName(ear audiometry.Ear) string {
	if ear == audiometry.Right {
		return "Right"
	}
	return "Left"
}

func renderError(m Model) string {
	if m.Err == nil {
		return ""
	}
	return "\n" + cli.ErrorStyle.Render("Error: ") + m.Err.Error() + "\n"
}

// renderBar renders a progress bar of width cells filled to fraction.
func renderBar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction * float64(width))
	return barStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled))
}
