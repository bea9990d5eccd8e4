// Package cli holds the terminal styling and report formatting of the
// audiocheck command.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-audiocheck/measure/spl"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#00D4FF") // Spectrum cyan
	mutedColor   = lipgloss.Color("#888888") // Gray
	textColor    = lipgloss.Color("#FFFFFF") // White
	okColor      = lipgloss.Color("#2ECC71")
	cautionColor = lipgloss.Color("#F39C12")
	alarmColor   = lipgloss.Color("#E74C3C")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(alarmColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// IconStyle returns the style matching an exposure icon.
func IconStyle(icon spl.Icon) lipgloss.Style {
	c := alarmColor
	switch icon {
	case spl.IconOK:
		c = okColor
	case spl.IconCaution:
		c = cautionColor
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

// PrintVersion prints version information
func PrintVersion(w io.Writer, version string) {
	fmt.Fprintln(w, TitleStyle.Render("audiocheck 🎧"))
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Fprintln(w)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
