// Package tui provides the Bubbletea terminal interface of the hearing test.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
)

// HearingTest is the command surface the interface drives.
type HearingTest interface {
	SubmitProfile(audiometry.UserProfile) error
	PlayCalibration() error
	ConfirmCalibration()
	StepUp() bool
	StepDown() bool
	Confirm() bool
	Resume() bool
	Snapshot() audiometry.Snapshot
}

// Step is a screen of the interface.
type Step int

const (
	StepAge Step = iota
	StepGender
	StepDevice
	StepCalibration
	StepTest
	StepDone
)

// Questionnaire choices.
var (
	AgeGroups = []string{"18-29", "30-39", "40-49", "50-59", "60-69", "70+"}
	Genders   = []audiometry.Gender{audiometry.GenderMale, audiometry.GenderFemale, audiometry.GenderOther}
	Devices   = []string{audiometry.DefaultDevice, "in-ear", "speakers"}
)

// Model is the Bubbletea model of the hearing test.
type Model struct {
	test HearingTest

	Step    Step
	Cursor  int
	Profile audiometry.UserProfile

	Snapshot    audiometry.Snapshot
	Calibrating bool
	Err         error

	Width  int
	Height int
}

// NewModel creates a model driving test.
func NewModel(test HearingTest) Model {
	return Model{test: test, Profile: audiometry.UserProfile{Device: audiometry.DefaultDevice}}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		if m.Step != StepTest {
			return m, nil
		}
		m.refresh()
		if m.Step == StepDone {
			return m, nil
		}
		return m, tick()

	case calibrationMsg:
		m.Err = msg.err
		m.Calibrating = msg.err == nil
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
		return m.handleKey(msg.String())
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch m.Step {
	case StepAge:
		m.choose(key, len(AgeGroups), func(i int) { m.Profile.AgeGroup = AgeGroups[i] })
	case StepGender:
		m.choose(key, len(Genders), func(i int) { m.Profile.Gender = Genders[i] })
	case StepDevice:
		m.choose(key, len(Devices), func(i int) { m.Profile.Device = Devices[i] })
		if m.Step == StepCalibration {
			if err := m.test.SubmitProfile(m.Profile); err != nil {
				m.Err = err
				m.Step = StepAge
			}
		}
	case StepCalibration:
		switch key {
		case "p", " ":
			test := m.test
			return m, func() tea.Msg {
				return calibrationMsg{err: test.PlayCalibration()}
			}
		case "enter":
			m.test.ConfirmCalibration()
			m.Calibrating = false
			m.Step = StepTest
			m.refresh()
			return m, tick()
		}
	case StepTest:
		switch key {
		case "up", "k", "+", "right", "l":
			m.test.StepUp()
		case "down", "j", "-", "left", "h":
			m.test.StepDown()
		case " ", "enter":
			if m.Snapshot.State == audiometry.StateIntermission {
				m.test.Resume()
			} else {
				m.test.Confirm()
			}
		}
		m.refresh()
	case StepDone:
		if key == "enter" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// choose moves the cursor through n options and advances on enter.
func (m *Model) choose(key string, n int, pick func(int)) {
	switch key {
	case "up", "k":
		m.Cursor = (m.Cursor + n - 1) % n
	case "down", "j", "tab":
		m.Cursor = (m.Cursor + 1) % n
	case "enter", " ":
		pick(m.Cursor)
		m.Err = nil
		m.Cursor = 0
		m.Step++
	}
}

func (m *Model) refresh() {
	m.Snapshot = m.test.Snapshot()
	if m.Snapshot.State == audiometry.StateComplete {
		m.Step = StepDone
	}
}

// View renders the current screen.
func (m Model) View() string {
	switch m.Step {
	case StepAge, StepGender, StepDevice:
		return renderQuestionnaire(m)
	case StepCalibration:
		return renderCalibration(m)
	case StepTest:
		return renderTest(m)
	default:
		return renderDone(m)
	}
}
