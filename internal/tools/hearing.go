package tools

import (
	"errors"
	"sync"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/audio/synth"
	"github.com/cwbudde/algo-audiocheck/internal/telemetry"
	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
)

// ErrIncompleteProfile is returned when the questionnaire lacks the age
// group or gender.
var ErrIncompleteProfile = errors.New("tools: age group and gender are required")

// Hearing is the hearing test: questionnaire, calibration sound, then the
// pulsed threshold protocol.
type Hearing struct {
	sess  *session.Session
	proto *audiometry.Protocol
	tel   telemetry.Sink

	mu    sync.Mutex
	calib *synth.Noise
}

// NewHearing creates a hearing test with its own session. Its master gain
// is unity so protocol levels map straight to output gain.
func NewHearing(tel telemetry.Sink, sessOpts []session.Option, opts ...audiometry.Option) *Hearing {
	if tel == nil {
		tel = telemetry.Nop{}
	}
	sessOpts = append([]session.Option{session.WithMasterGain(1)}, sessOpts...)
	sess := session.New(sessOpts...)
	opts = append([]audiometry.Option{audiometry.WithTelemetry(tel)}, opts...)
	return &Hearing{
		sess:  sess,
		proto: audiometry.NewProtocol(sess, opts...),
		tel:   tel,
	}
}

// Session returns the test's audio session.
func (h *Hearing) Session() *session.Session {
	return h.sess
}

// Protocol returns the underlying state machine.
func (h *Hearing) Protocol() *audiometry.Protocol {
	return h.proto
}

// Render pulls interleaved stereo output.
func (h *Hearing) Render(dst []float32) (int, error) {
	return h.sess.Render(dst)
}

// SubmitProfile stores the questionnaire answers.
func (h *Hearing) SubmitProfile(p audiometry.UserProfile) error {
	if !p.Complete() {
		return ErrIncompleteProfile
	}
	if p.Device == "" {
		p.Device = audiometry.DefaultDevice
	}
	h.proto.SetProfile(p)
	h.tel.Event(audiometry.EventQuestionnaireComplete, map[string]any{
		"age_group": p.AgeGroup,
		"gender":    string(p.Gender),
		"device":    p.Device,
	})
	return nil
}

// PlayCalibration plays the two-second rumble used to set the volume.
func (h *Hearing) PlayCalibration() error {
	n, err := synth.PlayCalibration(h.sess)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.calib = n
	h.mu.Unlock()
	h.tel.Event(audiometry.EventCalibrationPlay, nil)
	return nil
}

// ConfirmCalibration ends calibration and starts the test on the left ear.
func (h *Hearing) ConfirmCalibration() {
	h.mu.Lock()
	calib := h.calib
	h.calib = nil
	h.mu.Unlock()
	if calib != nil {
		calib.Stop()
	}
	h.tel.Event(audiometry.EventCalibrationComplete, nil)
	h.proto.Start()
}

// StepUp raises the level by one step.
func (h *Hearing) StepUp() bool { return h.proto.StepUp() }

// StepDown lowers the level by one step.
func (h *Hearing) StepDown() bool { return h.proto.StepDown() }

// SetLevel sets the operator level.
func (h *Hearing) SetLevel(level int) bool { return h.proto.SetLevel(level) }

// Confirm records the current threshold.
func (h *Hearing) Confirm() bool { return h.proto.Confirm() }

// Resume starts the right ear after the intermission.
func (h *Hearing) Resume() bool { return h.proto.Resume() }

// Snapshot returns the protocol state.
func (h *Hearing) Snapshot() audiometry.Snapshot { return h.proto.Snapshot() }

// Score returns the score of a completed test.
func (h *Hearing) Score() (audiometry.Score, bool) { return h.proto.Score() }

// Close abandons the test and releases the session.
func (h *Hearing) Close() error {
	h.proto.Stop()
	return h.sess.Close()
}
