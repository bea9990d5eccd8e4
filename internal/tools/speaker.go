package tools

import (
	"sync"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/audio/synth"
)

// Action is what the speaker test is currently playing.
type Action int

const (
	ActionNone Action = iota
	ActionStereoLeft
	ActionStereoRight
	ActionTone
	ActionFrequency
	ActionSweep
	ActionWhiteNoise
	ActionPinkNoise
	ActionInPhase
	ActionOutOfPhase
)

var actionNames = map[Action]string{
	ActionNone:        "none",
	ActionStereoLeft:  "stereo-left",
	ActionStereoRight: "stereo-right",
	ActionTone:        "tone",
	ActionFrequency:   "frequency",
	ActionSweep:       "sweep",
	ActionWhiteNoise:  "white-noise",
	ActionPinkNoise:   "pink-noise",
	ActionInPhase:     "in-phase",
	ActionOutOfPhase:  "out-of-phase",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// DefaultToneFrequency is the initial tone generator setting.
const DefaultToneFrequency = 1000.0

// ChallengeGain is the level of the fixed-frequency challenge tones.
const ChallengeGain = 0.5

// Speaker is the speaker and headphone diagnostic. Invoking the action that
// is already playing stops it; any other action replaces it.
type Speaker struct {
	sess *session.Session

	mu        sync.Mutex
	action    Action
	voice     synth.Voice
	tone      *synth.Tone
	sweep     *synth.Sweep
	freq      float64
	challenge float64
}

// NewSpeaker creates a speaker test with its own session.
func NewSpeaker(opts ...session.Option) *Speaker {
	return &Speaker{sess: session.New(opts...), freq: DefaultToneFrequency}
}

// Session returns the audio session rendered by the output device.
func (s *Speaker) Session() *session.Session {
	return s.sess
}

// Render pulls interleaved stereo output.
func (s *Speaker) Render(dst []float32) (int, error) {
	return s.sess.Render(dst)
}

// Action returns the playing action; one-shot signals that have ended
// report ActionNone.
func (s *Speaker) Action() Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	return s.action
}

func (s *Speaker) syncLocked() {
	if s.voice != nil && !s.voice.Active() {
		s.clearLocked()
	}
}

func (s *Speaker) clearLocked() {
	s.action = ActionNone
	s.voice = nil
	s.tone = nil
	s.sweep = nil
	s.challenge = 0
}

// StopAll silences every signal.
func (s *Speaker) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Speaker) stopLocked() {
	if s.voice != nil {
		s.voice.Stop()
	}
	s.clearLocked()
}

// toggle stops when a is already playing, otherwise starts it with play.
// It reports whether a is playing afterwards.
func (s *Speaker) toggle(a Action, play func() (synth.Voice, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	if s.action == a {
		s.stopLocked()
		return false, nil
	}
	s.stopLocked()
	v, err := play()
	if err != nil {
		return false, err
	}
	s.action = a
	s.voice = v
	return true, nil
}

// Stereo plays the channel identification tone on side.
func (s *Speaker) Stereo(side synth.Side) (bool, error) {
	a := ActionStereoLeft
	if side == synth.Right {
		a = ActionStereoRight
	}
	return s.toggle(a, func() (synth.Voice, error) {
		return voiceOf(synth.ChannelCheck(s.sess, side))
	})
}

// ToggleTone plays a continuous tone at the current frequency.
func (s *Speaker) ToggleTone() (bool, error) {
	return s.toggle(ActionTone, func() (synth.Voice, error) {
		t, err := synth.PlayTone(s.sess, synth.ToneSpec{Frequency: s.freq, Gain: 1})
		if err != nil {
			return nil, err
		}
		s.tone = t
		return t, nil
	})
}

// Frequency returns the tone generator frequency.
func (s *Speaker) Frequency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.freq
}

// SetFrequency retunes the tone generator, live when it is playing.
func (s *Speaker) SetFrequency(hz float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !(hz > 0) {
		return synth.ErrInvalidFrequency
	}
	s.freq = hz
	if s.action == ActionTone && s.tone != nil {
		return s.tone.SetFrequency(hz)
	}
	return nil
}

// PlayFrequency plays a fixed challenge tone; the same frequency again
// stops it.
func (s *Speaker) PlayFrequency(hz float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	if s.action == ActionFrequency && s.challenge == hz {
		s.stopLocked()
		return false, nil
	}
	s.stopLocked()
	t, err := synth.PlayTone(s.sess, synth.ToneSpec{Frequency: hz, Gain: ChallengeGain})
	if err != nil {
		return false, err
	}
	s.action = ActionFrequency
	s.voice = t
	s.tone = t
	s.challenge = hz
	return true, nil
}

// ToggleSweep plays the 20 Hz to 20 kHz sweep.
func (s *Speaker) ToggleSweep() (bool, error) {
	return s.toggle(ActionSweep, func() (synth.Voice, error) {
		sw, err := synth.StartSweep(s.sess)
		if err != nil {
			return nil, err
		}
		s.sweep = sw
		return sw, nil
	})
}

// SweepProgress returns the sweep position while it plays.
func (s *Speaker) SweepProgress() (fraction, hz float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	if s.sweep == nil {
		return 0, 0, false
	}
	fraction, hz = s.sweep.Progress()
	return fraction, hz, true
}

// ToggleNoise loops white or pink noise.
func (s *Speaker) ToggleNoise(color synth.Color) (bool, error) {
	a := ActionWhiteNoise
	if color == synth.Pink {
		a = ActionPinkNoise
	}
	return s.toggle(a, func() (synth.Voice, error) {
		return voiceOf(synth.PlayNoise(s.sess, color))
	})
}

// TogglePolarity plays the phase check, inverted on the right channel when
// inverted is set.
func (s *Speaker) TogglePolarity(inverted bool) (bool, error) {
	a := ActionInPhase
	if inverted {
		a = ActionOutOfPhase
	}
	return s.toggle(a, func() (synth.Voice, error) {
		return voiceOf(synth.Polarity(s.sess, inverted))
	})
}

// Waveform fills dst with the output waveform as analyser bytes (128 is
// zero) and reports whether anything is playing.
func (s *Speaker) Waveform(dst []byte) bool {
	a := s.sess.Analyser()
	if a == nil || s.Action() == ActionNone {
		for i := range dst {
			dst[i] = 128
		}
		return false
	}
	a.ByteTimeDomainData(dst)
	return true
}

// Close stops playback and releases the session.
func (s *Speaker) Close() error {
	s.StopAll()
	return s.sess.Close()
}

// voiceOf avoids storing a typed nil in the Voice interface.
func voiceOf[V synth.Voice](v V, err error) (synth.Voice, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
