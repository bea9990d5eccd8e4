package audiometry

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/audio/synth"
	"github.com/cwbudde/algo-audiocheck/internal/sched"
	"github.com/cwbudde/algo-audiocheck/internal/telemetry"
)

// Telemetry events emitted by a hearing test.
const (
	EventTestStart             = "hearing_test_start"
	EventQuestionnaireComplete = "hearing_questionnaire_complete"
	EventCalibrationPlay       = "hearing_calibration_play"
	EventCalibrationComplete   = "hearing_calibration_complete"
	EventTestComplete          = "hearing_test_complete"
)

// State of a Protocol.
type State int

const (
	// StateIdle is before Start or after Stop.
	StateIdle State = iota
	// StatePulsing plays the current frequency at level 0.
	StatePulsing
	// StateAwaitingConfirm plays at a level above 0; Confirm is accepted.
	StateAwaitingConfirm
	// StateIntermission waits for Resume between the ears.
	StateIntermission
	// StateComplete holds the final result and score.
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePulsing:
		return "pulsing"
	case StateAwaitingConfirm:
		return "awaiting-confirm"
	case StateIntermission:
		return "intermission"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Config controls pulse timing and collaborators.
type Config struct {
	// PulsePeriod is the time between pulse starts.
	PulsePeriod time.Duration
	// PulseLength is the audible part of each pulse.
	PulseLength time.Duration
	// AdvanceDelay is the pause between confirming a threshold and pulsing
	// the next frequency.
	AdvanceDelay time.Duration
	Clock        sched.Clock
	Telemetry    telemetry.Sink
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns 800 ms pulses of 400 ms tone, no advance delay, the
// wall clock and no telemetry.
func DefaultConfig() Config {
	return Config{
		PulsePeriod: 800 * time.Millisecond,
		PulseLength: 400 * time.Millisecond,
		Clock:       sched.RealClock{},
		Telemetry:   telemetry.Nop{},
	}
}

// WithPulse sets the pulse period and tone length. The length must be
// shorter than the period.
func WithPulse(period, length time.Duration) Option {
	return func(cfg *Config) {
		if period > 0 && length > 0 && length < period {
			cfg.PulsePeriod = period
			cfg.PulseLength = length
		}
	}
}

// WithAdvanceDelay pauses between frequencies.
func WithAdvanceDelay(d time.Duration) Option {
	return func(cfg *Config) {
		if d >= 0 {
			cfg.AdvanceDelay = d
		}
	}
}

// WithClock sets the clock driving the pulse loop.
func WithClock(c sched.Clock) Option {
	return func(cfg *Config) {
		if c != nil {
			cfg.Clock = c
		}
	}
}

// WithTelemetry sets the milestone sink.
func WithTelemetry(s telemetry.Sink) Option {
	return func(cfg *Config) {
		if s != nil {
			cfg.Telemetry = s
		}
	}
}

// Snapshot is the plain-data view of a Protocol.
type Snapshot struct {
	State     State
	Ear       Ear
	Frequency int
	Index     int
	Level     int
	Gain      float64
	// Progress is the share of thresholds recorded, 0 to 100.
	Progress float64
	// Advancing is set while waiting out the advance delay.
	Advancing bool
	Result    Result
	Score     *Score
}

// pulser owns the repeating pulse of one frequency. tone is only touched by
// the task callback and the stop hook, which never run concurrently.
type pulser struct {
	task *sched.Task
	tone *synth.Tone
	err  error
}

// Protocol is the hearing test state machine. All methods are safe for
// concurrent use; misuse such as confirming at level 0 is a no-op that
// returns false.
type Protocol struct {
	sess *session.Session
	cfg  Config

	mu      sync.Mutex
	state   State
	ear     Ear
	index   int
	level   atomic.Int64
	result  Result
	score   *Score
	profile UserProfile
	pulse   *pulser
	advance *sched.Task
	gen     uint64
	lastErr error
}

// NewProtocol creates an idle protocol playing through sess.
func NewProtocol(sess *session.Session, opts ...Option) *Protocol {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Protocol{sess: sess, cfg: cfg, result: NewResult()}
}

// SetProfile sets the questionnaire answers used for scoring.
func (p *Protocol) SetProfile(profile UserProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = profile
}

// Profile returns the questionnaire answers.
func (p *Protocol) Profile() UserProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

// Start resets the result and begins pulsing the first frequency on the
// left ear. Starting again restarts the test.
func (p *Protocol) Start() {
	p.mu.Lock()
	advance := p.cancelLocked()
	p.ear = Left
	p.index = 0
	p.result = NewResult()
	p.score = nil
	p.lastErr = nil
	p.beginLocked()
	p.mu.Unlock()

	stopTask(advance)
	p.cfg.Telemetry.Event(EventTestStart, nil)
}

// SetLevel sets the operator level, clamped to 0..MaxLevel, effective from
// the next pulse. Confirm becomes available above 0.
func (p *Protocol) SetLevel(level int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.pulsingLocked() || p.advance != nil {
		return false
	}
	level = clampLevel(level)
	p.level.Store(int64(level))
	if level > 0 {
		p.state = StateAwaitingConfirm
	} else {
		p.state = StatePulsing
	}
	return true
}

// StepUp raises the level by LevelStep.
func (p *Protocol) StepUp() bool {
	return p.SetLevel(p.Level() + LevelStep)
}

// StepDown lowers the level by LevelStep.
func (p *Protocol) StepDown() bool {
	return p.SetLevel(p.Level() - LevelStep)
}

// Level returns the operator level.
func (p *Protocol) Level() int {
	return int(p.level.Load())
}

// Confirm records the current level as the threshold of the current ear and
// frequency, silences the tone and moves on. After the last frequency of the
// left ear the protocol waits in StateIntermission; after the right ear it
// completes and scores the result.
func (p *Protocol) Confirm() bool {
	p.mu.Lock()
	level := p.Level()
	if p.state != StateAwaitingConfirm || level <= 0 || p.advance != nil {
		p.mu.Unlock()
		return false
	}

	p.result.Set(p.ear, Frequencies[p.index], RecordedDb(level))
	p.silenceLocked()
	p.level.Store(0)
	p.index++

	var complete *Score
	switch {
	case p.index < len(Frequencies):
		if p.cfg.AdvanceDelay > 0 {
			p.state = StatePulsing
			gen := p.gen
			p.advance = sched.After(p.cfg.Clock, p.cfg.AdvanceDelay, func() { p.advanceTo(gen) })
		} else {
			p.beginLocked()
		}
	case p.ear == Left:
		p.ear = Right
		p.index = 0
		p.state = StateIntermission
	default:
		p.state = StateComplete
		s := ScoreResult(p.result, p.profile)
		p.score = &s
		complete = &s
	}
	p.mu.Unlock()

	if complete != nil {
		p.cfg.Telemetry.Event(EventTestComplete, map[string]any{
			"hearing_age": complete.HearingAge,
			"left_pta":    int(round(complete.Left.PTA)),
			"right_pta":   int(round(complete.Right.PTA)),
		})
	}
	return true
}

func (p *Protocol) advanceTo(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen || p.advance == nil {
		return
	}
	p.advance = nil
	p.beginLocked()
}

// Resume starts the right ear after the intermission.
func (p *Protocol) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIntermission {
		return false
	}
	p.beginLocked()
	return true
}

// Stop silences the tone and abandons the test. A completed test keeps its
// result and score.
func (p *Protocol) Stop() {
	p.mu.Lock()
	advance := p.cancelLocked()
	if p.state != StateComplete {
		p.state = StateIdle
	}
	p.mu.Unlock()
	stopTask(advance)
}

// State returns the current state.
func (p *Protocol) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result returns a copy of the recorded thresholds.
func (p *Protocol) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result.Clone()
}

// Score returns the score once the test is complete.
func (p *Protocol) Score() (Score, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.score == nil {
		return Score{}, false
	}
	return *p.score, true
}

// Err returns the last error raised while playing a pulse.
func (p *Protocol) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Snapshot returns a consistent view of the protocol.
func (p *Protocol) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	level := p.Level()
	s := Snapshot{
		State:     p.state,
		Ear:       p.ear,
		Index:     p.index,
		Level:     level,
		Gain:      GainForLevel(level),
		Progress:  100 * float64(p.result.Len()) / float64(2*len(Frequencies)),
		Advancing: p.advance != nil,
		Result:    p.result.Clone(),
	}
	if p.index < len(Frequencies) {
		s.Frequency = Frequencies[p.index]
	}
	if p.score != nil {
		score := *p.score
		s.Score = &score
	}
	return s
}

func (p *Protocol) pulsingLocked() bool {
	return p.state == StatePulsing || p.state == StateAwaitingConfirm
}

// beginLocked silences any pulse, resets the level and starts pulsing the
// current ear and frequency.
func (p *Protocol) beginLocked() {
	p.silenceLocked()
	p.level.Store(0)
	p.state = StatePulsing

	spec := synth.ToneSpec{
		Frequency: float64(Frequencies[p.index]),
		Duration:  p.cfg.PulseLength.Seconds(),
		Route:     synth.RouteFor(p.ear),
	}
	pl := &pulser{}
	pl.task = sched.Repeat(p.cfg.Clock, p.cfg.PulsePeriod, func() {
		spec.Gain = math.Min(GainForLevel(p.Level()), synth.MaxToneGain)
		if spec.Gain == 0 {
			return
		}
		pl.tone, pl.err = synth.PlayTone(p.sess, spec)
	})
	p.pulse = pl
}

// silenceLocked stops the pulse loop and mutes its tone before returning.
func (p *Protocol) silenceLocked() {
	pl := p.pulse
	if pl == nil {
		return
	}
	p.pulse = nil
	pl.task.Stop(func() {
		if pl.tone != nil {
			pl.tone.Stop()
		}
	})
	if pl.err != nil {
		p.lastErr = pl.err
	}
}

// cancelLocked silences the pulse and detaches a pending advance, which the
// caller stops after unlocking.
func (p *Protocol) cancelLocked() *sched.Task {
	p.silenceLocked()
	p.level.Store(0)
	p.gen++
	advance := p.advance
	p.advance = nil
	return advance
}

func stopTask(t *sched.Task) {
	if t != nil {
		t.Stop(nil)
	}
}
