package synth

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-audiocheck/audio/graph"
	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/dsp/signal"
)

// SweepConfig describes an exponential frequency sweep.
type SweepConfig struct {
	From     float64 `json:"from" validate:"gt=0"`
	To       float64 `json:"to" validate:"gt=0"`
	Duration float64 `json:"duration" validate:"gt=0"`
	Gain     float64 `json:"gain" validate:"gte=0,lte=1"`
}

// SweepOption mutates a SweepConfig.
type SweepOption func(*SweepConfig)

// DefaultSweepConfig returns the 20 Hz to 20 kHz, 10 s sweep.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		From:     20,
		To:       20000,
		Duration: 10,
		Gain:     1,
	}
}

// WithSweepRange sets the start and end frequency.
func WithSweepRange(from, to float64) SweepOption {
	return func(c *SweepConfig) {
		c.From = from
		c.To = to
	}
}

// WithSweepDuration sets the sweep length in seconds.
func WithSweepDuration(seconds float64) SweepOption {
	return func(c *SweepConfig) {
		c.Duration = seconds
	}
}

// WithSweepGain sets the sweep level.
func WithSweepGain(g float64) SweepOption {
	return func(c *SweepConfig) {
		c.Gain = g
	}
}

// Sweep is a playing frequency sweep. It stops by itself at the end.
type Sweep struct {
	voice

	cfg   SweepConfig
	osc   *graph.Oscillator
	gain  *graph.Gain
	start float64
}

// StartSweep plays an exponential sweep on sess.
func StartSweep(sess *session.Session, opts ...SweepOption) (*Sweep, error) {
	cfg := DefaultSweepConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	ctx, err := sess.Acquire()
	if err != nil {
		return nil, err
	}

	s := &Sweep{cfg: cfg}
	s.init(sess, ctx)
	s.osc = ctx.NewOscillator()
	s.gain = ctx.NewGain()
	s.gain.Gain.SetValue(cfg.Gain)
	s.track(s.osc, s.gain)
	s.silence = func(now float64) {
		_ = s.gain.Gain.CancelScheduledValues(now)
		_ = s.gain.Gain.SetValueAtTime(0, now)
		_ = s.osc.Stop(now)
	}

	now := ctx.CurrentTime()
	s.start = now
	err = errors.Join(
		s.osc.Frequency.SetValueAtTime(cfg.From, now),
		s.osc.Frequency.ExponentialRampToValueAtTime(cfg.To, now+cfg.Duration),
		s.osc.Connect(s.gain),
		s.gain.Connect(sess.Output()),
	)
	if err != nil {
		s.finish(false)
		return nil, err
	}

	s.activate()
	s.osc.OnEnded(func() { s.finish(false) })
	if err := errors.Join(s.osc.Start(now), s.osc.Stop(now+cfg.Duration)); err != nil {
		s.finish(true)
		return nil, err
	}
	return s, nil
}

// Config returns the sweep parameters.
func (s *Sweep) Config() SweepConfig {
	return s.cfg
}

// Progress returns the elapsed fraction in [0, 1] and the frequency the
// sweep is at.
func (s *Sweep) Progress() (fraction, hz float64) {
	elapsed := s.ctx.CurrentTime() - s.start
	fraction = min(max(elapsed/s.cfg.Duration, 0), 1)
	return fraction, signal.ExpSweepFrequency(s.cfg.From, s.cfg.To, elapsed, s.cfg.Duration)
}
