package synth

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-audiocheck/audio/graph"
	"github.com/cwbudde/algo-audiocheck/audio/session"
)

// Envelope timing in seconds.
const (
	// Attack and release of one-shot tones.
	ToneRamp = 0.05
	// Fade-in of continuous tones.
	ContinuousAttack = 0.1
	// Extra run time after a one-shot envelope has closed.
	StopTail = 0.1
)

// Channel check and polarity presets.
const (
	ChannelCheckFrequency = 440.0
	ChannelCheckGain      = 0.5
	ChannelCheckAttack    = 0.1
	ChannelCheckLength    = 1.5
	PolarityFrequency     = 150.0
)

// MaxToneGain is the largest linear tone gain, reached by the hearing test
// at its top level (+20 dB over full scale).
const MaxToneGain = 10.0

// ToneSpec describes a sine tone. Duration is in seconds; zero plays until
// stopped.
type ToneSpec struct {
	Frequency float64 `json:"frequency" validate:"gt=0"`
	Gain      float64 `json:"gain" validate:"gte=0,lte=10"`
	Duration  float64 `json:"duration" validate:"gte=0"`
	Pan       float64 `json:"pan" validate:"gte=-1,lte=1"`
	Route     Route   `json:"route" validate:"gte=0,lte=2"`
}

// Validate checks the spec ranges.
func (s ToneSpec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return nil
}

// Tone is a playing sine oscillator and its gain stages.
type Tone struct {
	voice

	spec  ToneSpec
	osc   *graph.Oscillator
	gains []*graph.Gain
}

// envelope schedules the gain automation of a tone starting at now.
type envelope func(p *graph.Param, now float64) error

// PlayTone plays spec on sess. One-shot tones ramp in and out over
// [ToneRamp] and end by themselves; continuous tones fade in over
// [ContinuousAttack].
func PlayTone(sess *session.Session, spec ToneSpec) (*Tone, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	var stopAfter float64
	if spec.Duration > 0 {
		stopAfter = spec.Duration + StopTail
	}
	return playTone(sess, spec, toneEnvelope(spec), stopAfter)
}

func toneEnvelope(spec ToneSpec) envelope {
	if spec.Duration == 0 {
		return func(p *graph.Param, now float64) error {
			return errors.Join(
				p.SetValueAtTime(0, now),
				p.LinearRampToValueAtTime(spec.Gain, now+ContinuousAttack),
			)
		}
	}
	ramp := min(ToneRamp, spec.Duration/2)
	return func(p *graph.Param, now float64) error {
		return errors.Join(
			p.SetValueAtTime(0, now),
			p.LinearRampToValueAtTime(spec.Gain, now+ramp),
			p.SetValueAtTime(spec.Gain, now+spec.Duration-ramp),
			p.LinearRampToValueAtTime(0, now+spec.Duration),
		)
	}
}

// ChannelCheck plays the 440 Hz identification tone on one side: a 0.1 s
// fade-in to half gain, then a linear fade to silence at 1.5 s.
func ChannelCheck(sess *session.Session, side Side) (*Tone, error) {
	spec := ToneSpec{
		Frequency: ChannelCheckFrequency,
		Gain:      ChannelCheckGain,
		Duration:  ChannelCheckLength,
		Route:     RouteFor(side),
	}
	env := func(p *graph.Param, now float64) error {
		return errors.Join(
			p.SetValueAtTime(0, now),
			p.LinearRampToValueAtTime(ChannelCheckGain, now+ChannelCheckAttack),
			p.LinearRampToValueAtTime(0, now+ChannelCheckLength),
		)
	}
	return playTone(sess, spec, env, ChannelCheckLength)
}

func playTone(sess *session.Session, spec ToneSpec, env envelope, stopAfter float64) (*Tone, error) {
	ctx, err := sess.Acquire()
	if err != nil {
		return nil, err
	}

	t := &Tone{spec: spec}
	t.init(sess, ctx)

	t.osc = ctx.NewOscillator()
	t.osc.Frequency.SetValue(spec.Frequency)
	gain := ctx.NewGain()
	gain.Gain.SetValue(0)
	t.gains = []*graph.Gain{gain}
	t.track(t.osc, gain)
	t.silence = t.mute

	now := ctx.CurrentTime()
	if err := env(gain.Gain, now); err != nil {
		t.finish(false)
		return nil, fmt.Errorf("synth: envelope: %w", err)
	}
	if err := t.osc.Connect(gain); err != nil {
		t.finish(false)
		return nil, err
	}
	routed, err := connectRoute(ctx, gain, sess.Output(), spec.Route, spec.Pan)
	if err != nil {
		t.finish(false)
		return nil, err
	}
	t.track(routed...)

	t.activate()
	if err := t.start(now, stopAfter); err != nil {
		return nil, err
	}
	return t, nil
}

// Polarity plays the 150 Hz phase check: the same oscillator feeds the left
// channel at +1 and the right channel at +1, or -1 when inverted.
func Polarity(sess *session.Session, inverted bool) (*Tone, error) {
	ctx, err := sess.Acquire()
	if err != nil {
		return nil, err
	}

	t := &Tone{spec: ToneSpec{Frequency: PolarityFrequency, Gain: 1}}
	t.init(sess, ctx)

	t.osc = ctx.NewOscillator()
	t.osc.Frequency.SetValue(PolarityFrequency)
	left, right := ctx.NewGain(), ctx.NewGain()
	if inverted {
		right.Gain.SetValue(-1)
	}
	merger := ctx.NewChannelMerger(2)
	t.gains = []*graph.Gain{left, right}
	t.track(t.osc, left, right, merger)
	t.silence = t.mute

	err = errors.Join(
		t.osc.Connect(left),
		t.osc.Connect(right),
		left.ConnectChannel(merger, 0),
		right.ConnectChannel(merger, 1),
		merger.Connect(sess.Output()),
	)
	if err != nil {
		t.finish(false)
		return nil, err
	}

	t.activate()
	if err := t.start(ctx.CurrentTime(), 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tone) start(now, stopAfter float64) error {
	if stopAfter > 0 {
		t.osc.OnEnded(func() { t.finish(false) })
	}
	if err := t.osc.Start(now); err != nil {
		t.finish(false)
		return err
	}
	if stopAfter > 0 {
		if err := t.osc.Stop(now + stopAfter); err != nil {
			t.finish(true)
			return err
		}
	}
	return nil
}

// mute cancels the envelope and forces every gain to zero at now.
func (t *Tone) mute(now float64) {
	for _, g := range t.gains {
		_ = g.Gain.CancelScheduledValues(now)
		_ = g.Gain.SetValueAtTime(0, now)
	}
	_ = t.osc.Stop(now)
}

// Spec returns the spec the tone was started with.
func (t *Tone) Spec() ToneSpec {
	return t.spec
}

// Frequency returns the current oscillator frequency.
func (t *Tone) Frequency() float64 {
	return t.osc.Frequency.Value()
}

// SetFrequency retunes a playing tone from the current time on.
func (t *Tone) SetFrequency(hz float64) error {
	if !(hz > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidFrequency, hz)
	}
	if !t.Active() {
		return nil
	}
	t.osc.Frequency.SetValue(hz)
	return nil
}
