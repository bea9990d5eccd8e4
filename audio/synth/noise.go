package synth

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-audiocheck/audio/graph"
	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/dsp/signal"
)

const (
	// NoiseSeconds is the length of generated noise buffers.
	NoiseSeconds = 2.0
	// CalibrationGain is the reference level of the calibration rumble.
	CalibrationGain = 0.5
)

// Color selects a noise spectrum.
type Color int

const (
	// White noise has a flat spectrum.
	White Color = iota
	// Pink noise falls 3 dB per octave.
	Pink
	// Calibration is the low rumble used as a volume reference.
	Calibration
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Pink:
		return "pink"
	case Calibration:
		return "calibration"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// ParseColor maps "white", "pink" or "calibration" to a Color.
func ParseColor(s string) (Color, error) {
	switch s {
	case "white":
		return White, nil
	case "pink":
		return Pink, nil
	case "calibration":
		return Calibration, nil
	}
	return 0, fmt.Errorf("%w: unknown noise color %q", ErrInvalidSpec, s)
}

// NoiseBuffer is a mono block of generated noise.
type NoiseBuffer struct {
	Color      Color
	SampleRate float64
	Samples    []float64
}

// Duration returns the buffer length in seconds.
func (b NoiseBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / b.SampleRate
}

// GenerateNoise renders [NoiseSeconds] of color at sampleRate from gen. A
// nil gen uses a time-seeded generator.
func GenerateNoise(color Color, sampleRate float64, gen *signal.Generator) (NoiseBuffer, error) {
	if !(sampleRate > 0) {
		return NoiseBuffer{}, fmt.Errorf("%w: sample rate %g", ErrInvalidSpec, sampleRate)
	}
	if gen == nil {
		gen = signal.NewGenerator(signal.WithSeed(time.Now().UnixNano()))
	}
	n := int(NoiseSeconds * sampleRate)

	var (
		samples []float64
		err     error
	)
	switch color {
	case White:
		samples, err = gen.WhiteNoise(1, n)
	case Pink:
		samples, err = gen.PinkNoise(n)
	case Calibration:
		samples, err = gen.CalibrationNoise(n)
	default:
		return NoiseBuffer{}, fmt.Errorf("%w: noise color %v", ErrInvalidSpec, color)
	}
	if err != nil {
		return NoiseBuffer{}, err
	}
	return NoiseBuffer{Color: color, SampleRate: sampleRate, Samples: samples}, nil
}

// Noise is a playing noise buffer.
type Noise struct {
	voice

	buf  NoiseBuffer
	src  *graph.BufferSource
	gain *graph.Gain
}

// PlayNoise loops freshly generated noise of color on sess.
func PlayNoise(sess *session.Session, color Color) (*Noise, error) {
	return PlayNoiseBuffer(sess, NoiseBuffer{Color: color}, true, 1)
}

// PlayCalibration plays the calibration rumble once at [CalibrationGain].
func PlayCalibration(sess *session.Session) (*Noise, error) {
	return PlayNoiseBuffer(sess, NoiseBuffer{Color: Calibration}, false, CalibrationGain)
}

// PlayNoiseBuffer plays buf at gain, looping it if loop is set. A buffer
// without samples is generated at the session rate first.
func PlayNoiseBuffer(sess *session.Session, buf NoiseBuffer, loop bool, gain float64) (*Noise, error) {
	ctx, err := sess.Acquire()
	if err != nil {
		return nil, err
	}
	if len(buf.Samples) == 0 {
		buf, err = GenerateNoise(buf.Color, ctx.SampleRate(), nil)
		if err != nil {
			return nil, err
		}
	}

	n := &Noise{buf: buf}
	n.init(sess, ctx)
	n.src = ctx.NewBufferSource(buf.Samples, loop)
	n.gain = ctx.NewGain()
	n.gain.Gain.SetValue(gain)
	n.track(n.src, n.gain)
	n.silence = func(now float64) {
		_ = n.gain.Gain.CancelScheduledValues(now)
		_ = n.gain.Gain.SetValueAtTime(0, now)
		_ = n.src.Stop(now)
	}
	if err := n.src.Connect(n.gain); err != nil {
		n.finish(false)
		return nil, err
	}
	if err := n.gain.Connect(sess.Output()); err != nil {
		n.finish(false)
		return nil, err
	}

	n.activate()
	n.src.OnEnded(func() { n.finish(false) })
	if err := n.src.Start(ctx.CurrentTime()); err != nil {
		n.finish(false)
		return nil, err
	}
	return n, nil
}

// Color returns the noise color.
func (n *Noise) Color() Color {
	return n.buf.Color
}

// Buffer returns the buffer being played.
func (n *Noise) Buffer() NoiseBuffer {
	return n.buf
}
