package synth

import (
	"fmt"

	"github.com/cwbudde/algo-audiocheck/audio/session"
)

// SourceKind tags the variant held by a Source.
type SourceKind int

const (
	// SourceSine is a continuous sine tone.
	SourceSine SourceKind = iota
	// SourceWhiteNoise is looped white noise.
	SourceWhiteNoise
	// SourcePinkNoise is looped pink noise.
	SourcePinkNoise
	// SourceSweep is the exponential frequency sweep.
	SourceSweep
)

func (k SourceKind) String() string {
	switch k {
	case SourceSine:
		return "sine"
	case SourceWhiteNoise:
		return "white"
	case SourcePinkNoise:
		return "pink"
	case SourceSweep:
		return "sweep"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// Source is one of the signals a speaker test can play. Tone is used by
// SourceSine and Sweep options by SourceSweep.
type Source struct {
	Kind  SourceKind
	Tone  ToneSpec
	Sweep []SweepOption
}

// Sine returns a continuous sine source.
func Sine(hz, gain float64) Source {
	return Source{Kind: SourceSine, Tone: ToneSpec{Frequency: hz, Gain: gain}}
}

// Play starts src on sess, replacing whatever was playing.
func Play(sess *session.Session, src Source) (Voice, error) {
	var (
		v   Voice
		err error
	)
	switch src.Kind {
	case SourceSine:
		spec := src.Tone
		spec.Duration = 0
		var t *Tone
		if t, err = PlayTone(sess, spec); err == nil {
			v = t
		}
	case SourceWhiteNoise, SourcePinkNoise:
		color := White
		if src.Kind == SourcePinkNoise {
			color = Pink
		}
		var n *Noise
		if n, err = PlayNoise(sess, color); err == nil {
			v = n
		}
	case SourceSweep:
		var s *Sweep
		if s, err = StartSweep(sess, src.Sweep...); err == nil {
			v = s
		}
	default:
		err = fmt.Errorf("%w: source kind %v", ErrInvalidSpec, src.Kind)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
