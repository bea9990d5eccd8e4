// Package webdemo is the browser engine behind the wasm bridge: the speaker
// test, sound meter and hearing test sharing one AudioWorklet output.
package webdemo

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/audio/synth"
	"github.com/cwbudde/algo-audiocheck/internal/telemetry"
	"github.com/cwbudde/algo-audiocheck/internal/tools"
	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
	"github.com/cwbudde/algo-audiocheck/measure/spl"
)

// ErrMicDenied is returned by StartMeter when the page was refused the
// microphone.
var ErrMicDenied = errors.New("webdemo: microphone access denied")

// Engine owns the three tools and mixes their output.
type Engine struct {
	sampleRate float64

	Speaker *tools.Speaker
	Meter   *tools.SoundMeter
	Hearing *tools.Hearing

	mu  sync.Mutex
	tmp []float32
}

// NewEngine creates the tools at sampleRate. Telemetry events go to tel.
func NewEngine(sampleRate float64, tel telemetry.Sink) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0: %f", sampleRate)
	}
	rate := []session.Option{session.WithSampleRate(sampleRate)}
	return &Engine{
		sampleRate: sampleRate,
		Speaker:    tools.NewSpeaker(rate...),
		Meter:      tools.NewSoundMeter(rate),
		Hearing:    tools.NewHearing(tel, rate),
	}, nil
}

// SampleRate returns the output rate.
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// Render fills dst with interleaved stereo samples in [-1, 1]. Rendering
// also drives the sound meter's analysis of pushed microphone audio.
func (e *Engine) Render(dst []float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cap(e.tmp) < len(dst) {
		e.tmp = make([]float32, len(dst))
	}
	tmp := e.tmp[:len(dst)]

	clear(dst)
	var errs []error
	for _, src := range []interface{ Render([]float32) (int, error) }{e.Speaker, e.Hearing, e.Meter} {
		if _, err := src.Render(tmp); err != nil {
			errs = append(errs, err)
			continue
		}
		for i, v := range tmp {
			dst[i] += v
		}
	}
	for i, v := range dst {
		dst[i] = min(max(v, -1), 1)
	}
	return errors.Join(errs...)
}

// PushMic queues captured microphone samples for the sound meter.
func (e *Engine) PushMic(samples []float64) error {
	return e.Meter.Push(samples)
}

// StartMeter starts the sound meter once the page holds the microphone.
func (e *Engine) StartMeter(granted bool) error {
	return e.Meter.Start(func() error {
		if !granted {
			return ErrMicDenied
		}
		return nil
	})
}

// StopMeter stops the sound meter and returns its report.
func (e *Engine) StopMeter() (ReportState, error) {
	rep, err := e.Meter.Stop()
	if errors.Is(err, spl.ErrNotRunning) {
		return ReportState{}, err
	}
	return newReportState(rep), nil
}

// SubmitProfile stores the hearing questionnaire.
func (e *Engine) SubmitProfile(ageGroup, gender, device string) error {
	return e.Hearing.SubmitProfile(audiometry.UserProfile{
		AgeGroup: ageGroup,
		Gender:   audiometry.Gender(gender),
		Device:   device,
	})
}

// Stereo plays the channel check on "left" or "right".
func (e *Engine) Stereo(side string) (bool, error) {
	switch side {
	case "left":
		return e.Speaker.Stereo(synth.Left)
	case "right":
		return e.Speaker.Stereo(synth.Right)
	}
	return false, fmt.Errorf("webdemo: unknown side %q", side)
}

// ToggleNoise toggles "white" or "pink" noise.
func (e *Engine) ToggleNoise(color string) (bool, error) {
	c, err := synth.ParseColor(color)
	if err != nil {
		return false, err
	}
	return e.Speaker.ToggleNoise(c)
}

// Close stops everything and releases the sessions.
func (e *Engine) Close() error {
	return errors.Join(e.Speaker.Close(), e.Meter.Close(), e.Hearing.Close())
}
