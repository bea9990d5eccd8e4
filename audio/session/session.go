// Package session owns the lazily created audio graph shared by one tool:
// its master output chain, its live microphone input and the rule that only
// one signal plays at a time.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-audiocheck/audio/graph"
	"github.com/cwbudde/algo-audiocheck/dsp/core"
	"github.com/cwbudde/algo-audiocheck/dsp/spectrum"
)

var (
	// ErrPermissionDenied is returned when microphone access is refused.
	ErrPermissionDenied = errors.New("session: microphone permission denied")
	// ErrUnsupported is returned when no capture backend is available.
	ErrUnsupported = errors.New("session: audio input not supported")
	// ErrNotAcquired is returned by operations that need a live graph.
	ErrNotAcquired = errors.New("session: audio graph not acquired")
)

// Permission asks the host for microphone access. A nil error grants it.
type Permission func() error

// Config holds session parameters.
type Config struct {
	SampleRate float64
	MasterGain float64
	FFTSize    int
}

// Option mutates session configuration.
type Option func(*Config)

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate: core.DefaultSampleRate,
		MasterGain: 0.5,
		FFTSize:    spectrum.DefaultFFTSize,
	}
}

// WithSampleRate sets the graph sample rate.
func WithSampleRate(sr float64) Option {
	return func(c *Config) {
		if sr > 0 {
			c.SampleRate = sr
		}
	}
}

// WithMasterGain sets the output gain applied to every signal.
func WithMasterGain(g float64) Option {
	return func(c *Config) {
		c.MasterGain = g
	}
}

// WithFFTSize sets the output analyser length.
func WithFFTSize(n int) Option {
	return func(c *Config) {
		c.FFTSize = n
	}
}

// Handle identifies one activation.
type Handle uint64

// Session is one tool's audio state. The zero value is not usable; call New.
type Session struct {
	mu  sync.Mutex
	cfg Config

	ctx      *graph.Context
	master   *graph.Gain
	analyser *graph.Analyser

	active Handle
	stop   func()
	seq    Handle
}

// New creates a session. No graph exists until Acquire.
func New(opts ...Option) *Session {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Session{cfg: cfg}
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Acquire returns the running graph, building it on first use:
// master gain, then an output analyser, then the destination.
func (s *Session) Acquire() (*graph.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquireLocked()
}

func (s *Session) acquireLocked() (*graph.Context, error) {
	if s.ctx != nil {
		if s.ctx.State() != graph.StateRunning {
			if err := s.ctx.Resume(); err != nil {
				return nil, fmt.Errorf("session: resume: %w", err)
			}
		}
		return s.ctx, nil
	}

	ctx := graph.NewContext(core.WithSampleRate(s.cfg.SampleRate))
	master := ctx.NewGain()
	master.Gain.SetValue(s.cfg.MasterGain)
	analyser, err := ctx.NewAnalyser(spectrum.WithFFTSize(s.cfg.FFTSize))
	if err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("session: output analyser: %w", err)
	}
	if err := master.Connect(analyser); err != nil {
		_ = ctx.Close()
		return nil, err
	}
	if err := analyser.Connect(ctx.Destination()); err != nil {
		_ = ctx.Close()
		return nil, err
	}
	if err := ctx.Resume(); err != nil {
		_ = ctx.Close()
		return nil, err
	}

	s.ctx = ctx
	s.master = master
	s.analyser = analyser
	return ctx, nil
}

// Graph returns the current graph, or nil before Acquire.
func (s *Session) Graph() *graph.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Output returns the master gain every signal connects to, or nil before
// Acquire.
func (s *Session) Output() *graph.Gain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.master
}

// Analyser returns the output analyser, or nil before Acquire.
func (s *Session) Analyser() *graph.Analyser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyser
}

// Now returns the graph time, 0 before Acquire.
func (s *Session) Now() float64 {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return 0
	}
	return ctx.CurrentTime()
}

// Activate makes stop the teardown of the one live signal. The previous
// activation, if any, is torn down first.
func (s *Session) Activate(stop func()) Handle {
	s.mu.Lock()
	prev := s.stop
	s.seq++
	s.active = s.seq
	s.stop = stop
	h := s.active
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return h
}

// Deactivate forgets h without running its teardown, typically because the
// signal ended by itself. Stale handles are ignored.
func (s *Session) Deactivate(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == h {
		s.active = 0
		s.stop = nil
	}
}

// Active reports whether h is the live activation.
func (s *Session) Active(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return h != 0 && s.active == h
}

// StopAll tears down the live signal, if any.
func (s *Session) StopAll() {
	s.mu.Lock()
	prev := s.stop
	s.stop = nil
	s.active = 0
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// OpenInput asks for microphone access and returns a live input node fed by
// the caller through Push. On refusal no graph state is created.
func (s *Session) OpenInput(request Permission) (*graph.MediaStreamSource, error) {
	if request == nil {
		return nil, ErrUnsupported
	}
	if err := request(); err != nil {
		if errors.Is(err, ErrUnsupported) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, err := s.acquireLocked()
	if err != nil {
		return nil, err
	}
	return ctx.NewMediaStreamSource(int(s.cfg.SampleRate) * 2), nil
}

// Render pulls interleaved stereo frames from the graph; silence before
// Acquire.
func (s *Session) Render(dst []float32) (int, error) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		clear(dst)
		return 0, nil
	}
	return ctx.Render(dst)
}

// Close stops the live signal and releases the graph. A later Acquire builds
// a new one.
func (s *Session) Close() error {
	s.StopAll()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return nil
	}
	err := s.ctx.Close()
	s.ctx = nil
	s.master = nil
	s.analyser = nil
	return err
}
