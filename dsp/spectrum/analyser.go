package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-audiocheck/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	minFFTSize = 32
	maxFFTSize = 32768

	// DefaultFFTSize is the analysis length used by every tool.
	DefaultFFTSize = 2048
	// DefaultSmoothing is the time constant applied between frames.
	DefaultSmoothing = 0.8
	// DefaultMinDecibels maps to byte value 0.
	DefaultMinDecibels = -100.0
	// DefaultMaxDecibels maps to byte value 255.
	DefaultMaxDecibels = -30.0
)

var (
	// ErrInvalidFFTSize is returned for sizes that are not a power of two in [32, 32768].
	ErrInvalidFFTSize = errors.New("spectrum: fft size must be a power of two in [32, 32768]")
	// ErrInvalidSmoothing is returned for smoothing outside [0, 1].
	ErrInvalidSmoothing = errors.New("spectrum: smoothing must be in [0, 1]")
	// ErrInvalidDecibelRange is returned when min decibels is not below max decibels.
	ErrInvalidDecibelRange = errors.New("spectrum: min decibels must be below max decibels")
)

// Config holds analyser parameters.
type Config struct {
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
}

// Option mutates analyser configuration.
type Option func(*Config)

// DefaultConfig returns the analyser defaults.
func DefaultConfig() Config {
	return Config{
		FFTSize:     DefaultFFTSize,
		Smoothing:   DefaultSmoothing,
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
	}
}

// WithFFTSize sets the analysis length.
func WithFFTSize(n int) Option {
	return func(cfg *Config) {
		cfg.FFTSize = n
	}
}

// WithSmoothing sets the smoothing time constant.
func WithSmoothing(tau float64) Option {
	return func(cfg *Config) {
		cfg.Smoothing = tau
	}
}

// WithDecibelRange sets the range mapped onto byte output.
func WithDecibelRange(minDB, maxDB float64) Option {
	return func(cfg *Config) {
		cfg.MinDecibels = minDB
		cfg.MaxDecibels = maxDB
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.FFTSize < minFFTSize || c.FFTSize > maxFFTSize || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFFTSize, c.FFTSize)
	}
	if c.Smoothing < 0 || c.Smoothing > 1 || math.IsNaN(c.Smoothing) {
		return fmt.Errorf("%w: %g", ErrInvalidSmoothing, c.Smoothing)
	}
	if !(c.MinDecibels < c.MaxDecibels) {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidDecibelRange, c.MinDecibels, c.MaxDecibels)
	}
	return nil
}

// Analyser keeps the most recent FFTSize input samples and derives smoothed
// spectra from them.
//
// Spectra are recomputed lazily: reading frequency data twice without any
// intervening Write returns the same frame and applies smoothing once.
// An Analyser is not safe for concurrent use.
type Analyser struct {
	cfg Config

	ring  []float64
	write int

	win  []float64
	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
	re   []float64
	im   []float64
	mag  []float64

	smoothed []float64
	dirty    bool
}

// NewAnalyser creates an analyser.
func NewAnalyser(opts ...Option) (*Analyser, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: init fft plan: %w", err)
	}

	bins := cfg.FFTSize / 2
	return &Analyser{
		cfg:      cfg,
		ring:     make([]float64, cfg.FFTSize),
		win:      window.Generate(window.TypeBlackman, cfg.FFTSize, window.WithPeriodic()),
		plan:     plan,
		in:       make([]complex128, cfg.FFTSize),
		out:      make([]complex128, cfg.FFTSize),
		re:       make([]float64, bins),
		im:       make([]float64, bins),
		mag:      make([]float64, bins),
		smoothed: make([]float64, bins),
		dirty:    true,
	}, nil
}

// Config returns the analyser configuration.
func (a *Analyser) Config() Config {
	return a.cfg
}

// FFTSize returns the analysis length.
func (a *Analyser) FFTSize() int {
	return a.cfg.FFTSize
}

// FrequencyBinCount returns FFTSize/2.
func (a *Analyser) FrequencyBinCount() int {
	return a.cfg.FFTSize / 2
}

// Write appends samples to the analysis ring.
func (a *Analyser) Write(samples []float64) {
	if len(samples) == 0 {
		return
	}
	n := len(a.ring)
	if len(samples) >= n {
		copy(a.ring, samples[len(samples)-n:])
		a.write = 0
		a.dirty = true
		return
	}
	for _, s := range samples {
		a.ring[a.write] = s
		a.write++
		if a.write == n {
			a.write = 0
		}
	}
	a.dirty = true
}

// Reset clears input history and smoothing state.
func (a *Analyser) Reset() {
	for i := range a.ring {
		a.ring[i] = 0
	}
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
	a.write = 0
	a.dirty = true
}

// FloatFrequencyData fills dst with smoothed magnitudes in dB. Silent bins
// report -Inf. At most FrequencyBinCount values are written.
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.update()
	n := min(len(dst), len(a.smoothed))
	for k := 0; k < n; k++ {
		dst[k] = linearToDB(a.smoothed[k])
	}
}

// ByteFrequencyData fills dst with smoothed magnitudes scaled onto
// [MinDecibels, MaxDecibels] and clamped to 0..255.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.update()
	scale := 255 / (a.cfg.MaxDecibels - a.cfg.MinDecibels)
	n := min(len(dst), len(a.smoothed))
	for k := 0; k < n; k++ {
		db := linearToDB(a.smoothed[k])
		v := math.Floor(scale * (db - a.cfg.MinDecibels))
		switch {
		case math.IsNaN(v) || v < 0:
			dst[k] = 0
		case v > 255:
			dst[k] = 255
		default:
			dst[k] = byte(v)
		}
	}
}

// FloatTimeDomainData fills dst with the most recent samples, oldest first.
func (a *Analyser) FloatTimeDomainData(dst []float64) {
	n := min(len(dst), len(a.ring))
	start := a.write + len(a.ring) - n
	for i := 0; i < n; i++ {
		dst[i] = a.ring[(start+i)%len(a.ring)]
	}
}

// ByteTimeDomainData fills dst with the most recent samples mapped so that
// -1..1 spans 0..255 and silence reads 128.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	n := min(len(dst), len(a.ring))
	start := a.write + len(a.ring) - n
	for i := 0; i < n; i++ {
		v := math.Floor(128 * (1 + a.ring[(start+i)%len(a.ring)]))
		switch {
		case v < 0:
			dst[i] = 0
		case v > 255:
			dst[i] = 255
		default:
			dst[i] = byte(v)
		}
	}
}

func (a *Analyser) update() {
	if !a.dirty {
		return
	}
	a.dirty = false

	size := len(a.ring)
	read := a.write
	for i := 0; i < size; i++ {
		a.in[i] = complex(a.ring[read]*a.win[i], 0)
		read++
		if read == size {
			read = 0
		}
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}
	vecmath.Magnitude(a.mag, a.re, a.im)
	vecmath.ScaleBlockInPlace(a.mag, 1/float64(size))

	tau := a.cfg.Smoothing
	for k, m := range a.mag {
		s := tau*a.smoothed[k] + (1-tau)*m
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.smoothed[k] = s
	}
}

func linearToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
