package signal

import (
	"fmt"
	"math/rand"
)

// Calibration noise shaping: a leaky integrator over white noise followed by
// make-up gain, giving a soft rumble that is comfortable at reference volume.
const (
	calibrationLeak   = 0.02
	calibrationNorm   = 1.02
	calibrationMakeup = 3.5
)

// Generator produces the noise signals used by the audio tools.
//
// A Generator owns its random source and is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*generatorConfig)

type generatorConfig struct {
	seed int64
}

// WithSeed sets a deterministic seed for the random source.
func WithSeed(seed int64) Option {
	return func(cfg *generatorConfig) {
		cfg.seed = seed
	}
}

// NewGenerator creates a noise generator, seeded with 1 unless [WithSeed]
// says otherwise.
func NewGenerator(opts ...Option) *Generator {
	cfg := generatorConfig{seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{rng: rand.New(rand.NewSource(cfg.seed))}
}

// SetSeed restarts the random stream from seed.
func (g *Generator) SetSeed(seed int64) {
	g.rng.Seed(seed)
}

// WhiteNoise generates independent uniform samples in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	for i := range out {
		out[i] = g.white() * amplitude
	}
	return out, nil
}

// PinkNoise generates white noise shaped by a fresh [PinkFilter].
func (g *Generator) PinkNoise(samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	var f PinkFilter
	out := make([]float64, samples)
	for i := range out {
		out[i] = f.Process(g.white())
	}
	return out, nil
}

// CalibrationNoise generates the reference rumble played before a hearing
// test: white noise through a leaky integrator with 3.5x make-up gain.
func (g *Generator) CalibrationNoise(samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	last := 0.0
	for i := range out {
		last = (last + calibrationLeak*g.white()) / calibrationNorm
		out[i] = last * calibrationMakeup
	}
	return out, nil
}

func (g *Generator) white() float64 {
	return g.rng.Float64()*2 - 1
}
