package spl

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-audiocheck/audio/graph"
	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/dsp/spectrum"
	"github.com/cwbudde/algo-audiocheck/internal/notify"
	"github.com/cwbudde/algo-audiocheck/stats/rolling"
)

var (
	// ErrRunning is returned by Start while a measurement is in progress.
	ErrRunning = errors.New("spl: meter already running")
	// ErrNotRunning is returned by Stop without a measurement in progress.
	ErrNotRunning = errors.New("spl: meter not running")
)

// MeterConfig defines the sound meter pipeline.
type MeterConfig struct {
	FFTSize   int
	Smoothing float64
	BlockSize int
	Window    int
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns the browser meter settings.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		FFTSize:   spectrum.DefaultFFTSize,
		Smoothing: spectrum.DefaultSmoothing,
		BlockSize: 2048,
		Window:    rolling.DefaultCapacity,
	}
}

// WithFFTSize sets the analyser length.
func WithFFTSize(n int) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.FFTSize = n
	}
}

// WithSmoothing sets the analyser smoothing.
func WithSmoothing(tau float64) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Smoothing = tau
	}
}

// WithBlockSize sets how many frames pass between readings.
func WithBlockSize(n int) MeterOption {
	return func(cfg *MeterConfig) {
		if n > 0 {
			cfg.BlockSize = n
		}
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Reading is a live snapshot of the meter.
type Reading struct {
	DB      float64
	Min     float64
	Avg     float64
	Max     float64
	Samples int
}

// Report is the result of a finished measurement.
type Report struct {
	Min      float64
	Avg      float64
	Max      float64
	Final    float64
	Samples  int
	Trimmed  bool
	Exposure Exposure
	Status   Level
	Verdict  Verdict
}

// Meter measures microphone loudness. Every reading is published on the
// bus passed to NewMeter.
type Meter struct {
	sess *session.Session
	bus  *notify.Bus[notify.Loudness]
	cfg  MeterConfig

	mu       sync.Mutex
	running  bool
	mic      *graph.MediaStreamSource
	analyser *graph.Analyser
	tap      *graph.Tap
	stats    *rolling.Window
	bins     []byte
	last     float64
}

// NewMeter creates a meter on sess. A nil bus gets a private one.
func NewMeter(sess *session.Session, bus *notify.Bus[notify.Loudness], opts ...MeterOption) *Meter {
	if bus == nil {
		bus = notify.NewBus[notify.Loudness]()
	}
	cfg := ApplyMeterOptions(opts...)
	return &Meter{
		sess:  sess,
		bus:   bus,
		cfg:   cfg,
		stats: rolling.New(rolling.WithCapacity(cfg.Window)),
	}
}

// Bus returns the loudness bus readings are published on.
func (m *Meter) Bus() *notify.Bus[notify.Loudness] {
	return m.bus
}

// Start opens the microphone and begins a fresh measurement. The returned
// input node is fed by the capture device through Push.
func (m *Meter) Start(request session.Permission) (*graph.MediaStreamSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil, ErrRunning
	}

	mic, err := m.sess.OpenInput(request)
	if err != nil {
		return nil, err
	}
	ctx := m.sess.Graph()
	analyser, err := ctx.NewAnalyser(
		spectrum.WithFFTSize(m.cfg.FFTSize),
		spectrum.WithSmoothing(m.cfg.Smoothing),
	)
	if err != nil {
		_ = m.sess.Close()
		return nil, fmt.Errorf("spl: analyser: %w", err)
	}
	tap := ctx.NewTap(m.cfg.BlockSize, m.onBlock)
	err = errors.Join(
		mic.Connect(analyser),
		analyser.Connect(tap),
		tap.Connect(ctx.Destination()),
	)
	if err != nil {
		tap.Release()
		analyser.Release()
		_ = m.sess.Close()
		return nil, err
	}

	m.mic = mic
	m.analyser = analyser
	m.tap = tap
	m.bins = make([]byte, analyser.FrequencyBinCount())
	m.stats.Reset()
	m.last = 0
	m.running = true
	return mic, nil
}

func (m *Meter) onBlock([]float64) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.analyser.ByteFrequencyData(m.bins)
	db := EstimateDb(spectrum.BandAverage(m.bins))
	m.stats.Push(db)
	m.last = db
	m.mu.Unlock()

	m.bus.Publish(notify.Loudness{DB: db})
}

// Running reports whether a measurement is in progress.
func (m *Meter) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Reading returns the latest level and the running statistics.
func (m *Meter) Reading() Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Reading{
		DB:      m.last,
		Min:     m.stats.Min(),
		Avg:     m.stats.Mean(),
		Max:     m.stats.Max(),
		Samples: m.stats.Total(),
	}
}

// Spectrum copies the analyser bins of the latest reading into dst, growing
// it as needed, and returns it. It returns dst[:0] when not running.
func (m *Meter) Spectrum(dst []byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return dst[:0]
	}
	return append(dst[:0], m.bins...)
}

// Stop ends the measurement, releases the microphone and the session graph,
// and summarises the readings with the trailing-click trim applied.
func (m *Meter) Stop() (Report, error) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return Report{}, ErrNotRunning
	}
	m.running = false
	m.tap.Release()
	m.analyser.Release()
	m.mic.Disconnect()
	m.mic, m.analyser, m.tap = nil, nil, nil
	sum := m.stats.Finalize()
	m.mu.Unlock()

	err := m.sess.Close()
	return ReportFor(sum), err
}

// ReportFor builds a report from finished statistics.
func ReportFor(sum rolling.Summary) Report {
	return Report{
		Min:      sum.Min,
		Avg:      sum.Avg,
		Max:      sum.Max,
		Final:    sum.Final,
		Samples:  sum.Count,
		Trimmed:  sum.Trimmed,
		Exposure: ClassifyExposure(sum.Avg),
		Status:   ClassifyLevel(sum.Final),
		Verdict:  ClassifyReport(sum.Avg),
	}
}
