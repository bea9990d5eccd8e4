package tools

import (
	"context"
	"errors"
	"sync"

	"github.com/cwbudde/algo-audiocheck/audio/graph"
	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/internal/notify"
	"github.com/cwbudde/algo-audiocheck/measure/spl"
	"github.com/cwbudde/algo-audiocheck/viz"
)

const historyBuffer = 256

// ErrMeterStopped is returned when feeding samples to a stopped meter.
var ErrMeterStopped = errors.New("tools: sound meter not running")

// SoundMeter is the ambient loudness meter with its history trace.
type SoundMeter struct {
	sess    *session.Session
	bus     *notify.Bus[notify.Loudness]
	meter   *spl.Meter
	history *viz.History

	mu     sync.Mutex
	mic    *graph.MediaStreamSource
	follow func()
	wg     sync.WaitGroup
	report *spl.Report
	bins   []byte
	frames []float32
}

// NewSoundMeter creates a sound meter with its own session.
func NewSoundMeter(sessOpts []session.Option, opts ...spl.MeterOption) *SoundMeter {
	sess := session.New(sessOpts...)
	bus := notify.NewBus[notify.Loudness]()
	return &SoundMeter{
		sess:    sess,
		bus:     bus,
		meter:   spl.NewMeter(sess, bus, opts...),
		history: viz.NewHistory(viz.HistoryPoints),
	}
}

// Session returns the meter's audio session.
func (m *SoundMeter) Session() *session.Session {
	return m.sess
}

// Subscribe returns a channel of loudness readings.
func (m *SoundMeter) Subscribe(buffer int) (<-chan notify.Loudness, func()) {
	return m.bus.Subscribe(buffer)
}

// Start opens the microphone and starts measuring. The history keeps
// running across measurements.
func (m *SoundMeter) Start(request session.Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mic, err := m.meter.Start(request)
	if err != nil {
		return err
	}
	m.mic = mic
	m.report = nil

	// Unsubscribing closes updates; Follow drains what is buffered first.
	updates, cancel := m.bus.Subscribe(historyBuffer)
	m.follow = cancel
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.history.Follow(context.Background(), updates)
	}()
	return nil
}

// Running reports whether a measurement is in progress.
func (m *SoundMeter) Running() bool {
	return m.meter.Running()
}

// Push queues microphone samples; the output device's rendering drives the
// analysis.
func (m *SoundMeter) Push(samples []float64) error {
	m.mu.Lock()
	mic := m.mic
	m.mu.Unlock()
	if mic == nil {
		return ErrMeterStopped
	}
	mic.Push(samples)
	return nil
}

// Process queues samples and renders the same number of frames, for hosts
// without an output device.
func (m *SoundMeter) Process(samples []float64) error {
	if err := m.Push(samples); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if need := 2 * len(samples); cap(m.frames) < need {
		m.frames = make([]float32, need)
	}
	_, err := m.sess.Render(m.frames[:2*len(samples)])
	return err
}

// Render pulls interleaved stereo output.
func (m *SoundMeter) Render(dst []float32) (int, error) {
	return m.sess.Render(dst)
}

// Reading returns the live level and statistics.
func (m *SoundMeter) Reading() spl.Reading {
	return m.meter.Reading()
}

// Level returns the display state of the live level.
func (m *SoundMeter) Level() spl.Level {
	return spl.ClassifyLevel(m.meter.Reading().DB)
}

// Exposure returns the exposure band of the running average.
func (m *SoundMeter) Exposure() spl.Exposure {
	return spl.ClassifyExposure(m.meter.Reading().Avg)
}

// History returns the loudness trace, oldest first.
func (m *SoundMeter) History() []float64 {
	return m.history.Values()
}

// Frame returns the data for one chart redraw.
func (m *SoundMeter) Frame(bars int) viz.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bins = m.meter.Spectrum(m.bins)
	return viz.NewFrame(m.meter.Running(), m.bins, m.history, bars)
}

// Stop ends the measurement and returns its report.
func (m *SoundMeter) Stop() (spl.Report, error) {
	m.mu.Lock()
	follow := m.follow
	m.follow = nil
	m.mic = nil
	m.mu.Unlock()

	rep, err := m.meter.Stop()
	if follow != nil {
		follow()
		m.wg.Wait()
	}
	if errors.Is(err, spl.ErrNotRunning) {
		return spl.Report{}, err
	}

	m.mu.Lock()
	m.report = &rep
	m.mu.Unlock()
	return rep, err
}

// Report returns the last finished report.
func (m *SoundMeter) Report() (spl.Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.report == nil {
		return spl.Report{}, false
	}
	return *m.report, true
}

// Close stops a running measurement and releases the session.
func (m *SoundMeter) Close() error {
	if m.Running() {
		_, _ = m.Stop()
	}
	m.bus.Close()
	return m.sess.Close()
}
