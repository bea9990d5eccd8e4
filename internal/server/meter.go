package server

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/dsp/core"
	"github.com/cwbudde/algo-audiocheck/internal/tools"
	"github.com/cwbudde/algo-audiocheck/measure/spl"
)

// ErrFrameLength is returned for binary frames that are not whole float32 samples.
var ErrFrameLength = errors.New("server: binary frame is not a multiple of 4 bytes")

// WebSocketConn is the interface for WebSocket connection operations.
type WebSocketConn interface {
	io.Closer
	WriteJSON(v any) error
	ReadMessage() (int, []byte, error)
}

// granted stands in for the browser's permission prompt: the client already
// captured the microphone before streaming.
func granted() error { return nil }

// meterConn is the per-connection sound meter.
type meterConn struct {
	send chan<- any

	mu         sync.Mutex
	meter      *tools.SoundMeter
	sampleRate float64
	bars       int
	defBars    int
	samples    []float64
}

func newMeterConn(send chan<- any, bars int) *meterConn {
	return &meterConn{send: send, bars: bars, defBars: bars}
}

func (c *meterConn) handleMessage(kind int, payload []byte) {
	switch kind {
	case websocket.BinaryMessage:
		if err := c.push(payload); err != nil {
			SendError(c.send, "samples", err)
		}
	case websocket.TextMessage:
		var cmd WSCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			SendError(c.send, "command", fmt.Errorf("invalid JSON: %w", err))
			return
		}
		c.handle(cmd)
	}
}

func (c *meterConn) handle(cmd WSCommand) {
	switch cmd.Type {
	case "start":
		var req StartRequest
		if !DecodeAndValidate(cmd, c.send, &req) {
			return
		}
		if err := c.start(req); err != nil {
			SendError(c.send, cmd.Type, err)
			return
		}
		SendSuccess(c.send, cmd.Type, map[string]any{"sample_rate": req.SampleRate})
	case "stop":
		rep, err := c.stop()
		if err != nil {
			SendError(c.send, cmd.Type, err)
			return
		}
		trySend(c.send, "report", reportMessage(rep))
		SendSuccess(c.send, cmd.Type, nil)
	default:
		slog.Warn("unknown WebSocket command", "type", cmd.Type)
		SendError(c.send, cmd.Type, fmt.Errorf("unknown command %q", cmd.Type))
	}
}

func (c *meterConn) start(req StartRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.meter != nil && c.meter.Running() {
		return spl.ErrRunning
	}
	// The history survives restarts at the same rate.
	if c.meter != nil && c.sampleRate != req.SampleRate {
		if err := c.meter.Close(); err != nil {
			slog.Debug("closing sound meter", "error", err)
		}
		c.meter = nil
	}
	if c.meter == nil {
		c.meter = tools.NewSoundMeter([]session.Option{session.WithSampleRate(req.SampleRate)})
		c.sampleRate = req.SampleRate
	}
	c.bars = c.defBars
	if req.Bars > 0 {
		c.bars = req.Bars
	}
	if err := c.meter.Start(granted); err != nil {
		return fmt.Errorf("start meter: %w", err)
	}
	slog.Info("sound meter started", "sample_rate", req.SampleRate)
	return nil
}

func (c *meterConn) stop() (spl.Report, error) {
	c.mu.Lock()
	m := c.meter
	c.mu.Unlock()
	if m == nil {
		return spl.Report{}, spl.ErrNotRunning
	}
	rep, err := m.Stop()
	if errors.Is(err, spl.ErrNotRunning) {
		return rep, err
	}
	if err != nil {
		slog.Warn("sound meter stopped with error", "error", err)
	}
	slog.Info("sound meter stopped", "avg", rep.Avg, "samples", rep.Samples)
	return rep, nil
}

// push decodes float32 little-endian samples and feeds them to the meter.
func (c *meterConn) push(payload []byte) error {
	if len(payload)%4 != 0 {
		return ErrFrameLength
	}
	c.mu.Lock()
	m := c.meter
	n := len(payload) / 4
	c.samples = core.EnsureLen(c.samples, n)
	samples := c.samples
	c.mu.Unlock()
	if m == nil {
		return tools.ErrMeterStopped
	}

	for i := range samples {
		samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:])))
	}
	return m.Process(samples)
}

// updates returns the messages of one tick; none while stopped.
func (c *meterConn) updates() []any {
	c.mu.Lock()
	m, bars := c.meter, c.bars
	c.mu.Unlock()
	if m == nil || !m.Running() {
		return nil
	}
	frame := m.Frame(bars)
	return []any{
		levelMessage(m.Reading()),
		SpectrumMessage{Type: "spectrum", Bars: frame.Bars},
	}
}

func (c *meterConn) close() {
	c.mu.Lock()
	m := c.meter
	c.meter = nil
	c.mu.Unlock()
	if m != nil {
		if err := m.Close(); err != nil {
			slog.Debug("closing sound meter", "error", err)
		}
	}
}
