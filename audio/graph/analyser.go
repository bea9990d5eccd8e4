package graph

import (
	"github.com/cwbudde/algo-audiocheck/dsp/spectrum"
)

// Analyser passes audio through unchanged while feeding a mono downmix to a
// [spectrum.Analyser]. It keeps analysing even when nothing consumes its
// output.
type Analyser struct {
	nodeBase

	analyser *spectrum.Analyser
	mono     [][]float64
}

// NewAnalyser creates an analyser node.
func (c *Context) NewAnalyser(opts ...spectrum.Option) (*Analyser, error) {
	sa, err := spectrum.NewAnalyser(opts...)
	if err != nil {
		return nil, err
	}
	a := &Analyser{
		analyser: sa,
		mono:     [][]float64{make([]float64, RenderQuantum)},
	}
	a.init(c, a, 1, 1)
	c.mu.Lock()
	c.addTail(a)
	c.mu.Unlock()
	return a, nil
}

func (a *Analyser) process(q int64, _ int64) {
	a.setChannels(a.inputChannels(q, 0, 2))
	a.mixInput(q, 0, a.out)
	clear(a.mono[0])
	mixInto(a.mono, a.out)
	a.analyser.Write(a.mono[0])
}

// FrequencyBinCount returns half the FFT size.
func (a *Analyser) FrequencyBinCount() int {
	return a.analyser.FrequencyBinCount()
}

// FFTSize returns the analysis length.
func (a *Analyser) FFTSize() int {
	return a.analyser.FFTSize()
}

// ByteFrequencyData copies the current byte spectrum into dst.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()
	a.analyser.ByteFrequencyData(dst)
}

// FloatFrequencyData copies the current dB spectrum into dst.
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()
	a.analyser.FloatFrequencyData(dst)
}

// ByteTimeDomainData copies the latest waveform as bytes into dst.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()
	a.analyser.ByteTimeDomainData(dst)
}

// FloatTimeDomainData copies the latest waveform into dst.
func (a *Analyser) FloatTimeDomainData(dst []float64) {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()
	a.analyser.FloatTimeDomainData(dst)
}

// Release stops analysing.
func (a *Analyser) Release() {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()
	a.disconnectLocked()
	a.ctx.removeTail(a)
}

// Tap collects its mono-mixed input into blocks and hands each full block to
// a callback. Its own output is silent.
type Tap struct {
	nodeBase

	size    int
	fill    int
	block   []float64
	mono    [][]float64
	handler func([]float64)
}

// NewTap creates a tap delivering blocks of size frames to handler. Each
// call receives a fresh slice.
func (c *Context) NewTap(size int, handler func(block []float64)) *Tap {
	if size < 1 {
		size = RenderQuantum
	}
	t := &Tap{
		size:    size,
		block:   make([]float64, size),
		mono:    [][]float64{make([]float64, RenderQuantum)},
		handler: handler,
	}
	t.init(c, t, 1, 1)
	c.mu.Lock()
	c.addTail(t)
	c.mu.Unlock()
	return t
}

// Release detaches the tap so it stops receiving audio.
func (t *Tap) Release() {
	t.ctx.mu.Lock()
	defer t.ctx.mu.Unlock()
	t.disconnectLocked()
	t.ctx.removeTail(t)
	t.handler = nil
}

func (t *Tap) process(q int64, _ int64) {
	t.mixInput(q, 0, t.mono)
	clear(t.out[0])
	if !t.connected() || t.handler == nil {
		return
	}
	for _, v := range t.mono[0] {
		t.block[t.fill] = v
		t.fill++
		if t.fill == t.size {
			block := make([]float64, t.size)
			copy(block, t.block)
			handler := t.handler
			t.ctx.deferCall(func() { handler(block) })
			t.fill = 0
		}
	}
}
