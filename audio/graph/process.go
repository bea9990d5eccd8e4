package graph

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Gain scales its input by an automatable factor, which may be negative.
type Gain struct {
	nodeBase

	// Gain is the linear factor applied to every channel.
	Gain *Param
}

// NewGain creates a unity gain node.
func (c *Context) NewGain() *Gain {
	g := &Gain{}
	g.init(c, g, 1, 1)
	g.Gain = newParam(c, 1, math.Inf(-1), math.Inf(1))
	return g
}

func (g *Gain) process(q int64, frame int64) {
	g.setChannels(g.inputChannels(q, 0, 2))
	g.mixInput(q, 0, g.out)
	gain := g.Gain.render(frame)
	for _, ch := range g.out {
		vecmath.MulBlockInPlace(ch, gain)
	}
}

// StereoPanner positions its input with an equal-power pan law.
type StereoPanner struct {
	nodeBase

	// Pan runs from -1 (left) to 1 (right).
	Pan *Param
	in  [][]float64
}

// NewStereoPanner creates a centred panner.
func (c *Context) NewStereoPanner() *StereoPanner {
	p := &StereoPanner{}
	p.init(c, p, 1, 2)
	p.Pan = newParam(c, 0, -1, 1)
	return p
}

func (p *StereoPanner) process(q int64, frame int64) {
	channels := p.inputChannels(q, 0, 2)
	if len(p.in) != channels {
		p.in = make([][]float64, channels)
		for i := range p.in {
			p.in[i] = make([]float64, RenderQuantum)
		}
	}
	p.mixInput(q, 0, p.in)
	pan := p.Pan.render(frame)
	left, right := p.out[0], p.out[1]

	if channels == 1 {
		mono := p.in[0]
		for i := range mono {
			gl, gr := panGains((pan[i] + 1) / 2)
			left[i] = mono[i] * gl
			right[i] = mono[i] * gr
		}
		return
	}

	inL, inR := p.in[0], p.in[1]
	for i := range inL {
		if pan[i] <= 0 {
			gl, gr := panGains(pan[i] + 1)
			left[i] = inL[i] + inR[i]*gl
			right[i] = inR[i] * gr
		} else {
			gl, gr := panGains(pan[i])
			left[i] = inL[i] * gl
			right[i] = inR[i] + inL[i]*gr
		}
	}
}

func panGains(x float64) (float64, float64) {
	return math.Cos(x * math.Pi / 2), math.Sin(x * math.Pi / 2)
}

// ChannelMerger combines n mono inputs into one n-channel output. Input i
// feeds only output channel i; unconnected inputs are silent.
type ChannelMerger struct {
	nodeBase
	mono [][]float64
}

// NewChannelMerger creates a merger with n inputs, at least one.
func (c *Context) NewChannelMerger(n int) *ChannelMerger {
	if n < 1 {
		n = 1
	}
	m := &ChannelMerger{}
	m.init(c, m, n, n)
	m.mono = [][]float64{nil}
	return m
}

func (m *ChannelMerger) process(q int64, _ int64) {
	for i := range m.inputs {
		m.mono[0] = m.out[i]
		m.mixInput(q, i, m.mono)
	}
}
