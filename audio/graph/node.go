package graph

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Node is a vertex of the audio graph.
type Node interface {
	// Connect routes every output channel into input 0 of dst.
	Connect(dst Node) error
	// ConnectChannel routes the output into input index of dst.
	ConnectChannel(dst Node, input int) error
	// Disconnect removes every outgoing connection.
	Disconnect()

	base() *nodeBase
}

// node is implemented by every concrete node type.
type node interface {
	Node
	process(q int64, frame int64)
}

type edge struct {
	src   node
	dst   node
	input int
}

type nodeBase struct {
	ctx  *Context
	self node

	inputs   [][]*edge
	outgoing []*edge

	out      [][]float64
	rendered int64
}

func (b *nodeBase) init(ctx *Context, self node, inputs, channels int) {
	b.ctx = ctx
	b.self = self
	b.inputs = make([][]*edge, inputs)
	b.rendered = -1
	b.setChannels(channels)
}

func (b *nodeBase) base() *nodeBase { return b }

func (b *nodeBase) setChannels(n int) {
	if len(b.out) == n {
		return
	}
	b.out = make([][]float64, n)
	for i := range b.out {
		b.out[i] = make([]float64, RenderQuantum)
	}
}

// Connect routes the output into input 0 of dst.
func (b *nodeBase) Connect(dst Node) error {
	return b.ConnectChannel(dst, 0)
}

// ConnectChannel routes the output into input index of dst. Connecting the
// same pair twice has no further effect.
func (b *nodeBase) ConnectChannel(dst Node, input int) error {
	if dst == nil {
		return fmt.Errorf("graph: connect to nil node")
	}
	db := dst.base()
	if db.ctx != b.ctx {
		return ErrForeignNode
	}
	if input < 0 || input >= len(db.inputs) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidInput, input, len(db.inputs))
	}

	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()
	for _, e := range b.outgoing {
		if e.dst.base() == db && e.input == input {
			return nil
		}
	}
	e := &edge{src: b.self, dst: db.self, input: input}
	b.outgoing = append(b.outgoing, e)
	db.inputs[input] = append(db.inputs[input], e)
	return nil
}

// Disconnect removes every outgoing connection.
func (b *nodeBase) Disconnect() {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()
	b.disconnectLocked()
}

func (b *nodeBase) disconnectLocked() {
	for _, e := range b.outgoing {
		db := e.dst.base()
		list := db.inputs[e.input]
		for i, other := range list {
			if other == e {
				db.inputs[e.input] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
	b.outgoing = nil
}

func (b *nodeBase) connected() bool {
	for _, in := range b.inputs {
		if len(in) > 0 {
			return true
		}
	}
	return false
}

// pull renders n for quantum q once and returns its output channels.
func pull(n node, q int64) [][]float64 {
	b := n.base()
	if b.rendered == q {
		return b.out
	}
	// marking first turns a cycle into one quantum of latency
	b.rendered = q
	n.process(q, b.ctx.frame)
	return b.out
}

// inputChannels returns the channel count of input i under max mixing,
// limited to limit.
func (b *nodeBase) inputChannels(q int64, i, limit int) int {
	n := 1
	for _, e := range b.inputs[i] {
		if c := len(pull(e.src, q)); c > n {
			n = c
		}
	}
	return min(n, limit)
}

// mixInput sums every connection of input i into dst, up- or down-mixing
// each source to len(dst) channels. dst is cleared first.
func (b *nodeBase) mixInput(q int64, i int, dst [][]float64) {
	for _, ch := range dst {
		clear(ch)
	}
	for _, e := range b.inputs[i] {
		src := pull(e.src, q)
		mixInto(dst, src)
	}
}

func mixInto(dst, src [][]float64) {
	switch {
	case len(src) == len(dst):
		for c := range dst {
			addTo(dst[c], src[c], 1)
		}
	case len(src) == 1:
		for c := range dst {
			addTo(dst[c], src[0], 1)
		}
	case len(dst) == 1:
		addTo(dst[0], src[0], 0.5)
		addTo(dst[0], src[1], 0.5)
	default:
		// discrete: extra source channels are dropped
		for c := range dst {
			if c < len(src) {
				addTo(dst[c], src[c], 1)
			}
		}
	}
}

func addTo(dst, src []float64, scale float64) {
	if scale == 1 {
		vecmath.AddBlockInPlace(dst, src)
		return
	}
	for i := range dst {
		dst[i] += src[i] * scale
	}
}

// Destination is the stereo sink read by Context.Render.
type Destination struct {
	nodeBase
}

func (d *Destination) process(q int64, _ int64) {
	d.mixInput(q, 0, d.out)
}

// Connect is not supported on the destination.
func (d *Destination) Connect(Node) error {
	return fmt.Errorf("graph: destination has no outputs")
}

// ConnectChannel is not supported on the destination.
func (d *Destination) ConnectChannel(Node, int) error {
	return fmt.Errorf("graph: destination has no outputs")
}
