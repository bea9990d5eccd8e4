package graph

import (
	"errors"
	"math"
	"sync"

	"github.com/cwbudde/algo-audiocheck/dsp/core"
)

// RenderQuantum is the number of frames processed per graph pass.
const RenderQuantum = 128

var (
	// ErrClosed is returned by operations on a closed context.
	ErrClosed = errors.New("graph: context closed")
	// ErrAlreadyStarted is returned when a source node is started twice.
	ErrAlreadyStarted = errors.New("graph: node already started")
	// ErrInvalidInput is returned for a connection to a missing input index.
	ErrInvalidInput = errors.New("graph: invalid input index")
	// ErrForeignNode is returned when connecting nodes of different contexts.
	ErrForeignNode = errors.New("graph: node belongs to another context")
	// ErrInvalidTime is returned for negative or non-finite event times.
	ErrInvalidTime = errors.New("graph: invalid time")
	// ErrInvalidRampValue is returned for exponential ramps to or from a non-positive value.
	ErrInvalidRampValue = errors.New("graph: exponential ramp value must be positive")
)

// State is the lifecycle state of a Context.
type State int

const (
	// StateSuspended renders silence without advancing time.
	StateSuspended State = iota
	// StateRunning renders the graph.
	StateRunning
	// StateClosed releases the graph for good.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context owns the sample clock and the node graph.
type Context struct {
	mu         sync.Mutex
	sampleRate float64
	frame      int64
	quantum    int64
	state      State

	dest  *Destination
	tails []node

	// rendered quantum not yet copied out by Render
	pending    [2 * RenderQuantum]float32
	pendingOff int
	pendingLen int

	callbacks []func()
}

// NewContext creates a suspended context with a stereo destination.
func NewContext(opts ...core.ProcessorOption) *Context {
	cfg := core.ApplyProcessorOptions(opts...)
	c := &Context{
		sampleRate: cfg.SampleRate,
		quantum:    -1,
	}
	c.dest = &Destination{}
	c.dest.init(c, c.dest, 1, 2)
	return c
}

// SampleRate returns the rendering rate in Hz.
func (c *Context) SampleRate() float64 {
	return c.sampleRate
}

// CurrentTime returns the time in seconds of the next frame to be rendered.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / c.sampleRate
}

// State returns the lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resume starts rendering.
func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrClosed
	}
	c.state = StateRunning
	return nil
}

// Suspend pauses rendering. Time does not advance while suspended.
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrClosed
	}
	c.state = StateSuspended
	return nil
}

// Close releases the graph. Closing twice is a no-op.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateClosed
	c.tails = nil
	c.dest.inputs[0] = nil
	return nil
}

// Destination returns the stereo output node.
func (c *Context) Destination() *Destination {
	return c.dest
}

// Render fills dst with interleaved stereo frames. A partial trailing frame
// is left untouched. When the context is not running dst is zeroed and time
// does not advance. It returns the number of frames rendered.
func (c *Context) Render(dst []float32) (int, error) {
	frames := len(dst) / 2

	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		clear(dst)
		return 0, ErrClosed
	case StateSuspended:
		c.mu.Unlock()
		clear(dst)
		return 0, nil
	}

	written := 0
	for written < frames {
		if c.pendingOff == c.pendingLen {
			c.renderQuantum()
		}
		n := min(frames-written, (c.pendingLen-c.pendingOff)/2)
		copy(dst[2*written:2*(written+n)], c.pending[c.pendingOff:c.pendingOff+2*n])
		c.pendingOff += 2 * n
		written += n
	}

	callbacks := c.callbacks
	c.callbacks = nil
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return frames, nil
}

func (c *Context) renderQuantum() {
	c.quantum++
	q := c.quantum

	out := pull(c.dest, q)
	for _, t := range c.tails {
		pull(t, q)
	}

	left, right := out[0], out[1]
	for i := 0; i < RenderQuantum; i++ {
		c.pending[2*i] = sanitize(left[i])
		c.pending[2*i+1] = sanitize(right[i])
	}
	c.pendingOff = 0
	c.pendingLen = 2 * RenderQuantum
	c.frame += RenderQuantum
}

func sanitize(v float64) float32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return float32(v)
}

// deferCall queues fn to run once the render lock is released. Callers hold c.mu.
func (c *Context) deferCall(fn func()) {
	c.callbacks = append(c.callbacks, fn)
}

func (c *Context) addTail(n node) {
	for _, t := range c.tails {
		if t == n {
			return
		}
	}
	c.tails = append(c.tails, n)
}

func (c *Context) removeTail(n node) {
	for i, t := range c.tails {
		if t == n {
			c.tails = append(c.tails[:i], c.tails[i+1:]...)
			return
		}
	}
}

func checkTime(t float64) error {
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return ErrInvalidTime
	}
	return nil
}
