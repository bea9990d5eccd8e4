package synth

import (
	"errors"
	"sync"

	"github.com/cwbudde/algo-audiocheck/audio/graph"
	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidSpec wraps validation failures of play requests.
	ErrInvalidSpec = errors.New("synth: invalid spec")
	// ErrInvalidFrequency is returned for non-positive frequencies.
	ErrInvalidFrequency = errors.New("synth: frequency must be > 0")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Voice is a playing signal.
type Voice interface {
	// Stop silences the voice immediately; calling it again does nothing.
	Stop()
	// Active reports whether the voice is still sounding.
	Active() bool
	// Done is closed once the voice has stopped or ended on its own.
	Done() <-chan struct{}
}

// voice holds the lifecycle shared by every playing signal.
type voice struct {
	sess   *session.Session
	ctx    *graph.Context
	mu     sync.Mutex
	handle session.Handle
	ended  bool
	done   chan struct{}
	nodes  []graph.Node

	// silence mutes the signal at the given context time before disconnect.
	silence func(now float64)
}

func (v *voice) init(sess *session.Session, ctx *graph.Context) {
	v.sess = sess
	v.ctx = ctx
	v.done = make(chan struct{})
}

// activate registers the voice as the session's live signal, tearing down the
// previous one. The voice's nodes must all be tracked by then.
func (v *voice) activate() {
	h := v.sess.Activate(v.Stop)
	v.mu.Lock()
	v.handle = h
	v.mu.Unlock()
}

func (v *voice) track(nodes ...graph.Node) {
	v.nodes = append(v.nodes, nodes...)
}

// Stop silences and disconnects the voice. It is idempotent.
func (v *voice) Stop() {
	v.finish(true)
}

// Active reports whether the voice is still sounding.
func (v *voice) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.ended
}

// Done is closed once the voice has stopped.
func (v *voice) Done() <-chan struct{} {
	return v.done
}

func (v *voice) finish(silence bool) {
	v.mu.Lock()
	if v.ended {
		v.mu.Unlock()
		return
	}
	v.ended = true
	h := v.handle
	v.mu.Unlock()

	if silence && v.silence != nil {
		v.silence(v.ctx.CurrentTime())
	}
	for _, n := range v.nodes {
		n.Disconnect()
	}
	v.sess.Deactivate(h)
	close(v.done)
}

// Side selects one output channel.
type Side int

const (
	// Left is output channel 0.
	Left Side = iota
	// Right is output channel 1.
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Route selects how a mono signal reaches the stereo output.
type Route int

const (
	// RoutePan places the signal with an equal-power panner; a centred pan
	// connects straight through.
	RoutePan Route = iota
	// RouteLeft sends the signal to the left channel only.
	RouteLeft
	// RouteRight sends the signal to the right channel only.
	RouteRight
)

// RouteFor returns the isolated route of side.
func RouteFor(side Side) Route {
	if side == Right {
		return RouteRight
	}
	return RouteLeft
}

// connectRoute wires src to out via route and returns the nodes it created.
func connectRoute(ctx *graph.Context, src, out graph.Node, route Route, pan float64) ([]graph.Node, error) {
	switch route {
	case RouteLeft, RouteRight:
		merger := ctx.NewChannelMerger(2)
		input := 0
		if route == RouteRight {
			input = 1
		}
		if err := src.ConnectChannel(merger, input); err != nil {
			return nil, err
		}
		if err := merger.Connect(out); err != nil {
			return nil, err
		}
		return []graph.Node{merger}, nil
	default:
		if pan == 0 {
			return nil, src.Connect(out)
		}
		panner := ctx.NewStereoPanner()
		panner.Pan.SetValue(pan)
		if err := src.Connect(panner); err != nil {
			return nil, err
		}
		if err := panner.Connect(out); err != nil {
			return nil, err
		}
		return []graph.Node{panner}, nil
	}
}
