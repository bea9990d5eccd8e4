package graph

import "math"

// scheduled tracks the start/stop lifecycle shared by source nodes.
type scheduled struct {
	started bool
	ended   bool
	start   float64
	stop    float64
	onEnded func()
}

func (s *scheduled) doStart(ctx *Context, when float64) error {
	if err := checkTime(when); err != nil {
		return err
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.start = when
	s.stop = math.Inf(1)
	return nil
}

func (s *scheduled) doStop(ctx *Context, when float64) error {
	if err := checkTime(when); err != nil {
		return err
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if !s.started || s.ended {
		return nil
	}
	s.stop = when
	return nil
}

// active reports whether frame time t is inside the play window.
func (s *scheduled) active(t float64) bool {
	return s.started && !s.ended && t >= s.start && t < s.stop
}

// finish marks the source ended and queues the ended callback.
func (s *scheduled) finish(ctx *Context) {
	if s.ended {
		return
	}
	s.ended = true
	if s.onEnded != nil {
		ctx.deferCall(s.onEnded)
	}
}

// Oscillator is a sine source with an automatable frequency.
type Oscillator struct {
	nodeBase
	scheduled

	// Frequency in Hz.
	Frequency *Param
	phase     float64
}

// NewOscillator creates a stopped 440 Hz sine oscillator.
func (c *Context) NewOscillator() *Oscillator {
	o := &Oscillator{}
	o.init(c, o, 0, 1)
	nyquist := c.sampleRate / 2
	o.Frequency = newParam(c, 440, -nyquist, nyquist)
	return o
}

// Start begins output at context time when.
func (o *Oscillator) Start(when float64) error { return o.doStart(o.ctx, when) }

// Stop ends output at context time when. Stopping a node that was never
// started or has already ended does nothing.
func (o *Oscillator) Stop(when float64) error { return o.doStop(o.ctx, when) }

// OnEnded registers fn to run once the oscillator has stopped.
func (o *Oscillator) OnEnded(fn func()) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.onEnded = fn
}

// Ended reports whether the oscillator has reached its stop time.
func (o *Oscillator) Ended() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.ended
}

func (o *Oscillator) process(_ int64, frame int64) {
	out := o.out[0]
	freq := o.Frequency.render(frame)
	sr := o.ctx.sampleRate
	for i := range out {
		t := float64(frame+int64(i)) / sr
		if !o.active(t) {
			out[i] = 0
			continue
		}
		out[i] = math.Sin(o.phase)
		o.phase += 2 * math.Pi * freq[i] / sr
		if o.phase >= 2*math.Pi || o.phase <= -2*math.Pi {
			o.phase = math.Mod(o.phase, 2*math.Pi)
		}
	}
	if o.started && float64(frame+RenderQuantum)/sr >= o.stop {
		o.finish(o.ctx)
	}
}

// BufferSource plays a mono sample buffer, optionally looped.
type BufferSource struct {
	nodeBase
	scheduled

	buffer []float64
	loop   bool
	pos    int
}

// NewBufferSource creates a source for buffer. The slice is not copied and
// must not be modified while playing.
func (c *Context) NewBufferSource(buffer []float64, loop bool) *BufferSource {
	s := &BufferSource{buffer: buffer, loop: loop}
	s.init(c, s, 0, 1)
	return s
}

// Start begins playback at context time when.
func (s *BufferSource) Start(when float64) error { return s.doStart(s.ctx, when) }

// Stop ends playback at context time when.
func (s *BufferSource) Stop(when float64) error { return s.doStop(s.ctx, when) }

// OnEnded registers fn to run once playback has finished.
func (s *BufferSource) OnEnded(fn func()) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.onEnded = fn
}

// Ended reports whether playback has finished.
func (s *BufferSource) Ended() bool {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.ended
}

func (s *BufferSource) process(_ int64, frame int64) {
	out := s.out[0]
	sr := s.ctx.sampleRate
	for i := range out {
		t := float64(frame+int64(i)) / sr
		if !s.active(t) || len(s.buffer) == 0 {
			out[i] = 0
			continue
		}
		if s.pos >= len(s.buffer) {
			if !s.loop {
				out[i] = 0
				s.finish(s.ctx)
				continue
			}
			s.pos = 0
		}
		out[i] = s.buffer[s.pos]
		s.pos++
	}
	if s.started && float64(frame+RenderQuantum)/sr >= s.stop {
		s.finish(s.ctx)
	}
	if s.started && !s.loop && s.pos >= len(s.buffer) && len(s.buffer) > 0 {
		s.finish(s.ctx)
	}
}

// MediaStreamSource replays samples pushed by a capture device. When the
// queue runs dry it outputs silence.
type MediaStreamSource struct {
	nodeBase

	queue    []float64
	capacity int
}

// NewMediaStreamSource creates a live input holding at most capacity
// queued samples; older samples are discarded on overflow. A capacity below
// one render quantum defaults to one second of audio.
func (c *Context) NewMediaStreamSource(capacity int) *MediaStreamSource {
	if capacity < RenderQuantum {
		capacity = int(c.sampleRate)
	}
	m := &MediaStreamSource{capacity: capacity}
	m.init(c, m, 0, 1)
	return m
}

// Push queues captured mono samples.
func (m *MediaStreamSource) Push(samples []float64) {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	m.queue = append(m.queue, samples...)
	if over := len(m.queue) - m.capacity; over > 0 {
		m.queue = append(m.queue[:0], m.queue[over:]...)
	}
}

// Queued returns the number of samples waiting to be rendered.
func (m *MediaStreamSource) Queued() int {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	return len(m.queue)
}

func (m *MediaStreamSource) process(_ int64, _ int64) {
	out := m.out[0]
	n := copy(out, m.queue)
	clear(out[n:])
	m.queue = m.queue[n:]
	if len(m.queue) == 0 {
		m.queue = nil
	}
}
