package graph

import (
	"math"
	"sort"
)

type eventKind int

const (
	eventSet eventKind = iota
	eventLinear
	eventExponential
)

type paramEvent struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is an automatable node parameter evaluated for every sample.
//
// Ramps run from the previous event (or, without one, from the value at the
// time the ramp was scheduled) to their target at their end time.
type Param struct {
	ctx      *Context
	value    float64
	min, max float64
	events   []paramEvent
	buf      []float64
}

func newParam(ctx *Context, value, lo, hi float64) *Param {
	return &Param{
		ctx:   ctx,
		value: value,
		min:   lo,
		max:   hi,
		buf:   make([]float64, RenderQuantum),
	}
}

// Value returns the value at the current context time.
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.clamp(p.valueAt(p.ctx.now()))
}

// SetValue sets the value from the current time on. Automation scheduled
// after the current time is kept.
func (p *Param) SetValue(v float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if len(p.events) == 0 {
		p.value = v
		return
	}
	p.insert(paramEvent{kind: eventSet, time: p.ctx.now(), value: v})
}

// SetValueAtTime jumps to v at time t.
func (p *Param) SetValueAtTime(v, t float64) error {
	if err := checkTime(t); err != nil {
		return err
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(paramEvent{kind: eventSet, time: t, value: v})
	return nil
}

// LinearRampToValueAtTime ramps linearly to v, reaching it at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) error {
	if err := checkTime(t); err != nil {
		return err
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.anchor(t)
	p.insert(paramEvent{kind: eventLinear, time: t, value: v})
	return nil
}

// ExponentialRampToValueAtTime ramps exponentially to v, reaching it at
// time t. v must be positive. A ramp whose start value is not positive holds
// the start value until t.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) error {
	if err := checkTime(t); err != nil {
		return err
	}
	if !(v > 0) {
		return ErrInvalidRampValue
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.anchor(t)
	p.insert(paramEvent{kind: eventExponential, time: t, value: v})
	return nil
}

// CancelScheduledValues removes every event at or after t.
func (p *Param) CancelScheduledValues(t float64) error {
	if err := checkTime(t); err != nil {
		return err
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	p.events = p.events[:i]
	return nil
}

// anchor gives a ramp ending at t a start point when none precedes it.
func (p *Param) anchor(t float64) {
	for _, ev := range p.events {
		if ev.time < t {
			return
		}
	}
	now := p.ctx.now()
	p.insert(paramEvent{kind: eventSet, time: min(now, t), value: p.valueAt(now)})
}

func (p *Param) insert(ev paramEvent) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > ev.time })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

func (p *Param) valueAt(t float64) float64 {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
	if i < len(p.events) && p.events[i].kind != eventSet && i > 0 {
		prev, next := p.events[i-1], p.events[i]
		return interpolate(prev.time, prev.value, next, t)
	}
	if i == 0 {
		return p.value
	}
	return p.events[i-1].value
}

func interpolate(t0, v0 float64, next paramEvent, t float64) float64 {
	span := next.time - t0
	if span <= 0 {
		return next.value
	}
	x := (t - t0) / span
	if next.kind == eventLinear {
		return v0 + (next.value-v0)*x
	}
	if v0 <= 0 {
		return v0
	}
	return v0 * math.Pow(next.value/v0, x)
}

func (p *Param) clamp(v float64) float64 {
	if v < p.min {
		return p.min
	}
	if v > p.max {
		return p.max
	}
	return v
}

// render evaluates the param for the quantum starting at frame and drops
// events that can no longer influence later values.
func (p *Param) render(frame int64) []float64 {
	if len(p.events) == 0 {
		v := p.clamp(p.value)
		for i := range p.buf {
			p.buf[i] = v
		}
		return p.buf
	}

	sr := p.ctx.sampleRate
	for i := range p.buf {
		p.buf[i] = p.clamp(p.valueAt(float64(frame+int64(i)) / sr))
	}

	end := float64(frame+RenderQuantum-1) / sr
	for len(p.events) > 1 && p.events[1].time <= end {
		p.events = p.events[1:]
	}
	if len(p.events) == 1 && p.events[0].time <= end {
		p.value = p.events[0].value
		p.events = p.events[:0]
	}
	return p.buf
}
