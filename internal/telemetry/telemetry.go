// Package telemetry records anonymous usage events. Sinks never return
// errors: analytics must not affect the tools that emit them.
package telemetry

import (
	"log/slog"
	"maps"
	"sync"
)

// Sink receives named events with optional attributes.
type Sink interface {
	Event(name string, attrs map[string]any)
}

// Nop discards every event.
type Nop struct{}

// Event does nothing.
func (Nop) Event(string, map[string]any) {}

// Slog writes events as structured log records.
type Slog struct {
	Logger *slog.Logger
}

// Event logs name with attrs at info level.
func (s Slog) Event(name string, attrs map[string]any) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, 2*len(attrs)+2)
	args = append(args, "event", name)
	for k, v := range attrs {
		args = append(args, k, v)
	}
	logger.Info("telemetry", args...)
}

type event struct {
	name  string
	attrs map[string]any
}

// Async forwards events to another sink on a background goroutine. When the
// buffer is full new events are dropped.
type Async struct {
	next   Sink
	queue  chan event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewAsync starts the forwarding goroutine.
func NewAsync(next Sink, buffer int) *Async {
	if next == nil {
		next = Nop{}
	}
	if buffer < 1 {
		buffer = 1
	}
	a := &Async{
		next:  next,
		queue: make(chan event, buffer),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.queue {
		a.next.Event(ev.name, ev.attrs)
	}
}

// Event queues the event without blocking.
func (a *Async) Event(name string, attrs map[string]any) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- event{name: name, attrs: maps.Clone(attrs)}:
	default:
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	<-a.done
}
