package sched

import (
	"sync"
	"time"
)

// Task is a repeating callback started by Repeat.
type Task struct {
	mu      sync.Mutex
	clock   Clock
	period  time.Duration
	fn      func()
	timer   Timer
	stopped bool
}

// Repeat runs fn immediately and then every period until the task is
// stopped. Runs never overlap, and fn must not call Stop on its own task.
func Repeat(clock Clock, period time.Duration, fn func()) *Task {
	t := &Task{clock: clock, period: period, fn: fn}
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
	t.timer = clock.AfterFunc(period, t.tick)
	return t
}

// After runs fn once after d unless the task is stopped first.
func After(clock Clock, d time.Duration, fn func()) *Task {
	t := &Task{clock: clock, fn: fn}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = clock.AfterFunc(d, t.tick)
	return t
}

func (t *Task) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.fn()
	if t.period <= 0 {
		t.stopped = true
		return
	}
	t.timer = t.clock.AfterFunc(t.period, t.tick)
}

// Stop cancels future runs and then calls onStop, if non-nil, before
// returning. Once Stop returns fn is guaranteed not to run again. Stopping an
// already stopped task does nothing and onStop is not called.
func (t *Task) Stop(onStop func()) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
	if onStop != nil {
		onStop()
	}
}

// Stopped reports whether the task has been stopped or a one-shot task has fired.
func (t *Task) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
