package sched

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualClockFiresInOrder(t *testing.T) {
	c := NewManualClock(epoch)
	var got []int
	c.AfterFunc(300*time.Millisecond, func() { got = append(got, 3) })
	c.AfterFunc(100*time.Millisecond, func() { got = append(got, 1) })
	c.AfterFunc(200*time.Millisecond, func() { got = append(got, 2) })

	c.Advance(250 * time.Millisecond)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("fired %v, want [1 2]", got)
	}
	if !c.Now().Equal(epoch.Add(250 * time.Millisecond)) {
		t.Fatalf("Now() = %v", c.Now())
	}
	c.Advance(time.Second)
	if len(got) != 3 {
		t.Fatalf("fired %v, want three", got)
	}
	if c.Pending() != 0 {
		t.Fatalf("Pending() = %d", c.Pending())
	}
}

func TestManualClockStop(t *testing.T) {
	c := NewManualClock(epoch)
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Fatal("Stop() = false for pending timer")
	}
	if tm.Stop() {
		t.Fatal("second Stop() = true")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestRepeat(t *testing.T) {
	c := NewManualClock(epoch)
	runs := 0
	task := Repeat(c, 800*time.Millisecond, func() { runs++ })
	if runs != 1 {
		t.Fatalf("runs = %d after start, want 1", runs)
	}

	c.Advance(2 * time.Second)
	if runs != 3 {
		t.Fatalf("runs = %d after 2s, want 3", runs)
	}

	silenced := 0
	task.Stop(func() { silenced++ })
	task.Stop(func() { silenced++ })
	if silenced != 1 {
		t.Fatalf("onStop ran %d times, want 1", silenced)
	}

	c.Advance(5 * time.Second)
	if runs != 3 {
		t.Fatalf("task ran after Stop: runs = %d", runs)
	}
	if !task.Stopped() {
		t.Fatal("Stopped() = false")
	}
}

func TestAfter(t *testing.T) {
	c := NewManualClock(epoch)
	runs := 0
	task := After(c, 500*time.Millisecond, func() { runs++ })
	c.Advance(499 * time.Millisecond)
	if runs != 0 {
		t.Fatal("fired early")
	}
	c.Advance(time.Millisecond)
	if runs != 1 || !task.Stopped() {
		t.Fatalf("runs = %d stopped = %v", runs, task.Stopped())
	}

	cancelled := After(c, time.Second, func() { runs++ })
	cancelled.Stop(nil)
	c.Advance(2 * time.Second)
	if runs != 1 {
		t.Fatalf("cancelled task ran: runs = %d", runs)
	}
}
