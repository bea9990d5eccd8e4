package viz

import (
	"context"
	"sync"

	"github.com/cwbudde/algo-audiocheck/internal/notify"
)

// HistoryPoints is about 30 s of readings at 10 per second.
const HistoryPoints = 300

// History is a fixed-length trace of loudness readings, pre-filled with
// zeros. It is safe for concurrent use.
type History struct {
	mu     sync.Mutex
	values []float64
}

// NewHistory returns a zero-filled history of n points; n <= 0 selects
// [HistoryPoints].
func NewHistory(n int) *History {
	if n <= 0 {
		n = HistoryPoints
	}
	return &History{values: make([]float64, n)}
}

// Push appends db, dropping the oldest point.
func (h *History) Push(db float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	copy(h.values, h.values[1:])
	h.values[len(h.values)-1] = db
}

// Values returns the trace, oldest first.
func (h *History) Values() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

// Len returns the number of points.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.values)
}

// Latest returns the newest point.
func (h *History) Latest() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.values[len(h.values)-1]
}

// HasData reports whether any point is above zero.
func (h *History) HasData() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.values {
		if v > 0 {
			return true
		}
	}
	return false
}

// Reset zeroes the trace.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.values)
}

// Follow pushes every update until ctx is done or updates is closed.
func (h *History) Follow(ctx context.Context, updates <-chan notify.Loudness) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			h.Push(u.DB)
		}
	}
}
