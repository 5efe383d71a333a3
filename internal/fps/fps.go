// Package fps tracks displayed frames over a trailing time window.
package fps

import "sync"

// DefaultWindowMs is the trailing window used by browser hosts.
const DefaultWindowMs = 1000.0

// Tracker records one timestamp per displayed frame. Its estimate is the
// number of frames inside the trailing window, not frames divided by
// elapsed time.
type Tracker struct {
	mu       sync.Mutex
	windowMs float64
	times    []float64
}

// NewTracker creates a Tracker with the given window in milliseconds.
// Non-positive windows fall back to DefaultWindowMs.
func NewTracker(windowMs float64) *Tracker {
	if windowMs <= 0 {
		windowMs = DefaultWindowMs
	}

	return &Tracker{
		windowMs: windowMs,
		times:    make([]float64, 0, 128),
	}
}

// Tick evicts every timestamp at or before now-window, records now and
// returns the number of frames left in the window.
func (t *Tracker) Tick(now float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now - t.windowMs

	i := 0
	for i < len(t.times) && t.times[i] <= cutoff {
		i++
	}

	if i > 0 {
		// Shift in place so the backing array is reused.
		n := copy(t.times, t.times[i:])
		t.times = t.times[:n]
	}

	t.times = append(t.times, now)

	return len(t.times)
}

// Len returns the number of frames currently held.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.times)
}

// WindowMs returns the trailing window length.
func (t *Tracker) WindowMs() float64 {
	return t.windowMs
}
