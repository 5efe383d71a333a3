package gl

import "sync"

// CallKind identifies which entry point a recorded call went through.
type CallKind uint8

const (
	CallDrawArrays CallKind = iota + 1
	CallDrawElements
	CallDrawArraysInstanced
)

// String returns the WebGL name of the entry point.
func (k CallKind) String() string {
	switch k {
	case CallDrawArrays:
		return "drawArrays"
	case CallDrawElements:
		return "drawElements"
	case CallDrawArraysInstanced:
		return "drawArraysInstanced"
	default:
		return "unknown"
	}
}

// Call is a single recorded draw call with its original arguments.
type Call struct {
	Kind          CallKind
	Mode          DrawMode
	First         int
	Count         int
	IndexType     IndexType
	Offset        int
	InstanceCount int
}

// Recorder is a DrawContext that performs no drawing. It is the null
// device of the headless host and, with Keep set, records every call.
type Recorder struct {
	// Keep retains every call for later inspection. When false only the
	// call total is tracked.
	Keep bool

	mu    sync.Mutex
	calls []Call
	total int
}

var _ DrawContext = (*Recorder)(nil)

// NewRecorder creates a Recorder that keeps every call.
func NewRecorder() *Recorder {
	return &Recorder{Keep: true}
}

func (r *Recorder) DrawArrays(mode DrawMode, first, count int) {
	r.record(Call{Kind: CallDrawArrays, Mode: mode, First: first, Count: count})
}

func (r *Recorder) DrawElements(mode DrawMode, count int, indexType IndexType, offset int) {
	r.record(Call{
		Kind:      CallDrawElements,
		Mode:      mode,
		Count:     count,
		IndexType: indexType,
		Offset:    offset,
	})
}

func (r *Recorder) DrawArraysInstanced(mode DrawMode, first, count, instanceCount int) {
	r.record(Call{
		Kind:          CallDrawArraysInstanced,
		Mode:          mode,
		First:         first,
		Count:         count,
		InstanceCount: instanceCount,
	})
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++

	if r.Keep {
		r.calls = append(r.calls, c)
	}
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)

	return out
}

// Total returns the number of calls received since the last Reset.
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.total
}

// Reset drops all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = r.calls[:0]
	r.total = 0
	r.mu.Unlock()
}
