// Package instrument ties draw-call observation, frame-rate tracking and
// the display together in a per-graphics-context instrumentation context.
package instrument

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/display"
	"github.com/ethpandaops/glmetrics/internal/fps"
	"github.com/ethpandaops/glmetrics/internal/gl"
	"github.com/ethpandaops/glmetrics/internal/metrics"
)

// ReportHandler consumes reports produced by Tick.
type ReportHandler interface {
	HandleReport(report Report)
}

// ReportHandlerFunc adapts a function to ReportHandler.
type ReportHandlerFunc func(report Report)

func (f ReportHandlerFunc) HandleReport(report Report) { f(report) }

// ErrorHandler is called with observation and display errors.
type ErrorHandler func(err error)

// Option configures a Context.
type Option func(*Context)

// WithVariant sets the metrics variant. Defaults to VariantModule.
func WithVariant(v Variant) Option {
	return func(c *Context) { c.variant = v }
}

// WithWindow sets the frame-rate window in milliseconds.
func WithWindow(ms float64) Option {
	return func(c *Context) { c.tracker = fps.NewTracker(ms) }
}

// WithReportHandler adds a handler that receives every report.
func WithReportHandler(h ReportHandler) Option {
	return func(c *Context) { c.handlers = append(c.handlers, h) }
}

// WithErrorHandler adds a handler for observation and display errors.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(c *Context) { c.onError = append(c.onError, fn) }
}

// Context is the instrumentation state for one graphics context.
type Context struct {
	log     logrus.FieldLogger
	variant Variant
	display display.Display

	counters *metrics.PrimCounters
	tracker  *fps.Tracker
	objects  atomic.Int64
	frame    atomic.Uint64

	handlers []ReportHandler
	onError  []ErrorHandler

	mu      sync.Mutex
	lastErr error
}

// New creates a Context that writes to d. A nil display discards output.
func New(log logrus.FieldLogger, d display.Display, opts ...Option) *Context {
	if d == nil {
		d = display.Discard
	}

	c := &Context{
		log:      log.WithField("component", "instrument"),
		variant:  VariantModule,
		display:  d,
		counters: metrics.NewPrimCounters(),
		tracker:  fps.NewTracker(fps.DefaultWindowMs),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Variant returns the configured metrics variant.
func (c *Context) Variant() Variant { return c.variant }

// Observe adds the primitives of one draw call to the current interval.
// Unsupported modes return metrics.ErrUnsupportedPrimitiveType and leave
// the counters untouched.
func (c *Context) Observe(mode gl.DrawMode, count int64) error {
	return c.counters.Add(mode, count)
}

// Counts returns the primitives observed since the last tick.
func (c *Context) Counts() metrics.Counts {
	return c.counters.Load()
}

// SetNumberOfObjects records the scene object count. The display picks
// it up on the next tick.
func (c *Context) SetNumberOfObjects(n int) {
	c.objects.Store(int64(n))
}

// NumberOfObjects returns the last recorded object count.
func (c *Context) NumberOfObjects() int {
	return int(c.objects.Load())
}

// Tick marks the end of a rendered frame at now (milliseconds). It
// updates the frame rate, reads and resets the primitive counters,
// writes the text block to the display and forwards the report to every
// handler. Counters are reset even if the display write fails.
func (c *Context) Tick(now float64) (Report, error) {
	frames := c.tracker.Tick(now)
	counts := c.counters.Snapshot()

	report := Report{
		Frame:       c.frame.Add(1),
		TimestampMs: now,
		FPS:         frames,
		Objects:     c.NumberOfObjects(),
		Triangles:   counts.Triangles,
		Lines:       counts.Lines,
		Points:      counts.Points,
		Variant:     c.variant,
	}

	var err error
	if showErr := c.display.Show(report.Text()); showErr != nil {
		err = fmt.Errorf("updating display: %w", showErr)
		c.fail(err)
	}

	for _, h := range c.handlers {
		h.HandleReport(report)
	}

	return report, err
}

// LastError returns the most recent observation or display error.
func (c *Context) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastErr
}

func (c *Context) fail(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	for _, fn := range c.onError {
		fn(err)
	}
}
