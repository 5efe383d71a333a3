// Package harness renders the benchmark scene headlessly through the
// draw interceptor and feeds every tick report to the configured sinks.
package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/clock"
	"github.com/ethpandaops/glmetrics/internal/display"
	"github.com/ethpandaops/glmetrics/internal/export"
	"github.com/ethpandaops/glmetrics/internal/gl"
	"github.com/ethpandaops/glmetrics/internal/instrument"
	"github.com/ethpandaops/glmetrics/internal/panel"
	"github.com/ethpandaops/glmetrics/internal/scene"
	"github.com/ethpandaops/glmetrics/internal/sink"
)

// Harness is the top-level orchestrator for a headless run.
type Harness interface {
	// Start initializes all components and begins rendering.
	Start(ctx context.Context) error
	// Stop shuts down all components gracefully.
	Stop() error
	// Done is closed when the configured duration has elapsed.
	Done() <-chan struct{}
}

type harness struct {
	log    logrus.FieldLogger
	cfg    *Config
	runID  string
	health *export.HealthMetrics
	clock  clock.Clock
	sinks  []sink.Sink

	device     *gl.Recorder
	instr      *instrument.Context
	scene      *scene.Scene
	controller *panel.Controller
	now        func() float64

	mu   sync.Mutex
	last instrument.Report

	done     chan struct{}
	doneOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a new Harness that writes the display block to stdout.
func New(log logrus.FieldLogger, cfg *Config) (Harness, error) {
	return newHarness(log, cfg, os.Stdout)
}

func newHarness(log logrus.FieldLogger, cfg *Config, out io.Writer) (*harness, error) {
	variant, err := instrument.ParseVariant(cfg.Variant)
	if err != nil {
		return nil, fmt.Errorf("parsing variant: %w", err)
	}

	settings, err := cfg.Scene.Settings()
	if err != nil {
		return nil, fmt.Errorf("parsing scene config: %w", err)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	health := export.NewHealthMetrics(log, cfg.Health)

	h := &harness{
		log:    log.WithField("component", "harness"),
		cfg:    cfg,
		runID:  runID,
		health: health,
		sinks:  make([]sink.Sink, 0, 4),
		device: &gl.Recorder{},
		now:    monotonicMs,
		done:   make(chan struct{}),
	}

	if err := h.buildSinks(log); err != nil {
		return nil, err
	}

	var disp display.Display = display.Discard
	if cfg.Display.Enabled {
		disp = display.NewWriterDisplay(out, cfg.Display.Clear)
	}

	opts := []instrument.Option{
		instrument.WithVariant(variant),
		instrument.WithWindow(cfg.WindowMs),
		instrument.WithReportHandler(health),
		instrument.WithReportHandler(instrument.ReportHandlerFunc(h.keepLast)),
		instrument.WithErrorHandler(health.RecordError),
		instrument.WithErrorHandler(func(err error) {
			h.log.WithError(err).Debug("Instrumentation error")
		}),
	}

	for _, s := range h.sinks {
		opts = append(opts, instrument.WithReportHandler(s))
	}

	h.instr = instrument.New(log, disp, opts...)
	h.scene = scene.New(log, instrument.NewInterceptor(h.device, h.instr), scene.Options{
		Resolution: cfg.Scene.Resolution,
		Instancing: cfg.Scene.Instancing,
	})
	h.controller = panel.NewController(log, h.scene, h.instr, nil, settings)

	return h, nil
}

// buildSinks creates the enabled sinks. The segment sink is placed
// before the ClickHouse sink so its final summary is written before the
// ClickHouse connection closes.
func (h *harness) buildSinks(log logrus.FieldLogger) error {
	cfg := h.cfg.Sinks

	var clickhouse *sink.ClickHouseSink
	if cfg.ClickHouse.Enabled {
		clickhouse = sink.NewClickHouseSink(log, cfg.ClickHouse, h.runID, h.health)
	}

	if cfg.Log.Enabled {
		h.sinks = append(h.sinks, sink.NewLogSink(log, cfg.Log))
	}

	if cfg.Segment.Enabled {
		var handlers []sink.SummaryHandler
		if clickhouse != nil {
			handlers = append(handlers, clickhouse)
		}

		h.sinks = append(h.sinks, sink.NewSegmentSink(log, cfg.Segment, h.health, handlers...))
	}

	if cfg.HTTP.Enabled {
		s, err := sink.NewHTTPSink(log, cfg.HTTP, h.runID, h.health)
		if err != nil {
			return fmt.Errorf("creating http sink: %w", err)
		}

		h.sinks = append(h.sinks, s)
	}

	if clickhouse != nil {
		h.sinks = append(h.sinks, clickhouse)
	}

	return nil
}

func (h *harness) Start(ctx context.Context) error {
	ctx, h.cancel = context.WithCancel(ctx)

	h.log.WithFields(logrus.Fields{
		"run_id":     h.runID,
		"variant":    h.instr.Variant(),
		"target_fps": h.cfg.TargetFPS,
		"instancing": h.cfg.Scene.Instancing,
	}).Info("Starting harness")

	// 1. Start health metrics server.
	if h.cfg.Health.Enabled {
		if err := h.health.Start(ctx); err != nil {
			return fmt.Errorf("starting health metrics: %w", err)
		}
	}

	// 2. Start all enabled sinks.
	for _, s := range h.sinks {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("starting sink %s: %w", s.Name(), err)
		}

		h.log.WithField("sink", s.Name()).Info("Sink started")
	}

	// 3. Initialize the segment clock and seed the sinks with segment 0.
	var err error

	h.clock, err = clock.New(h.log, time.Now(), h.cfg.SegmentLength)
	if err != nil {
		return fmt.Errorf("creating clock: %w", err)
	}

	h.clock.OnSegmentChanged(h.segmentChanged)
	h.segmentChanged(h.clock.CurrentSegment())

	if err := h.clock.Start(ctx); err != nil {
		return fmt.Errorf("starting clock: %w", err)
	}

	// 4. Build the scene. This publishes the object count and renders
	// the first frame.
	if err := h.controller.Init(); err != nil {
		return fmt.Errorf("initializing scene: %w", err)
	}

	// 5. Start the render loop.
	h.wg.Add(1)

	go h.renderLoop(ctx)

	h.log.WithFields(logrus.Fields{
		"objects":  h.scene.NumberOfObjects(),
		"expected": h.scene.Expected(),
	}).Info("Harness fully started")

	return nil
}

func (h *harness) Stop() error {
	if h.cancel != nil {
		h.cancel()
	}

	h.wg.Wait()

	if h.clock != nil {
		if err := h.clock.Stop(); err != nil {
			h.log.WithError(err).Warn("Error stopping clock")
		}
	}

	for _, s := range h.sinks {
		if err := s.Stop(); err != nil {
			h.log.WithError(err).WithField("sink", s.Name()).
				Error("Error stopping sink")
		}
	}

	h.logSummary()

	if h.health != nil {
		if err := h.health.Stop(); err != nil {
			h.log.WithError(err).Warn("Error stopping health metrics")
		}
	}

	return nil
}

func (h *harness) Done() <-chan struct{} {
	return h.done
}

func (h *harness) segmentChanged(segment uint64) {
	start := h.clock.SegmentStartTime(segment)

	for _, s := range h.sinks {
		if aware, ok := s.(sink.SegmentAware); ok {
			aware.OnSegmentChanged(segment, start)
		}
	}
}

func (h *harness) renderLoop(ctx context.Context) {
	defer h.wg.Done()

	rate := min(max(h.cfg.TargetFPS, 1), MaxTargetFPS)

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	var deadline <-chan time.Time

	if h.cfg.Duration > 0 {
		timer := time.NewTimer(h.cfg.Duration)
		defer timer.Stop()

		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			h.log.WithField("duration", h.cfg.Duration).Info("Run duration reached")
			h.doneOnce.Do(func() { close(h.done) })

			return
		case <-ticker.C:
			h.frame()
		}
	}
}

// frame renders the scene once and ticks the instrumentation context.
func (h *harness) frame() {
	start := time.Now()
	before := h.device.Total()

	h.scene.Render()

	if _, err := h.instr.Tick(h.now()); err != nil {
		h.log.WithError(err).Debug("Tick reported an error")
	}

	h.health.DrawCallsPerTick.Observe(float64(h.device.Total() - before))
	h.health.FrameDuration.Observe(time.Since(start).Seconds())
}

func (h *harness) keepLast(report instrument.Report) {
	h.mu.Lock()
	h.last = report
	h.mu.Unlock()
}

// Last returns the most recent tick report.
func (h *harness) Last() (instrument.Report, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.last, h.last.Frame > 0
}

func (h *harness) logSummary() {
	last, ok := h.Last()
	if !ok {
		h.log.WithField("run_id", h.runID).Info("Run finished without frames")

		return
	}

	expected := h.scene.Expected()

	h.log.WithFields(logrus.Fields{
		"run_id":              h.runID,
		"frames":              last.Frame,
		"draw_calls":          h.device.Total(),
		"objects":             last.Objects,
		"last_fps":            last.FPS,
		"triangles_per_frame": expected.Triangles,
		"lines_per_frame":     expected.Lines,
		"points_per_frame":    expected.Points,
	}).Info("Run summary")
}
