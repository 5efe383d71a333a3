package sink

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/export"
	"github.com/ethpandaops/glmetrics/internal/instrument"
)

// SegmentConfig configures the per-segment summary sink.
type SegmentConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Segment aggregates tick reports over one clock segment.
type Segment struct {
	Number    uint64
	StartTime time.Time

	Frames    atomic.Uint64
	FPSSum    atomic.Int64
	MinFPS    atomic.Int64
	MaxFPS    atomic.Int64
	Objects   atomic.Int64
	Triangles atomic.Int64
	Lines     atomic.Int64
	Points    atomic.Int64
}

// SegmentSummary is a point-in-time copy of a Segment.
type SegmentSummary struct {
	Segment   uint64
	StartTime time.Time
	Frames    uint64
	MinFPS    int
	MaxFPS    int
	AvgFPS    float64
	Objects   int
	Triangles int64
	Lines     int64
	Points    int64
}

// SummaryHandler receives a summary each time a segment closes.
type SummaryHandler interface {
	HandleSummary(summary SegmentSummary)
}

// NewSegment creates an empty segment.
func NewSegment(number uint64, start time.Time) *Segment {
	s := &Segment{
		Number:    number,
		StartTime: start,
	}
	s.MinFPS.Store(math.MaxInt64)

	return s
}

// Add folds a report into the segment.
func (s *Segment) Add(report instrument.Report) {
	s.Frames.Add(1)
	s.FPSSum.Add(int64(report.FPS))
	s.Objects.Store(int64(report.Objects))
	s.Triangles.Add(report.Triangles)
	s.Lines.Add(report.Lines)
	s.Points.Add(report.Points)

	storeMin(&s.MinFPS, int64(report.FPS))
	storeMax(&s.MaxFPS, int64(report.FPS))
}

// Summary returns the aggregated values of the segment.
func (s *Segment) Summary() SegmentSummary {
	frames := s.Frames.Load()

	summary := SegmentSummary{
		Segment:   s.Number,
		StartTime: s.StartTime,
		Frames:    frames,
		Objects:   int(s.Objects.Load()),
		Triangles: s.Triangles.Load(),
		Lines:     s.Lines.Load(),
		Points:    s.Points.Load(),
	}

	if frames > 0 {
		summary.MinFPS = int(s.MinFPS.Load())
		summary.MaxFPS = int(s.MaxFPS.Load())
		summary.AvgFPS = float64(s.FPSSum.Load()) / float64(frames)
	}

	return summary
}

func storeMin(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n >= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func storeMax(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

// SegmentSink aggregates reports per clock segment and logs a summary
// at each segment boundary.
type SegmentSink struct {
	log      logrus.FieldLogger
	cfg      SegmentConfig
	health   *export.HealthMetrics
	handlers []SummaryHandler

	mu      sync.Mutex
	segment *Segment
}

var (
	_ Sink         = (*SegmentSink)(nil)
	_ SegmentAware = (*SegmentSink)(nil)
)

// NewSegmentSink creates a new per-segment summary sink. health may be nil.
func NewSegmentSink(
	log logrus.FieldLogger,
	cfg SegmentConfig,
	health *export.HealthMetrics,
	handlers ...SummaryHandler,
) *SegmentSink {
	return &SegmentSink{
		log:      log.WithField("sink", "segment"),
		cfg:      cfg,
		health:   health,
		handlers: handlers,
	}
}

func (s *SegmentSink) Name() string { return "segment" }

func (s *SegmentSink) Start(_ context.Context) error {
	s.mu.Lock()
	if s.segment == nil {
		s.segment = NewSegment(0, time.Now())
	}
	s.mu.Unlock()

	s.log.Info("Segment sink started")

	return nil
}

// Stop emits the summary of the segment in progress.
func (s *SegmentSink) Stop() error {
	s.mu.Lock()
	last := s.segment
	s.segment = nil
	s.mu.Unlock()

	s.emit(last)

	return nil
}

// HandleReport adds the report to the segment in progress. The lock is
// held across the add so a report never lands in a segment that has
// already been emitted.
func (s *SegmentSink) HandleReport(report instrument.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.segment != nil {
		s.segment.Add(report)
	}
}

func (s *SegmentSink) OnSegmentChanged(segment uint64, start time.Time) {
	s.mu.Lock()
	old := s.segment
	s.segment = NewSegment(segment, start)
	s.mu.Unlock()

	if s.health != nil {
		s.health.CurrentSegment.Set(float64(segment))
	}

	s.emit(old)
}

// Current returns the summary of the segment in progress.
func (s *SegmentSink) Current() (SegmentSummary, bool) {
	s.mu.Lock()
	seg := s.segment
	s.mu.Unlock()

	if seg == nil {
		return SegmentSummary{}, false
	}

	return seg.Summary(), true
}

func (s *SegmentSink) emit(seg *Segment) {
	if seg == nil || seg.Frames.Load() == 0 {
		return
	}

	summary := seg.Summary()

	s.log.WithFields(logrus.Fields{
		"segment":   summary.Segment,
		"frames":    summary.Frames,
		"min_fps":   summary.MinFPS,
		"max_fps":   summary.MaxFPS,
		"avg_fps":   summary.AvgFPS,
		"objects":   summary.Objects,
		"triangles": summary.Triangles,
		"lines":     summary.Lines,
		"points":    summary.Points,
	}).Info("Segment summary")

	if s.health != nil {
		s.health.SegmentsCompleted.Inc()
	}

	for _, h := range s.handlers {
		h.HandleSummary(summary)
	}
}
