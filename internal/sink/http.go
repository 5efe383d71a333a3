package sink

import (
	"context"
	"fmt"
	"time"

	processor "github.com/ethpandaops/go-batch-processor"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/export"
	httpexport "github.com/ethpandaops/glmetrics/internal/export/http"
	"github.com/ethpandaops/glmetrics/internal/instrument"
)

// HTTPConfig configures the HTTP report sink.
type HTTPConfig struct {
	httpexport.Config `yaml:",inline"`
}

// ReportJSON is the JSON schema for HTTP export of frame reports.
type ReportJSON struct {
	RunID                string  `json:"run_id"`
	Frame                uint64  `json:"frame"`
	TimestampMs          float64 `json:"timestamp_ms"`
	ReportDateTime       string  `json:"report_date_time"`
	Variant              string  `json:"variant"`
	FPS                  uint32  `json:"fps"`
	Objects              uint32  `json:"objects,omitempty"`
	Triangles            int64   `json:"triangles"`
	Lines                int64   `json:"lines"`
	Points               int64   `json:"points"`
	Segment              uint64  `json:"segment"`
	SegmentStartDateTime string  `json:"segment_start_date_time"`
}

func toReportJSON(row frameRow) ReportJSON {
	return ReportJSON{
		RunID:                row.RunID,
		Frame:                row.Frame,
		TimestampMs:          row.TimestampMs,
		ReportDateTime:       row.ReportTime.UTC().Format(time.RFC3339Nano),
		Variant:              row.Variant,
		FPS:                  row.FPS,
		Objects:              row.Objects,
		Triangles:            row.Triangles,
		Lines:                row.Lines,
		Points:               row.Points,
		Segment:              row.Segment,
		SegmentStartDateTime: row.SegmentStart.UTC().Format(time.RFC3339Nano),
	}
}

// HTTPSink streams reports as NDJSON through a batch processor.
type HTTPSink struct {
	segmentTag

	log    logrus.FieldLogger
	runID  string
	health *export.HealthMetrics
	proc   *processor.BatchItemProcessor[ReportJSON]

	ctx    context.Context
	cancel context.CancelFunc
}

var (
	_ Sink         = (*HTTPSink)(nil)
	_ SegmentAware = (*HTTPSink)(nil)
)

// NewHTTPSink creates a new HTTP report sink. health may be nil.
func NewHTTPSink(
	log logrus.FieldLogger,
	cfg HTTPConfig,
	runID string,
	health *export.HealthMetrics,
) (*HTTPSink, error) {
	proc, err := httpexport.NewProcessor[ReportJSON](log, cfg.Config, "reports_http")
	if err != nil {
		return nil, fmt.Errorf("creating HTTP processor: %w", err)
	}

	return &HTTPSink{
		log:    log.WithField("sink", "http"),
		runID:  runID,
		health: health,
		proc:   proc,
	}, nil
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.proc.Start(s.ctx)

	s.log.Info("HTTP sink started")

	return nil
}

func (s *HTTPSink) Stop() error {
	if err := s.proc.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutting down HTTP processor: %w", err)
	}

	if s.cancel != nil {
		s.cancel()
	}

	return nil
}

func (s *HTTPSink) HandleReport(report instrument.Report) {
	if s.ctx == nil {
		return
	}

	item := toReportJSON(s.row(s.runID, report, time.Now()))

	if err := s.proc.Write(s.ctx, []*ReportJSON{&item}); err != nil {
		s.log.WithError(err).Debug("HTTP export failed (queue may be full)")

		if s.health != nil {
			s.health.SinkReportsDropped.WithLabelValues(s.Name()).Inc()
		}

		return
	}

	if s.health != nil {
		s.health.SinkReportsProcessed.WithLabelValues(s.Name()).Inc()
	}
}
