package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/export"
	"github.com/ethpandaops/glmetrics/internal/instrument"
)

const (
	frameReportsColumns = "run_id, frame, timestamp_ms, report_date_time, variant, fps, objects, triangles, lines, points, segment"
	summaryColumns      = "run_id, segment, segment_start_date_time, frames, min_fps, max_fps, avg_fps, triangles, lines, points"

	// SummaryTable is the table segment summaries are written to.
	SummaryTable = "segment_summaries"

	reportChannelSize = 8192
	summaryTimeout    = 10 * time.Second
)

// ClickHouseConfig configures the ClickHouse report sink.
type ClickHouseConfig struct {
	Enabled    bool                    `yaml:"enabled"`
	ClickHouse export.ClickHouseConfig `yaml:",inline"`
}

// ClickHouseSink writes every report to ClickHouse in batches and
// stores segment summaries.
type ClickHouseSink struct {
	segmentTag

	log    logrus.FieldLogger
	runID  string
	writer *export.ClickHouseWriter
	health *export.HealthMetrics

	mu       sync.Mutex
	batch    []frameRow
	cancel   context.CancelFunc
	done     chan struct{}
	reportCh chan frameRow
}

var (
	_ Sink           = (*ClickHouseSink)(nil)
	_ SegmentAware   = (*ClickHouseSink)(nil)
	_ SummaryHandler = (*ClickHouseSink)(nil)
)

// NewClickHouseSink creates a new ClickHouse report sink. health may be nil.
func NewClickHouseSink(
	log logrus.FieldLogger,
	cfg ClickHouseConfig,
	runID string,
	health *export.HealthMetrics,
) *ClickHouseSink {
	writer := export.NewClickHouseWriter(log, cfg.ClickHouse)

	return &ClickHouseSink{
		log:      log.WithField("sink", "clickhouse"),
		runID:    runID,
		writer:   writer,
		health:   health,
		batch:    make([]frameRow, 0, writer.Config().BatchSize),
		done:     make(chan struct{}),
		reportCh: make(chan frameRow, reportChannelSize),
	}
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

func (s *ClickHouseSink) Start(ctx context.Context) error {
	if err := s.writer.Start(ctx); err != nil {
		return err
	}

	if s.health != nil {
		s.health.ClickHouseConnected.WithLabelValues(s.Name()).Set(1)
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go s.runLoop(ctx)

	s.log.WithField("table", s.writer.Config().QualifiedTable()).
		Info("ClickHouse sink started")

	return nil
}

func (s *ClickHouseSink) Stop() error {
	if s.cancel == nil {
		return s.writer.Stop()
	}

	s.cancel()
	<-s.done

	s.mu.Lock()

	// Drain whatever the loop had not picked up.
drain:
	for {
		select {
		case row := <-s.reportCh:
			s.batch = append(s.batch, row)
		default:
			break drain
		}
	}

	remaining := s.batch
	s.batch = nil
	s.mu.Unlock()

	if err := s.flush(context.Background(), remaining); err != nil {
		s.log.WithError(err).Error("Final flush failed")
	}

	if s.health != nil {
		s.health.ClickHouseConnected.WithLabelValues(s.Name()).Set(0)
	}

	return s.writer.Stop()
}

func (s *ClickHouseSink) HandleReport(report instrument.Report) {
	select {
	case s.reportCh <- s.row(s.runID, report, time.Now()):
		if s.health != nil {
			s.health.SinkReportsProcessed.WithLabelValues(s.Name()).Inc()
		}
	default:
		s.log.Warn("ClickHouse sink report channel full, dropping report")

		if s.health != nil {
			s.health.SinkReportsDropped.WithLabelValues(s.Name()).Inc()
		}
	}
}

// HandleSummary inserts a closed segment summary.
func (s *ClickHouseSink) HandleSummary(summary SegmentSummary) {
	conn := s.writer.Conn()
	if conn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
	defer cancel()

	cfg := s.writer.Config()

	batch, err := conn.PrepareBatch(ctx, fmt.Sprintf(
		"INSERT INTO %s.%s (%s)", cfg.Database, SummaryTable, summaryColumns,
	))
	if err != nil {
		s.recordBatchError("prepare")
		s.log.WithError(err).Error("Preparing segment summary insert failed")

		return
	}

	if err := batch.Append(
		s.runID,
		summary.Segment,
		summary.StartTime,
		summary.Frames,
		clampUint32(summary.MinFPS),
		clampUint32(summary.MaxFPS),
		summary.AvgFPS,
		summary.Triangles,
		summary.Lines,
		summary.Points,
	); err != nil {
		s.recordBatchError("append")
		s.log.WithError(err).Error("Appending segment summary failed")

		return
	}

	if err := batch.Send(); err != nil {
		s.recordBatchError("send")
		s.log.WithError(err).Error("Sending segment summary failed")
	}
}

func (s *ClickHouseSink) runLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.writer.Config().FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case row := <-s.reportCh:
			s.addRow(ctx, row)
		case <-ticker.C:
			s.tickFlush(ctx)
		}
	}
}

func (s *ClickHouseSink) addRow(ctx context.Context, row frameRow) {
	s.mu.Lock()
	s.batch = append(s.batch, row)

	var toFlush []frameRow

	if len(s.batch) >= s.writer.Config().BatchSize {
		toFlush = s.batch
		s.batch = make([]frameRow, 0, cap(toFlush))
	}

	s.mu.Unlock()

	if err := s.flush(ctx, toFlush); err != nil {
		s.log.WithError(err).Error("Batch flush failed")
	}
}

func (s *ClickHouseSink) tickFlush(ctx context.Context) {
	s.mu.Lock()

	if len(s.batch) == 0 {
		s.mu.Unlock()

		return
	}

	toFlush := s.batch
	s.batch = make([]frameRow, 0, cap(toFlush))
	s.mu.Unlock()

	if err := s.flush(ctx, toFlush); err != nil {
		s.log.WithError(err).Error("Periodic flush failed")
	}
}

func (s *ClickHouseSink) flush(ctx context.Context, rows []frameRow) error {
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()

	batch, err := s.writer.Conn().PrepareBatch(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s)", s.writer.Config().QualifiedTable(), frameReportsColumns,
	))
	if err != nil {
		s.recordBatchError("prepare")

		return fmt.Errorf("preparing batch: %w", err)
	}

	for _, row := range rows {
		if err := batch.Append(
			row.RunID,
			row.Frame,
			row.TimestampMs,
			row.ReportTime,
			row.Variant,
			row.FPS,
			row.Objects,
			row.Triangles,
			row.Lines,
			row.Points,
			row.Segment,
		); err != nil {
			s.recordBatchError("append")

			return fmt.Errorf("appending row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		s.recordBatchError("send")

		return fmt.Errorf("sending batch of %d rows: %w", len(rows), err)
	}

	if s.health != nil {
		s.health.SinkFlushDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
		s.health.SinkBatchSize.WithLabelValues(s.Name()).Observe(float64(len(rows)))
	}

	s.log.WithField("rows", len(rows)).Debug("Flushed frame reports")

	return nil
}

func (s *ClickHouseSink) recordBatchError(errorType string) {
	if s.health == nil {
		return
	}

	s.health.ExportBatchErrors.WithLabelValues(s.Name(), errorType).Inc()
}
