// Package sink consumes the per-tick reports produced by the
// instrumentation context.
package sink

import (
	"context"
	"time"

	"github.com/ethpandaops/glmetrics/internal/instrument"
)

// Config holds configuration for all sinks.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Segment    SegmentConfig    `yaml:"segment"`
	HTTP       HTTPConfig       `yaml:"http"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// Sink defines the interface for report consumers.
type Sink interface {
	// Name returns the sink's name for logging.
	Name() string
	// Start initializes the sink.
	Start(ctx context.Context) error
	// Stop shuts down the sink, flushing anything buffered.
	Stop() error
	// HandleReport processes a single tick report. It must not block
	// the render loop.
	HandleReport(report instrument.Report)
}

// SegmentAware is implemented by sinks that tag reports with the current
// clock segment.
type SegmentAware interface {
	OnSegmentChanged(segment uint64, start time.Time)
}

var _ instrument.ReportHandler = Sink(nil)
