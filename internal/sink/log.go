package sink

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/instrument"
)

// LogConfig configures the log sink.
type LogConfig struct {
	Enabled bool `yaml:"enabled"`
	// Every logs one report out of every N. Defaults to 60.
	Every int `yaml:"every"`
}

// LogSink writes tick reports to the logger.
type LogSink struct {
	log logrus.FieldLogger
	cfg LogConfig

	seen atomic.Uint64
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a new log sink.
func NewLogSink(log logrus.FieldLogger, cfg LogConfig) *LogSink {
	if cfg.Every <= 0 {
		cfg.Every = 60
	}

	return &LogSink{
		log: log.WithField("sink", "log"),
		cfg: cfg,
	}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Start(_ context.Context) error {
	s.log.WithField("every", s.cfg.Every).Info("Log sink started")

	return nil
}

func (s *LogSink) Stop() error {
	return nil
}

func (s *LogSink) HandleReport(report instrument.Report) {
	n := s.seen.Add(1)
	if (n-1)%uint64(s.cfg.Every) != 0 {
		return
	}

	s.log.WithFields(reportFields(report)).Info("Frame report")
}

func reportFields(report instrument.Report) logrus.Fields {
	fields := logrus.Fields{
		"frame":     report.Frame,
		"fps":       report.FPS,
		"triangles": report.Triangles,
		"lines":     report.Lines,
		"points":    report.Points,
	}

	if report.Variant == instrument.VariantModule {
		fields["objects"] = report.Objects
	}

	return fields
}
