package sink

import (
	"sync/atomic"
	"time"

	"github.com/ethpandaops/glmetrics/internal/instrument"
)

// frameRow is a tick report stamped with run and segment metadata.
type frameRow struct {
	RunID        string
	Frame        uint64
	TimestampMs  float64
	ReportTime   time.Time
	Variant      string
	FPS          uint32
	Objects      uint32
	Triangles    int64
	Lines        int64
	Points       int64
	Segment      uint64
	SegmentStart time.Time
}

// segmentTag tracks the clock segment reports are stamped with.
type segmentTag struct {
	segment atomic.Uint64
	startNs atomic.Int64
}

func (t *segmentTag) OnSegmentChanged(segment uint64, start time.Time) {
	t.segment.Store(segment)
	t.startNs.Store(start.UnixNano())
}

func (t *segmentTag) row(runID string, report instrument.Report, now time.Time) frameRow {
	return frameRow{
		RunID:        runID,
		Frame:        report.Frame,
		TimestampMs:  report.TimestampMs,
		ReportTime:   now,
		Variant:      report.Variant.String(),
		FPS:          clampUint32(report.FPS),
		Objects:      clampUint32(report.Objects),
		Triangles:    report.Triangles,
		Lines:        report.Lines,
		Points:       report.Points,
		Segment:      t.segment.Load(),
		SegmentStart: time.Unix(0, t.startNs.Load()),
	}
}

func clampUint32(n int) uint32 {
	if n < 0 {
		return 0
	}

	if uint64(n) > uint64(^uint32(0)) {
		return ^uint32(0)
	}

	return uint32(n)
}
