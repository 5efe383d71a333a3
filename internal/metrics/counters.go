package metrics

import (
	"sync/atomic"

	"github.com/ethpandaops/glmetrics/internal/gl"
)

// Counts is a point-in-time copy of the primitive counters.
type Counts struct {
	Points    int64 `json:"points"`
	Lines     int64 `json:"lines"`
	Triangles int64 `json:"triangles"`
}

// Total returns the sum of all three buckets.
func (c Counts) Total() int64 {
	return c.Points + c.Lines + c.Triangles
}

// PrimCounters accumulates primitive counts per bucket for one
// reporting interval. Snapshot reads and resets all buckets, making it
// suitable for once-per-tick reporting without contention.
type PrimCounters struct {
	counts [numBuckets]atomic.Int64
}

// NewPrimCounters creates a new PrimCounters instance.
func NewPrimCounters() *PrimCounters {
	return &PrimCounters{}
}

// Add converts a draw call into primitives and adds them to the
// matching bucket. Unsupported modes leave every bucket untouched.
func (c *PrimCounters) Add(mode gl.DrawMode, count int64) error {
	bucket, n, err := Convert(mode, count)
	if err != nil {
		return err
	}

	c.counts[bucket].Add(n)

	return nil
}

// Load returns the current counts without resetting them.
func (c *PrimCounters) Load() Counts {
	return Counts{
		Points:    c.counts[BucketPoints].Load(),
		Lines:     c.counts[BucketLines].Load(),
		Triangles: c.counts[BucketTriangles].Load(),
	}
}

// Snapshot reads and resets every bucket.
func (c *PrimCounters) Snapshot() Counts {
	return Counts{
		Points:    c.counts[BucketPoints].Swap(0),
		Lines:     c.counts[BucketLines].Swap(0),
		Triangles: c.counts[BucketTriangles].Swap(0),
	}
}
