// Package clock divides a benchmark run into fixed-length segments.
package clock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethpandaops/ethwallclock"
	"github.com/sirupsen/logrus"
)

// segmentsPerGroup is the group size handed to the underlying wallclock.
// Nothing in the harness consumes groups.
const segmentsPerGroup = 60

// SegmentChangedFunc is called when the run advances to a new segment.
type SegmentChangedFunc func(segment uint64)

// Clock reports which segment of a run the wall clock is in.
type Clock interface {
	// Start begins emitting segment change callbacks.
	Start(ctx context.Context) error
	// Stop terminates the clock.
	Stop() error
	// CurrentSegment returns the current segment number.
	CurrentSegment() uint64
	// SegmentStartTime returns the wall-clock start time of segment.
	SegmentStartTime(segment uint64) time.Time
	// MillisIntoSegment returns how far into the current segment the
	// wall clock is.
	MillisIntoSegment() uint64
	// SegmentLength returns the configured segment duration.
	SegmentLength() time.Duration
	// OnSegmentChanged registers a callback for segment transitions.
	OnSegmentChanged(fn SegmentChangedFunc)
}

type clock struct {
	log       logrus.FieldLogger
	runStart  time.Time
	length    time.Duration
	wallclock *ethwallclock.EthereumBeaconChain

	mu        sync.RWMutex
	callbacks []SegmentChangedFunc
	stopOnce  sync.Once
}

// New creates a Clock whose segment zero begins at runStart.
func New(log logrus.FieldLogger, runStart time.Time, length time.Duration) (Clock, error) {
	if length <= 0 {
		return nil, errors.New("segment length must be > 0")
	}

	return &clock{
		log:       log.WithField("component", "clock"),
		runStart:  runStart,
		length:    length,
		wallclock: ethwallclock.NewEthereumBeaconChain(runStart, length, segmentsPerGroup),
		callbacks: make([]SegmentChangedFunc, 0, 4),
	}, nil
}

func (c *clock) Start(_ context.Context) error {
	// ethwallclock invokes this in its own goroutine.
	c.wallclock.OnSlotChanged(func(slot ethwallclock.Slot) {
		segment := slot.Number()

		c.log.WithField("segment", segment).Debug("Segment changed")

		c.mu.RLock()
		callbacks := c.callbacks
		c.mu.RUnlock()

		for _, fn := range callbacks {
			fn(segment)
		}
	})

	c.log.WithFields(logrus.Fields{
		"run_start":      c.runStart,
		"segment_length": c.length,
	}).Info("Clock started")

	return nil
}

func (c *clock) Stop() error {
	c.stopOnce.Do(func() {
		c.wallclock.Stop()
	})

	return nil
}

func (c *clock) CurrentSegment() uint64 {
	slot := c.wallclock.Slots().Current()

	return slot.Number()
}

func (c *clock) SegmentStartTime(segment uint64) time.Time {
	return c.runStart.Add(time.Duration(segment) * c.length)
}

func (c *clock) MillisIntoSegment() uint64 {
	slot := c.wallclock.Slots().Current()

	return uint64(time.Since(slot.TimeWindow().Start()).Milliseconds())
}

func (c *clock) SegmentLength() time.Duration {
	return c.length
}

func (c *clock) OnSegmentChanged(fn SegmentChangedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.callbacks = append(c.callbacks, fn)
}
