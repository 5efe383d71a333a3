package clock

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

func TestNew_ZeroLength(t *testing.T) {
	_, err := New(testLog(), time.Now(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segment length must be > 0")
}

func TestSegmentStartTime(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	clk, err := New(testLog(), start, 10*time.Second)
	require.NoError(t, err)
	defer clk.Stop()

	tests := []struct {
		segment uint64
		want    time.Time
	}{
		{segment: 0, want: start},
		{segment: 1, want: start.Add(10 * time.Second)},
		{segment: 6, want: start.Add(time.Minute)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clk.SegmentStartTime(tt.segment), "segment %d", tt.segment)
	}

	assert.Equal(t, 10*time.Second, clk.SegmentLength())
}

func TestCurrentSegment(t *testing.T) {
	start := time.Now().Add(-35 * time.Second)

	clk, err := New(testLog(), start, 10*time.Second)
	require.NoError(t, err)
	defer clk.Stop()

	assert.InDelta(t, 3, clk.CurrentSegment(), 1)
}

func TestMillisIntoSegment(t *testing.T) {
	start := time.Now().Add(-4 * time.Second)

	clk, err := New(testLog(), start, 10*time.Second)
	require.NoError(t, err)
	defer clk.Stop()

	assert.InDelta(t, 4000, clk.MillisIntoSegment(), 500)
}

func TestOnSegmentChanged(t *testing.T) {
	clk, err := New(testLog(), time.Now().Add(-900*time.Millisecond), time.Second)
	require.NoError(t, err)

	segCh := make(chan uint64, 1)
	clk.OnSegmentChanged(func(segment uint64) {
		select {
		case segCh <- segment:
		default:
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, clk.Start(ctx))
	defer clk.Stop()

	select {
	case segment := <-segCh:
		assert.Greater(t, segment, uint64(0))
	case <-ctx.Done():
		t.Fatal("timed out waiting for segment change")
	}
}

func TestStopIdempotent(t *testing.T) {
	clk, err := New(testLog(), time.Now(), time.Second)
	require.NoError(t, err)

	assert.NoError(t, clk.Stop())
	assert.NoError(t, clk.Stop())
}
