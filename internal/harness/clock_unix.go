//go:build unix

package harness

import (
	"time"

	"golang.org/x/sys/unix"
)

// monotonicMs returns CLOCK_MONOTONIC in milliseconds, the same time
// base performance.now() uses in the browser.
func monotonicMs() float64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return sinceStartMs()
	}

	return float64(ts.Sec)*1e3 + float64(ts.Nsec)/1e6
}

var processStart = time.Now()

func sinceStartMs() float64 {
	return float64(time.Since(processStart).Microseconds()) / 1e3
}
