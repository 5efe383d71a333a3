//go:build !unix

package harness

import "time"

var processStart = time.Now()

func monotonicMs() float64 {
	return float64(time.Since(processStart).Microseconds()) / 1e3
}
