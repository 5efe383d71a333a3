// Package version carries build metadata set through -ldflags -X.
package version

import "fmt"

var (
	Release   = "dev"
	GitCommit = "unknown"
	GOOS      = "unknown"
	GOARCH    = "unknown"
)

// Full returns "release (commit: sha)".
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Release, GitCommit)
}

// FullWithPlatform appends the target platform to Full.
func FullWithPlatform() string {
	return fmt.Sprintf("%s (commit: %s, %s/%s)", Release, GitCommit, GOOS, GOARCH)
}

// UserAgent is sent with exported report batches.
func UserAgent() string {
	return "glmetrics/" + Release
}
