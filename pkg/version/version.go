// Package version holds build metadata, overridden at link time with
// -ldflags "-X nonek/pkg/version.Version=...".
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.1.0-dev"
	BuildDate = "unknown"
	GitCommit = "none"
)

// String is the one-line version banner.
func String() string {
	return fmt.Sprintf("nonek %s (commit %s, built %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
