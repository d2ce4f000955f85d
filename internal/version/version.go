// Package version holds build version information, set via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// GitRelease is the release tag, or "dev" for local builds.
	GitRelease = "dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the commit date.
	GitCommitDate = "unknown"
	// GoInfo describes the Go toolchain and target platform.
	GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
)
