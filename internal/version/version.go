// Package version holds build metadata stamped via ldflags.
package version

//nolint:revive // Overridden by ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
