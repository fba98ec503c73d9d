// Package version holds build metadata set through -ldflags.
package version

var (
	// Version is the launcher release, e.g. v0.3.0
	Version = "dev"
	// GitCommit is the commit the binary was built from
	GitCommit = ""
	// BuildDate is the build timestamp
	BuildDate = ""
)
