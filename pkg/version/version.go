// Package version holds build-time version information.
package version

var (
	// Version is the semantic version, injected at build time.
	Version = "dev"
	// GitCommit is the git commit hash, injected at build time.
	GitCommit = ""
)
