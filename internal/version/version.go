// Package version holds build metadata, set at link time with
// -ldflags "-X github.com/lilacgalaxy/vts-face-tracker/internal/version.Version=...".
package version

import "fmt"

var (
	// Version is the release tag.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String formats the metadata for a -version flag.
func String(binary string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", binary, Version, GitSHA, BuildTime)
}
