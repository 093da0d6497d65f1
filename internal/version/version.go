// Package version exposes the daemon's build identity for startup logs
// and the health endpoint. Release builds override the variables via
// ldflags, for example:
//
//	go build -ldflags "\
//	  -X github.com/rgordeev/payout-sync/internal/version.Version=$(git describe --tags) \
//	  -X github.com/rgordeev/payout-sync/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/rgordeev/payout-sync/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "fmt"

var (
	// Version is the release tag, "dev" when built from a working tree.
	Version = "dev"

	// Commit is the short git commit hash.
	Commit = "unknown"

	// BuildTime is the UTC build timestamp in RFC 3339 form.
	BuildTime = "unknown"
)

// String renders the full build identity on one line.
func String() string {
	return fmt.Sprintf("%s (%s) built %s", Version, Commit, BuildTime)
}
