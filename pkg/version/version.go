package version

import "fmt"

// Version and Commit are set at build time, e.g.
// go build -ldflags "-X github.com/kindlewood/studio/pkg/version.Version=1.0.0 -X github.com/kindlewood/studio/pkg/version.Commit=abc123".
var (
	Version = "dev"
	Commit  = "unknown"
)

func String() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
