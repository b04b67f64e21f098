package version

import "fmt"

// These are populated at build time via -ldflags "-X ..."
var (
	Version    = "devel"
	CommitHash = ""
)

func GetVersionString() string {
	if CommitHash == "" {
		return Version
	}
	return fmt.Sprintf("%s (commit %s)", Version, CommitHash)
}
