// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/smfinstall/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/smfinstall/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/smfinstall/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"strings"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent is the User-Agent sent to the metadata server and mirrors,
// e.g. "smfinstall/1.2.0".
func UserAgent() string {
	return "smfinstall/" + strings.TrimPrefix(Version, "v")
}

// Template returns the version template for cobra.
func Template() string {
	commit := Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, commit, Date)
}
