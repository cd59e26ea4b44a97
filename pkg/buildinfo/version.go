// Package buildinfo exposes version information stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/promocanvas/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/promocanvas/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/promocanvas/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/promocanvas
package buildinfo

import "fmt"

// Link-time variables. Unstamped builds report "dev".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information as served by the HTTP health check.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information. Commits are shortened to
// seven characters.
func Get() Info {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return Info{Version: Version, Commit: commit, Date: Date}
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", i.Version, i.Commit, i.Date)
}
