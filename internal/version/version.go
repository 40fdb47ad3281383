// Package version exposes build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Overridden via ldflags, e.g.
// go build -ldflags="-X github.com/andywolf/skillkit/internal/version.Version=v0.3.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// BuildInfo is a snapshot of the link-time variables plus the Go runtime.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current build metadata.
func Get() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// ShortCommit returns the first seven characters of the commit SHA.
func (b BuildInfo) ShortCommit() string {
	if len(b.Commit) > 7 {
		return b.Commit[:7]
	}
	return b.Commit
}

// String renders a single line: "skillkit v0.3.0 (commit: abc1234, built: ..., go: go1.24.1)".
func (b BuildInfo) String() string {
	return fmt.Sprintf("skillkit %s (commit: %s, built: %s, go: %s)",
		b.Version, b.ShortCommit(), b.BuildDate, b.GoVersion)
}

// Verbose renders the multi-line form used by `skillkit version -v`.
func (b BuildInfo) Verbose() string {
	return fmt.Sprintf(`skillkit %s
  Commit:     %s
  Built:      %s
  Go version: %s
  OS/Arch:    %s`,
		b.Version, b.Commit, b.BuildDate, b.GoVersion, b.Platform)
}
