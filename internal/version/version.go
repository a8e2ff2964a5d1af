// Package version reports the build identity of the mldata binary.
package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionFile string

// Set with -ldflags "-X github.com/leefowlercu/mldata/internal/version.gitCommit=...".
var (
	gitCommit string
	buildDate string
)

// Info is the build identity.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func (i Info) String() string {
	return fmt.Sprintf("Version:    %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion)
}

// Short renders "mldata <version> (<commit>)".
func (i Info) Short() string {
	return fmt.Sprintf("mldata %s (%s)", i.Version, i.GitCommit)
}

// Get returns the build identity.
func Get() Info {
	return Info{
		Version:   strings.TrimSpace(versionFile),
		GitCommit: commit(),
		BuildDate: orUnknown(buildDate),
		GoVersion: runtime.Version(),
	}
}

// commit prefers the linker value, then VCS stamping from go install.
func commit() string {
	if gitCommit != "" {
		return gitCommit
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	switch {
	case revision == "":
		return "unknown"
	case dirty:
		return revision + "-dirty"
	default:
		return revision
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
