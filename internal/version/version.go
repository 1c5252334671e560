// Package version holds build information injected with ldflags:
//
//	-ldflags "-X userapi/internal/version.version=v1.0.0 -X userapi/internal/version.commit=abc123 -X userapi/internal/version.buildTime=2025-01-01T00:00:00Z"
package version

import (
	"fmt"
	"io"
	"strings"
)

//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	version   string
	commit    string
	buildTime string
)

// ApplicationName is the name shown in version output.
const ApplicationName = "UserAPI"

// Default values used when build information is not available.
const (
	DefaultVersion   = "dev"
	DefaultCommit    = "unknown"
	DefaultBuildTime = "unknown"
)

// Info is the build information of the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

// Get returns the build information with defaults for unset values.
func Get() Info {
	return Info{
		Version:   withDefault(version, DefaultVersion),
		Commit:    withDefault(commit, DefaultCommit),
		BuildTime: withDefault(buildTime, DefaultBuildTime),
	}
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// String returns the full multi-line description.
func (i Info) String() string {
	var b strings.Builder
	b.WriteString(ApplicationName + "\n")
	fmt.Fprintf(&b, "Version: %s\n", i.Version)
	fmt.Fprintf(&b, "Commit: %s\n", i.Commit)
	fmt.Fprintf(&b, "Built: %s\n", i.BuildTime)
	return b.String()
}

// Write writes the version only when short is set, the full description otherwise.
func (i Info) Write(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, i.Version)
		return err
	}
	_, err := io.WriteString(w, i.String())
	return err
}

// IsDevelopment reports whether this is an untagged build.
func (i Info) IsDevelopment() bool {
	return i.Version == DefaultVersion
}

// SetBuildVars overrides the build information. Used by tests.
func SetBuildVars(ver, com, bt string) {
	version, commit, buildTime = ver, com, bt
}
