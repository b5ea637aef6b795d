// Package version carries build metadata of the mdescape binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags "-X github.com/Sumatoshi-tech/mdescape/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// InitBinaryVersion fills unset metadata from the embedded build info, so
// `go install`ed binaries report their module version and VCS revision.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "unknown" && setting.Value != "" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

// String formats the metadata for `mdescape version`.
func String() string {
	return fmt.Sprintf("mdescape %s (commit: %s, built: %s)", Version, Commit, Date)
}
