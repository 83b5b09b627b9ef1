// Package version records build metadata injected at link time.
package version

import "runtime/debug"

// These are overridden with -ldflags at release builds.
var (
	// Version is the release version of the treegrep binary.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "<unknown>"
	// Date is the build timestamp.
	Date = "<unknown>"
)

// InitBinaryVersion fills in commit information from the embedded build
// info when the linker did not set it.
func InitBinaryVersion() {
	if Commit != "<unknown>" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			Commit = setting.Value
		case "vcs.time":
			Date = setting.Value
		}
	}
}
