// Package version holds build metadata set through -ldflags, e.g.
//
//	-X github.com/Sumatoshi-tech/aliasrewrite/pkg/version.Version=v1.2.0
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

const unknown = "<unknown>"

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the Git hash the binary was built from.
	Commit = unknown
	// Date is the build time.
	Date = unknown
)

var initOnce sync.Once

// InitBinaryVersion fills fields the linker left unset from the module
// build info recorded by the Go toolchain.
func InitBinaryVersion() {
	initOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}

		apply(info)
	})
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = s.Value
			}
		}
	}
}

// String renders the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("aliasrewrite %s (commit: %s, built: %s)", Version, Commit, Date)
}
