// Package version reports the build identity of the strata binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X".
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns "strata dev (commit: abc1234, built: ...)". Without ldflags
// the VCS stamp recorded by the go tool is used.
func String() string {
	commit, built := Commit, BuildTime
	if commit == "unknown" {
		if rev, at, ok := vcsStamp(); ok {
			commit = rev
			if built == "unknown" && at != "" {
				built = at
			}
		}
	}
	return fmt.Sprintf("strata dev (commit: %s, built: %s)", short(commit), built)
}

func vcsStamp() (revision, at string, ok bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			at = s.Value
		}
	}
	return revision, at, revision != ""
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
