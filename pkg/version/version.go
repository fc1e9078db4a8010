// Package version derives the build version from VCS metadata.
//
// Priority: -ldflags override > VCS info from debug.BuildInfo > "dev"
// fallback for non-git builds and `go test`.
package version

import "runtime/debug"

// AppName is the application name used in version strings and the
// startup log.
const AppName = "reasoning-agent"

// commitOverride is set via -ldflags at build time for container builds
// where .git is unavailable. Empty string means no override.
var commitOverride string

// Commit is the short git commit hash (8 chars) from build info, or
// "dev" when build info is unavailable.
var Commit = shortCommit()

func shortCommit() string {
	commit := commitOverride
	if commit == "" {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return "dev"
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				commit = s.Value
				break
			}
		}
	}
	if commit == "" {
		return "dev"
	}
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

// Full returns "reasoning-agent/<commit>" for logs and user-agent strings.
func Full() string {
	return AppName + "/" + Commit
}
