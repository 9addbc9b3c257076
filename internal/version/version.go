// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

// Set with -ldflags "-X cardcheck/internal/version.Version=..." at release.
// Commit and date fall back to the VCS stamp that go build embeds.
var (
	Version   = "0.0.0-development"
	GitCommit = unknown
	BuildDate = unknown

	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)

	// Modified is true when the binary was built from a dirty tree
	Modified bool
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		applyBuildInfo(info)
	}
}

// applyBuildInfo fills the fields that ldflags left unset
func applyBuildInfo(info *debug.BuildInfo) {
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == unknown && setting.Value != "" {
				GitCommit = setting.Value
				if len(GitCommit) > 12 {
					GitCommit = GitCommit[:12]
				}
			}
		case "vcs.time":
			if BuildDate == unknown && setting.Value != "" {
				BuildDate = setting.Value
			}
		case "vcs.modified":
			Modified = setting.Value == "true"
		}
	}
}

// Info is the one-line form printed by -version
func Info() string {
	commit := GitCommit
	if Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("cardcheck %s (commit: %s, built: %s, go: %s, platform: %s)",
		Version, commit, BuildDate, GoVersion, Platform)
}

// Short returns just the version number
func Short() string {
	return Version
}

// Full returns every field, keyed for -version -verbose
func Full() map[string]string {
	return map[string]string{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": GoVersion,
		"platform":  Platform,
		"modified":  fmt.Sprintf("%t", Modified),
	}
}
