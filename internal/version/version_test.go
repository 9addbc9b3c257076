// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.True(t, strings.HasPrefix(info, "cardcheck "+Version))
	assert.Contains(t, info, Platform)
	assert.Equal(t, Version, Full()["version"])
	assert.Equal(t, Version, Short())
}

func TestApplyBuildInfo(t *testing.T) {
	defer func(commit, date string, modified bool) {
		GitCommit, BuildDate, Modified = commit, date, modified
	}(GitCommit, BuildDate, Modified)

	GitCommit, BuildDate, Modified = unknown, unknown, false
	applyBuildInfo(&debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	}})

	assert.Equal(t, "0123456789ab", GitCommit)
	assert.Equal(t, "2026-01-02T03:04:05Z", BuildDate)
	assert.Contains(t, Info(), "commit: 0123456789ab-dirty")
	assert.Equal(t, "true", Full()["modified"])
}

func TestApplyBuildInfo_KeepsLinkerValues(t *testing.T) {
	defer func(commit, date string) {
		GitCommit, BuildDate = commit, date
	}(GitCommit, BuildDate)

	GitCommit, BuildDate = "release", "2026-10-01"
	applyBuildInfo(&debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "ffff"},
		{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
	}})

	assert.Equal(t, "release", GitCommit)
	assert.Equal(t, "2026-10-01", BuildDate)
}
