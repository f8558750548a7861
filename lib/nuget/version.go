// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package nuget

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Matches reports whether version satisfies the filter: an exact match,
// or a prefix match when the filter ends with "*" (e.g. "6.0.*").
func Matches(version, filter string) bool {
	if strings.HasSuffix(filter, "*") {
		return strings.HasPrefix(version, strings.TrimSuffix(filter, "*"))
	}
	return version == filter
}

// SortByVersion sorts packages ascending by parsed version. Versions
// that do not parse as (lenient) semver sort before all parseable ones,
// ordered lexicographically among themselves. Ties break on the
// original version string so the order is total and stable across
// feeds.
func SortByVersion(packages []Package) {
	sort.SliceStable(packages, func(i, j int) bool {
		return compareVersions(packages[i].Version, packages[j].Version) < 0
	})
}

func compareVersions(a, b string) int {
	versionA, errA := semver.NewVersion(a)
	versionB, errB := semver.NewVersion(b)

	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}

	if comparison := versionA.Compare(versionB); comparison != 0 {
		return comparison
	}
	// Compare treats build metadata and original formatting as equal;
	// fall back to the raw strings for a deterministic total order.
	return strings.Compare(a, b)
}
