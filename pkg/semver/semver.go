// Package semver orders package versions.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3. Resolved
// graphs sometimes carry versions that are not strict semver; those sort
// after every parseable version, lexically among themselves.
package semver

import (
	"slices"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Compare orders two version strings. It returns -1, 0 or +1.
func Compare(a, b string) int {
	va, errA := mm.NewVersion(a)
	vb, errB := mm.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		// 1.0 and 1.0.0 compare equal; keep the order total.
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// Sort sorts versions in ascending order in place.
func Sort(versions []string) {
	slices.SortFunc(versions, Compare)
}

// Sorted returns a sorted copy of versions.
func Sorted(versions []string) []string {
	out := slices.Clone(versions)
	Sort(out)
	return out
}
