package changelog

import "sort"

// PackageDiff computes the added/removed package sets between consecutive
// releases of one cadence. The input order does not matter; releases are
// walked in ascending tag order. The first release has no predecessor and
// therefore no diff entry. The result is keyed by canonical release name
// and both sets are sorted lexicographically.
func PackageDiff(releases []Release) map[string]Diff {
	ordered := make([]Release, len(releases))
	copy(ordered, releases)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Tag.Less(ordered[j].Tag)
	})

	result := make(map[string]Diff)
	var prev map[string]bool
	for _, rel := range ordered {
		cur := make(map[string]bool, len(rel.Packages))
		for _, p := range rel.Packages {
			cur[p] = true
		}
		if prev != nil {
			result[rel.Tag.Canonical()] = Diff{
				Added:   subtract(cur, prev),
				Removed: subtract(prev, cur),
			}
		}
		prev = cur
	}
	return result
}

// subtract returns the sorted members of a that are absent from b.
func subtract(a, b map[string]bool) []string {
	out := []string{}
	for p := range a {
		if !b[p] {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// containsSorted reports whether a sorted string slice contains s.
func containsSorted(list []string, s string) bool {
	i := sort.SearchStrings(list, s)
	return i < len(list) && list[i] == s
}
