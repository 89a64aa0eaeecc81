package changelog

import (
	"sort"
	"strings"
	"time"

	"github.com/mwittgen/changelog/internal/reltag"
)

// Input is the frozen data one attribution run operates on. Packages maps
// package name to its repository history; Branches is the set of branch
// names known to exist across all repositories; Diff is keyed by canonical
// release name.
type Input struct {
	Cadence  reltag.Cadence
	Packages map[string]*RepoHistory
	Branches map[string]bool
	Diff     map[string]Diff
	Now      time.Time
}

// MergedTickets runs the attribution engine over the input and returns the
// populated release buckets. The walk is deterministic: packages are
// processed in name order and every partition is consumed in ascending
// merge time, so running it twice over the same input yields identical
// buckets. The input itself is never mutated.
func MergedTickets(in Input) *ReleaseSet {
	rs := NewReleaseSet(in.Now)

	// The trunk-tail cutoff is the maximum commit timestamp across the
	// cadence tags of all packages, computed up front so that late-tagged
	// packages cannot leak still-tagged changes into the tail.
	var cutoff time.Time
	for _, h := range in.Packages {
		for _, tr := range h.Tags {
			if reltag.Matches(tr.Tag, in.Cadence) && tr.CommitTime.After(cutoff) {
				cutoff = tr.CommitTime
			}
		}
	}

	names := make([]string, 0, len(in.Packages))
	for name := range in.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, pkg := range names {
		attributePackage(rs, in, pkg, in.Packages[pkg], cutoff)
	}
	return rs
}

// attributePackage walks one package's tags in ascending order and assigns
// its merged changes to release buckets.
func attributePackage(rs *ReleaseSet, in Input, pkg string, hist *RepoHistory, cutoff time.Time) {
	tags := cadenceTags(hist.Tags, in.Cadence)
	parts := clonePartitions(hist.Pulls)

	current := reltag.TrunkName
	seenBranches := make(map[string]bool)
	for _, tr := range tags {
		name := tr.Tag.Canonical()
		b := rs.Bucket(name, tr.Tag.Key())
		if tr.TagTime.After(b.Date) {
			b.Date = tr.TagTime
		}

		// A package listed as added at this release only joined the
		// distribution here; its earlier history belongs to nobody.
		skip := containsSorted(in.Diff[name].Added, pkg)

		part := parts[current]
		i := 0
		for i < len(part) && !part[i].MergedAt.After(tr.CommitTime) {
			ev := part[i]
			i++
			if skip {
				continue
			}
			b.Changes = append(b.Changes, Change{
				Package:  pkg,
				Title:    ev.Title,
				MergedAt: ev.MergedAt,
				Ticket:   TicketNumber(ev.Title),
			})
		}
		parts[current] = part[i:]

		// The first tag cut on a release branch marks the point where the
		// release line diverges from the trunk.
		if derived := tr.Tag.ReleaseBranch(); derived != "" && !seenBranches[derived] {
			seenBranches[derived] = true
			if actual, ok := matchKnownBranch(derived, in.Branches); ok {
				current = actual
			}
		}
	}

	appendTrunkTail(rs, in, pkg, hist, parts[reltag.TrunkName], cutoff)
}

// appendTrunkTail buckets the package's unconsumed trunk merges newer than
// the global cutoff into the synthetic trunk-tail release. A package only
// contributes when its most recent valid tag belongs to the cadence being
// built; this keeps packages that have moved to the other cadence from
// adding noise to this stream.
func appendTrunkTail(rs *ReleaseSet, in Input, pkg string, hist *RepoHistory, rest []MergeEvent, cutoff time.Time) {
	latest, ok := latestValid(hist.Tags)
	if !ok || !reltag.Matches(latest.Tag, in.Cadence) {
		return
	}
	tail := rs.Tail()
	for _, ev := range rest {
		if !ev.MergedAt.After(cutoff) {
			continue
		}
		tail.Changes = append(tail.Changes, Change{
			Package:  pkg,
			Title:    ev.Title,
			MergedAt: ev.MergedAt,
			Ticket:   TicketNumber(ev.Title),
		})
	}
}

// cadenceTags filters a package's tags to the valid members of the cadence
// and sorts them in ascending sort-key order.
func cadenceTags(tags []TagRef, c reltag.Cadence) []TagRef {
	out := make([]TagRef, 0, len(tags))
	for _, tr := range tags {
		if tr.Tag.Valid() && reltag.Matches(tr.Tag, c) {
			out = append(out, tr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tag.Less(out[j].Tag)
	})
	return out
}

// latestValid returns the package's newest valid tag of any cadence.
func latestValid(tags []TagRef) (TagRef, bool) {
	var best TagRef
	found := false
	for _, tr := range tags {
		if !tr.Tag.Valid() {
			continue
		}
		if !found || best.Tag.Less(tr.Tag) {
			best = tr
			found = true
		}
	}
	return best, found
}

// clonePartitions copies the branch partitions, merges the master spelling
// of the trunk into the main one, and sorts every partition by merge time.
// Cloning keeps the engine idempotent over frozen input data.
func clonePartitions(pulls map[string][]MergeEvent) map[string][]MergeEvent {
	parts := make(map[string][]MergeEvent, len(pulls))
	for branch, events := range pulls {
		key := branch
		if branch == "master" {
			key = reltag.TrunkName
		}
		parts[key] = append(parts[key], events...)
	}
	for key := range parts {
		evs := parts[key]
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].MergedAt.Before(evs[j].MergedAt)
		})
		parts[key] = evs
	}
	return parts
}

// matchKnownBranch resolves a derived release-branch name against the
// global known-branches set. An exact match wins; otherwise the
// lexicographically first branch extending the derived name (e.g. "v26.0.x"
// for "v26.0") is used. This is a string-prefix heuristic, not a strict
// version-control relationship.
func matchKnownBranch(derived string, known map[string]bool) (string, bool) {
	if known[derived] {
		return derived, true
	}
	best := ""
	for b := range known {
		if strings.HasPrefix(b, derived+".") || strings.HasPrefix(b, derived+"-") {
			if best == "" || b < best {
				best = b
			}
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
