package changelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwittgen/changelog/internal/reltag"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return epoch.Add(time.Duration(seconds) * time.Second)
}

func tagRef(raw string, seconds int) TagRef {
	return TagRef{Tag: reltag.Parse(raw), TagTime: at(seconds), CommitTime: at(seconds)}
}

func trunkEvent(seconds int, title string) MergeEvent {
	return MergeEvent{Branch: reltag.TrunkName, MergedAt: at(seconds), Title: title}
}

func bucketByName(rs *ReleaseSet, name string) *Bucket {
	for _, b := range rs.Ordered() {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func TestMergedTickets_EndToEnd(t *testing.T) {
	// Package p has tags v9.0 @ t=100 and v9.1 @ t=200 with trunk merges at
	// t=50, 150, 250: the first lands in v9_0, the second in v9_1, and the
	// third in the trunk tail.
	in := Input{
		Cadence: reltag.RegularCadence,
		Packages: map[string]*RepoHistory{
			"p": {
				Tags: []TagRef{tagRef("v9.0", 100), tagRef("v9.1", 200)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {
						trunkEvent(50, "DM-1: first"),
						trunkEvent(150, "DM-2: second"),
						trunkEvent(250, "DM-3: third"),
					},
				},
			},
		},
		Now: at(1000),
	}

	rs := MergedTickets(in)

	v90 := bucketByName(rs, "v9_0")
	require.NotNil(t, v90)
	require.Len(t, v90.Changes, 1)
	assert.Equal(t, 1, v90.Changes[0].Ticket)

	v91 := bucketByName(rs, "v9_1")
	require.NotNil(t, v91)
	require.Len(t, v91.Changes, 1)
	assert.Equal(t, 2, v91.Changes[0].Ticket)

	tail := rs.Tail()
	require.Len(t, tail.Changes, 1)
	assert.Equal(t, 3, tail.Changes[0].Ticket)
	assert.Equal(t, at(1000), tail.Date)
}

func TestMergedTickets_BoundaryInclusive(t *testing.T) {
	// A merge exactly at the tag's commit time belongs to that tag.
	in := Input{
		Cadence: reltag.WeeklyCadence,
		Packages: map[string]*RepoHistory{
			"p": {
				Tags: []TagRef{tagRef("w.2024.01", 100)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {trunkEvent(100, "DM-10: on the boundary")},
				},
			},
		},
		Now: at(1000),
	}

	rs := MergedTickets(in)
	b := bucketByName(rs, "w_2024_01")
	require.NotNil(t, b)
	require.Len(t, b.Changes, 1)
	assert.Empty(t, rs.Tail().Changes)
}

func TestMergedTickets_AddedPackageGuard(t *testing.T) {
	// Package q joined the distribution at w_2024_02. Its merges at or
	// before that tag are consumed but not attributed; later merges flow
	// normally.
	in := Input{
		Cadence: reltag.WeeklyCadence,
		Packages: map[string]*RepoHistory{
			"q": {
				Tags: []TagRef{tagRef("w.2024.01", 100), tagRef("w.2024.02", 200), tagRef("w.2024.03", 300)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {
						trunkEvent(150, "DM-20: pre-adoption history"),
						trunkEvent(250, "DM-21: first real change"),
					},
				},
			},
		},
		Diff: map[string]Diff{
			"w_2024_02": {Added: []string{"q"}},
		},
		Now: at(1000),
	}

	rs := MergedTickets(in)

	w2 := bucketByName(rs, "w_2024_02")
	require.NotNil(t, w2)
	assert.Empty(t, w2.Changes, "history before adoption is not back-attributed")

	w3 := bucketByName(rs, "w_2024_03")
	require.NotNil(t, w3)
	require.Len(t, w3.Changes, 1)
	assert.Equal(t, 21, w3.Changes[0].Ticket)
}

func TestMergedTickets_BranchFork(t *testing.T) {
	// v26.0.0 is the first tag on the v26.0 release line, which exists as
	// branch v26.0.x. After the fork, v26.0.1 consumes merges from the
	// release branch, not the trunk.
	in := Input{
		Cadence: reltag.RegularCadence,
		Packages: map[string]*RepoHistory{
			"p": {
				Tags: []TagRef{tagRef("v26.0.0", 100), tagRef("v26.0.1", 300)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {
						trunkEvent(50, "DM-30: before the fork"),
						trunkEvent(200, "DM-31: trunk work after the fork"),
					},
					"v26.0.x": {
						{Branch: "v26.0.x", MergedAt: at(250), Title: "DM-32: backport"},
					},
				},
			},
		},
		Branches: map[string]bool{"v26.0.x": true},
		Now:      at(1000),
	}

	rs := MergedTickets(in)

	first := bucketByName(rs, "v26_0_0")
	require.NotNil(t, first)
	require.Len(t, first.Changes, 1)
	assert.Equal(t, 30, first.Changes[0].Ticket)

	patch := bucketByName(rs, "v26_0_1")
	require.NotNil(t, patch)
	require.Len(t, patch.Changes, 1)
	assert.Equal(t, 32, patch.Changes[0].Ticket, "patch release reads the release branch")

	// The trunk merge after the fork is older than the newest tag, so it
	// does not reach the trunk tail either.
	assert.Empty(t, rs.Tail().Changes)
}

func TestMergedTickets_BranchForkUnknownBranch(t *testing.T) {
	// Without a matching known branch the engine stays on the trunk.
	in := Input{
		Cadence: reltag.RegularCadence,
		Packages: map[string]*RepoHistory{
			"p": {
				Tags: []TagRef{tagRef("v26.0.0", 100), tagRef("v26.0.1", 300)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {
						trunkEvent(50, "DM-40: before"),
						trunkEvent(200, "DM-41: after first tag"),
					},
				},
			},
		},
		Branches: map[string]bool{"unrelated": true},
		Now:      at(1000),
	}

	rs := MergedTickets(in)
	patch := bucketByName(rs, "v26_0_1")
	require.NotNil(t, patch)
	require.Len(t, patch.Changes, 1)
	assert.Equal(t, 41, patch.Changes[0].Ticket)
}

func TestMergedTickets_TrunkTailCadenceCheck(t *testing.T) {
	// A package whose newest tag is a numbered release contributes no
	// trunk-tail noise to the weekly stream, and vice versa.
	history := func() map[string]*RepoHistory {
		return map[string]*RepoHistory{
			"weeklypkg": {
				Tags: []TagRef{tagRef("w.2024.01", 100)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {trunkEvent(500, "DM-50: weekly tail")},
				},
			},
			"regularpkg": {
				Tags: []TagRef{tagRef("w.2024.01", 90), tagRef("v26.0.0", 200)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {trunkEvent(500, "DM-51: regular tail")},
				},
			},
		}
	}

	weekly := MergedTickets(Input{
		Cadence:  reltag.WeeklyCadence,
		Packages: history(),
		Now:      at(1000),
	})
	require.Len(t, weekly.Tail().Changes, 1)
	assert.Equal(t, "weeklypkg", weekly.Tail().Changes[0].Package)

	regular := MergedTickets(Input{
		Cadence:  reltag.RegularCadence,
		Packages: history(),
		Now:      at(1000),
	})
	require.Len(t, regular.Tail().Changes, 1)
	assert.Equal(t, "regularpkg", regular.Tail().Changes[0].Package)
}

func TestMergedTickets_NoEventsNoError(t *testing.T) {
	in := Input{
		Cadence: reltag.WeeklyCadence,
		Packages: map[string]*RepoHistory{
			"quiet": {Tags: []TagRef{tagRef("w.2024.01", 100)}, Pulls: map[string][]MergeEvent{}},
		},
		Now: at(1000),
	}

	rs := MergedTickets(in)
	b := bucketByName(rs, "w_2024_01")
	require.NotNil(t, b)
	assert.Empty(t, b.Changes)
}

func TestMergedTickets_AnnotatedTagUsesCommitTime(t *testing.T) {
	// The tagger acted at t=400 but the tagged commit is from t=200; a
	// merge at t=300 must not be attributed to the tag.
	in := Input{
		Cadence: reltag.WeeklyCadence,
		Packages: map[string]*RepoHistory{
			"p": {
				Tags: []TagRef{{Tag: reltag.Parse("w.2024.01"), TagTime: at(400), CommitTime: at(200)}},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {
						trunkEvent(150, "DM-60: included"),
						trunkEvent(300, "DM-61: after the commit"),
					},
				},
			},
		},
		Now: at(1000),
	}

	rs := MergedTickets(in)
	b := bucketByName(rs, "w_2024_01")
	require.NotNil(t, b)
	require.Len(t, b.Changes, 1)
	assert.Equal(t, 60, b.Changes[0].Ticket)
	assert.Equal(t, at(400), b.Date, "display date follows the tagger")

	// t=300 is after the global newest commit time (t=200), so it lands in
	// the tail.
	require.Len(t, rs.Tail().Changes, 1)
	assert.Equal(t, 61, rs.Tail().Changes[0].Ticket)
}

func TestMergedTickets_MasterSpellingOfTrunk(t *testing.T) {
	in := Input{
		Cadence: reltag.WeeklyCadence,
		Packages: map[string]*RepoHistory{
			"p": {
				Tags: []TagRef{tagRef("w.2024.01", 100)},
				Pulls: map[string][]MergeEvent{
					"master": {{Branch: "master", MergedAt: at(50), Title: "DM-70: legacy default branch"}},
				},
			},
		},
		Now: at(1000),
	}

	rs := MergedTickets(in)
	b := bucketByName(rs, "w_2024_01")
	require.NotNil(t, b)
	require.Len(t, b.Changes, 1)
	assert.Equal(t, 70, b.Changes[0].Ticket)
}

func TestMergedTickets_Idempotent(t *testing.T) {
	in := Input{
		Cadence: reltag.RegularCadence,
		Packages: map[string]*RepoHistory{
			"p": {
				Tags: []TagRef{tagRef("v9.0", 100), tagRef("v9.1", 200)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {
						trunkEvent(50, "DM-1: a"),
						trunkEvent(150, "DM-2: b"),
						trunkEvent(250, "DM-3: c"),
					},
				},
			},
			"q": {
				Tags: []TagRef{tagRef("v9.1", 210)},
				Pulls: map[string][]MergeEvent{
					reltag.TrunkName: {trunkEvent(205, "DM-4: d")},
				},
			},
		},
		Now: at(1000),
	}

	first := MergedTickets(in)
	second := MergedTickets(in)
	assert.Equal(t, first.Ordered(), second.Ordered())
	assert.Equal(t, first.Tail(), second.Tail())
}

func TestReleaseSet_Ordering(t *testing.T) {
	rs := NewReleaseSet(at(0))
	rs.Bucket("v9_1", reltag.Parse("v9.1").Key())
	rs.Bucket("v9_0", reltag.Parse("v9.0").Key())
	rs.Tail().Changes = append(rs.Tail().Changes, Change{Package: "p", Title: "x"})

	ordered := rs.Ordered()
	require.Len(t, ordered, 3)
	assert.Equal(t, "v9_0", ordered[0].Name)
	assert.Equal(t, "v9_1", ordered[1].Name)
	assert.Equal(t, reltag.TrunkName, ordered[2].Name)

	desc := rs.Descending()
	assert.Equal(t, reltag.TrunkName, desc[0].Name)
	assert.Equal(t, "v9_0", desc[2].Name)
}
