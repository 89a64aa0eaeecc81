package changelog

import (
	"math"
	"sort"
	"time"

	"github.com/mwittgen/changelog/internal/reltag"
)

// MergeEvent is a single merged change on one repository, keyed by the
// branch it was merged into.
type MergeEvent struct {
	Branch   string
	MergedAt time.Time
	Title    string
}

// TagRef is a tag on a package repository together with its timestamps.
// For an annotated tag TagTime is the tagger's date and CommitTime the
// authored date of the commit it points to; a lightweight tag carries the
// same timestamp in both fields.
type TagRef struct {
	Tag        reltag.Tag
	TagTime    time.Time
	CommitTime time.Time
}

// RepoHistory holds everything the attribution engine needs about one
// package repository: its valid tags and its merged changes partitioned by
// target branch, each partition ordered by merge time ascending.
type RepoHistory struct {
	Tags  []TagRef
	Pulls map[string][]MergeEvent
}

// Release is one release manifest reduced to the package names it ships.
type Release struct {
	Tag      reltag.Tag
	Packages []string
}

// Diff lists the packages added and removed relative to the immediately
// preceding release of the same cadence. Both sets are sorted
// lexicographically.
type Diff struct {
	Added   []string
	Removed []string
}

// Change is a single merged change after attribution, owned by exactly one
// release bucket. Ticket is 0 when the title carried no recognizable
// ticket reference.
type Change struct {
	Package  string
	Title    string
	MergedAt time.Time
	Ticket   int
}

// Bucket collects the changes attributed to one release.
type Bucket struct {
	Name    string
	Key     int64
	Date    time.Time
	Changes []Change
}

// trunkTailKey sorts the synthetic trunk-tail bucket after every real
// release, including a literal trunk tag.
const trunkTailKey int64 = math.MaxInt64

// ReleaseSet is the ordered collection of release buckets produced by one
// attribution run. The trunk-tail bucket is kept separate so that a real
// trunk tag cannot collide with it.
type ReleaseSet struct {
	buckets map[string]*Bucket
	tail    *Bucket
}

// NewReleaseSet returns an empty release set whose trunk-tail bucket is
// dated at generation time.
func NewReleaseSet(now time.Time) *ReleaseSet {
	return &ReleaseSet{
		buckets: make(map[string]*Bucket),
		tail:    &Bucket{Name: reltag.TrunkName, Key: trunkTailKey, Date: now},
	}
}

// Bucket returns the bucket for the given canonical release name, creating
// it when first seen.
func (rs *ReleaseSet) Bucket(name string, key int64) *Bucket {
	b, ok := rs.buckets[name]
	if !ok {
		b = &Bucket{Name: name, Key: key}
		rs.buckets[name] = b
	}
	return b
}

// Tail returns the synthetic trunk-tail bucket.
func (rs *ReleaseSet) Tail() *Bucket { return rs.tail }

// Ordered returns all non-empty buckets in ascending release order, the
// trunk tail last. A bucket counts as non-empty when it exists at all;
// buckets with zero changes still represent a processed tag. The trunk tail
// is included only when it holds changes.
func (rs *ReleaseSet) Ordered() []*Bucket {
	out := make([]*Bucket, 0, len(rs.buckets)+1)
	for _, b := range rs.buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Name < out[j].Name
	})
	if len(rs.tail.Changes) > 0 {
		out = append(out, rs.tail)
	}
	return out
}

// Descending returns the buckets newest-first, the trunk tail first when
// present.
func (rs *ReleaseSet) Descending() []*Bucket {
	asc := rs.Ordered()
	for i, j := 0, len(asc)-1; i < j; i, j = i+1, j-1 {
		asc[i], asc[j] = asc[j], asc[i]
	}
	return asc
}
