// Package reltag parses release tag names into canonical, totally ordered
// release identifiers.
//
// Two tag grammars are recognized: weekly snapshot tags of the form
// w.YYYY.WW (dots and underscores interchangeable) and numbered release tags
// of the form [v]MAJOR.MINOR[.PATCH][.rcN]. A tag whose raw name ends in the
// trunk marker ("main") is a third, dedicated kind that sorts after every
// weekly and numbered tag of any value. Anything else is invalid and carries
// Valid() == false so that callers can filter rather than handle errors.
package reltag

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies which grammar a tag name matched.
type Kind int

const (
	// Invalid marks a tag that matched neither grammar or whose numeric
	// components fall outside the allowed ranges.
	Invalid Kind = iota
	// Weekly is a snapshot tag keyed by year and ISO week.
	Weekly
	// Numbered is a semantic-version style release tag.
	Numbered
	// Trunk is the pseudo-tag for the primary integration branch.
	Trunk
)

// Cadence selects which of the two tag grammars a changelog run targets.
type Cadence int

const (
	// WeeklyCadence targets snapshot tags.
	WeeklyCadence Cadence = iota
	// RegularCadence targets numbered release tags.
	RegularCadence
)

func (c Cadence) String() string {
	if c == WeeklyCadence {
		return "weekly"
	}
	return "regular"
}

// TrunkName is the canonical display name of the trunk pseudo-release.
const TrunkName = "main"

// trunkKey sorts the trunk after any constructible weekly or numbered key.
// The largest numbered key is 1000*1e6 + 99*1e4 + 99*100 + 99 ≈ 1e9.
const trunkKey int64 = 9_999_999_999

var (
	weeklyRe   = regexp.MustCompile(`^w[._](\d{4})[._](\d{2})$`)
	numberedRe = regexp.MustCompile(`^v?(\d+)[._](\d+)(?:[._](\d+))?(?:[._]rc(\d+))?$`)
)

// Tag is an immutable release identifier parsed from a raw tag string.
// Ordering and equality are defined purely on the sort key: two different
// raw spellings of the same release (e.g. "9.1" and "v9_1_0") compare equal.
type Tag struct {
	raw   string
	kind  Kind
	key   int64
	major int
	minor int
}

// Parse converts a raw tag name into a Tag. It always succeeds; tags that
// match neither grammar are returned with kind Invalid.
func Parse(raw string) Tag {
	if strings.HasSuffix(raw, TrunkName) {
		return Tag{raw: raw, kind: Trunk, key: trunkKey}
	}
	if strings.HasPrefix(raw, "w") {
		return parseWeekly(raw)
	}
	return parseNumbered(raw)
}

func parseWeekly(raw string) Tag {
	m := weeklyRe.FindStringSubmatch(raw)
	if m == nil {
		return Tag{raw: raw}
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	return Tag{raw: raw, kind: Weekly, key: int64(year*100 + week)}
}

func parseNumbered(raw string) Tag {
	m := numberedRe.FindStringSubmatch(raw)
	if m == nil {
		return Tag{raw: raw}
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch := 0
	if m[3] != "" {
		patch, _ = strconv.Atoi(m[3])
	}
	// A release without an rc suffix ranks above its own release candidates.
	rc := 99
	if m[4] != "" {
		rc, _ = strconv.Atoi(m[4])
	}
	// Majors outside [9, 1000] are false positives from unrelated numeric tags.
	if major < 9 || major > 1000 {
		return Tag{raw: raw}
	}
	return Tag{
		raw:   raw,
		kind:  Numbered,
		key:   int64(major)*1_000_000 + int64(minor)*10_000 + int64(patch)*100 + int64(rc),
		major: major,
		minor: minor,
	}
}

// Raw returns the original tag string.
func (t Tag) Raw() string { return t.raw }

// Kind returns which grammar the tag matched.
func (t Tag) Kind() Kind { return t.kind }

// Valid reports whether the tag matched one of the grammars.
func (t Tag) Valid() bool { return t.kind != Invalid }

// Key returns the synthetic integer sort key. Keys define a strict total
// order across all valid tags, with the trunk sorting last.
func (t Tag) Key() int64 { return t.key }

// Canonical returns the normalized display name: "main" for the trunk,
// the underscore-normalized raw name for weeklies, and the
// underscore-normalized raw name with a guaranteed leading "v" for
// numbered releases.
func (t Tag) Canonical() string {
	if t.kind == Trunk {
		return TrunkName
	}
	name := t.raw
	if t.kind == Numbered && !strings.HasPrefix(name, "v") {
		name = "v" + name
	}
	return strings.ReplaceAll(name, ".", "_")
}

// ReleaseBranch derives the release-line branch name for a numbered tag
// (e.g. v26.0.1 → "v26.0"). It returns "" for weekly and trunk tags, which
// are cut from the trunk itself.
func (t Tag) ReleaseBranch() string {
	if t.kind != Numbered {
		return ""
	}
	return "v" + strconv.Itoa(t.major) + "." + strconv.Itoa(t.minor)
}

// Compare returns -1, 0, or +1 comparing the sort keys of t and o.
func (t Tag) Compare(o Tag) int {
	switch {
	case t.key < o.key:
		return -1
	case t.key > o.key:
		return 1
	default:
		return 0
	}
}

// Less reports whether t sorts before o.
func (t Tag) Less(o Tag) bool { return t.key < o.key }

// Equal reports whether t and o denote the same release, regardless of the
// raw spelling.
func (t Tag) Equal(o Tag) bool { return t.key == o.key }

// Matches reports whether the tag belongs to the given cadence. The trunk
// is a member of both cadences so that it appears in either changelog
// stream.
func Matches(t Tag, c Cadence) bool {
	switch t.kind {
	case Trunk:
		return true
	case Weekly:
		return c == WeeklyCadence
	case Numbered:
		return c == RegularCadence
	default:
		return false
	}
}
