package reltag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Weekly(t *testing.T) {
	tests := map[string]struct {
		raw       string
		valid     bool
		key       int64
		canonical string
	}{
		"dot separators":        {raw: "w.2023.10", valid: true, key: 202310, canonical: "w_2023_10"},
		"underscore separators": {raw: "w_2023_11", valid: true, key: 202311, canonical: "w_2023_11"},
		"mixed separators":      {raw: "w.2024_01", valid: true, key: 202401, canonical: "w_2024_01"},
		"missing week":          {raw: "w.2023", valid: false},
		"week not two digits":   {raw: "w.2023.1", valid: false},
		"year not four digits":  {raw: "w.23.10", valid: false},
		"trailing garbage":      {raw: "w.2023.10.1", valid: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tag := Parse(tc.raw)
			assert.Equal(t, tc.valid, tag.Valid())
			if !tc.valid {
				assert.Equal(t, Invalid, tag.Kind())
				return
			}
			assert.Equal(t, Weekly, tag.Kind())
			assert.Equal(t, tc.key, tag.Key())
			assert.Equal(t, tc.canonical, tag.Canonical())
		})
	}
}

func TestParse_Numbered(t *testing.T) {
	tests := map[string]struct {
		raw       string
		valid     bool
		key       int64
		canonical string
	}{
		"major minor":            {raw: "v9.1", valid: true, key: 9_010_099, canonical: "v9_1"},
		"no v prefix":            {raw: "9_1_0", valid: true, key: 9_010_099, canonical: "v9_1_0"},
		"patch":                  {raw: "v9.1.2", valid: true, key: 9_010_299, canonical: "v9_1_2"},
		"release candidate":      {raw: "v9.1.2.rc3", valid: true, key: 9_010_203, canonical: "v9_1_2_rc3"},
		"underscore rc":          {raw: "v26_0_rc1", valid: true, key: 26_000_001, canonical: "v26_0_rc1"},
		"major below range":      {raw: "v8.1", valid: false},
		"major above range":      {raw: "v1001.0", valid: false},
		"bare number":            {raw: "26", valid: false},
		"unrelated numeric":      {raw: "1.2.3", valid: false},
		"not a version":          {raw: "banana", valid: false},
		"empty":                  {raw: "", valid: false},
		"v prefix only":          {raw: "v", valid: false},
		"major at lower bound":   {raw: "v9.0", valid: true, key: 9_000_099, canonical: "v9_0"},
		"major at upper bound":   {raw: "v1000.0", valid: true, key: 1_000_000_099, canonical: "v1000_0"},
		"spelled with dots only": {raw: "24.1.1", valid: true, key: 24_010_199, canonical: "v24_1_1"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tag := Parse(tc.raw)
			assert.Equal(t, tc.valid, tag.Valid(), "raw %q", tc.raw)
			if !tc.valid {
				return
			}
			assert.Equal(t, Numbered, tag.Kind())
			assert.Equal(t, tc.key, tag.Key())
			assert.Equal(t, tc.canonical, tag.Canonical())
		})
	}
}

func TestParse_Trunk(t *testing.T) {
	for _, raw := range []string{"main", "~main", "refs-main"} {
		tag := Parse(raw)
		require.True(t, tag.Valid())
		assert.Equal(t, Trunk, tag.Kind())
		assert.Equal(t, TrunkName, tag.Canonical())
	}
}

func TestOrdering(t *testing.T) {
	// Different spellings of the same release compare equal; release
	// candidates rank below their release; the trunk sorts after all.
	v910 := Parse("9_1_0")
	v91 := Parse("v9.1")
	v912 := Parse("v9.1.2")
	v912rc3 := Parse("v9.1.2.rc3")
	v913 := Parse("v9.1.3")

	assert.True(t, v910.Equal(v91))
	assert.True(t, v910.Less(v912rc3))
	assert.True(t, v912rc3.Less(v912))
	assert.True(t, v912.Less(v913))
	assert.Equal(t, -1, v910.Compare(v913))
	assert.Equal(t, 0, v910.Compare(v91))
	assert.Equal(t, 1, v913.Compare(v910))

	w10 := Parse("w.2023.10")
	w11 := Parse("w_2023_11")
	assert.True(t, w10.Less(w11))

	trunk := Parse("main")
	biggest := Parse("v1000.99.99.rc99")
	require.True(t, biggest.Valid())
	assert.True(t, biggest.Less(trunk))
	assert.True(t, w11.Less(trunk))
}

func TestReleaseBranch(t *testing.T) {
	assert.Equal(t, "v26.0", Parse("v26.0.1").ReleaseBranch())
	assert.Equal(t, "v9.1", Parse("9_1_0").ReleaseBranch())
	assert.Equal(t, "", Parse("w.2023.10").ReleaseBranch())
	assert.Equal(t, "", Parse("main").ReleaseBranch())
	assert.Equal(t, "", Parse("nonsense").ReleaseBranch())
}

func TestMatches(t *testing.T) {
	weekly := Parse("w.2023.10")
	numbered := Parse("v9.1")
	trunk := Parse("main")
	invalid := Parse("nope")

	assert.True(t, Matches(weekly, WeeklyCadence))
	assert.False(t, Matches(weekly, RegularCadence))
	assert.True(t, Matches(numbered, RegularCadence))
	assert.False(t, Matches(numbered, WeeklyCadence))
	assert.True(t, Matches(trunk, WeeklyCadence))
	assert.True(t, Matches(trunk, RegularCadence))
	assert.False(t, Matches(invalid, WeeklyCadence))
	assert.False(t, Matches(invalid, RegularCadence))
}
