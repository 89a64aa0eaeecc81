package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectSymbols(t *testing.T) {
	tests := map[string]struct {
		caps TerminalCapabilities
		want ProgressSymbols
	}{
		"unicode terminal": {
			caps: TerminalCapabilities{IsTTY: true, SupportsUnicode: true},
			want: ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14},
		},
		"ascii terminal": {
			caps: TerminalCapabilities{IsTTY: true, SupportsUnicode: false},
			want: ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9},
		},
		"not a terminal": {
			caps: TerminalCapabilities{},
			want: ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectSymbols(tc.caps))
		})
	}
}

func TestDetectTerminalCapabilities_NonTTY(t *testing.T) {
	// Test binaries run with stdout redirected, so this exercises the
	// degraded path.
	caps := DetectTerminalCapabilities()
	if !caps.IsTTY {
		assert.False(t, caps.SupportsColor)
		assert.False(t, caps.SupportsUnicode)
		assert.Zero(t, caps.Width)
	}
}

func TestDisplay_NonTTYPlainLines(t *testing.T) {
	var buf bytes.Buffer
	d := &Display{
		caps:    TerminalCapabilities{IsTTY: false},
		symbols: SelectSymbols(TerminalCapabilities{}),
		out:     &buf,
	}

	d.Start("fetching repositories")
	d.Succeed("fetched 120 repositories")
	d.Start("rendering")
	d.Fail("rendering failed")

	out := buf.String()
	assert.Contains(t, out, "fetching repositories...\n")
	assert.Contains(t, out, "[OK] fetched 120 repositories\n")
	assert.Contains(t, out, "[FAIL] rendering failed\n")
}
