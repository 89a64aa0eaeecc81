package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "Argument Error", Argument.String())
	assert.Equal(t, "Configuration Error", Configuration.String())
	assert.Equal(t, "Network Error", Network.String())
	assert.Equal(t, "Runtime Error", Runtime.String())
}

func TestAsCLIError(t *testing.T) {
	cliErr := NewRuntimeError("boom")
	assert.Same(t, cliErr, AsCLIError(cliErr))
	assert.Nil(t, AsCLIError(fmt.Errorf("plain")))
	assert.Nil(t, AsCLIError(nil))
}

func TestWrapWithMessage(t *testing.T) {
	err := WrapWithMessage(fmt.Errorf("connection refused"), Network, "fetching tags")
	require.NotNil(t, err)
	assert.Equal(t, Network, err.Category)
	assert.Equal(t, "fetching tags: connection refused", err.Message)

	assert.Nil(t, WrapWithMessage(nil, Network, "x"))
}

func TestFormatErrorPlain(t *testing.T) {
	err := NewArgumentErrorWithUsage("unknown release type \"monthly\"",
		"changelog generate (weekly|regular)",
		"Use 'weekly' for w_YYYY_WW tags")

	out := FormatErrorPlain(err)
	assert.Contains(t, out, "Error [Argument Error]: unknown release type")
	assert.Contains(t, out, "Usage: changelog generate (weekly|regular)")
	assert.Contains(t, out, "To fix this:")
	assert.Contains(t, out, "  • Use 'weekly' for w_YYYY_WW tags")
}
