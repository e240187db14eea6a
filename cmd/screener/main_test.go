package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "screener dev"))
}

func TestSizeCommand(t *testing.T) {
	out, err := execute(t, "size", "--balance", "1000", "--risk", "1", "--entry", "100", "--stop", "95", "--rr", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Side          : long")
	assert.Contains(t, out, "Quantity      : 2.000000")
	assert.Contains(t, out, "Notional      : $200.00")
	assert.Contains(t, out, "Safe leverage : 0x")
	assert.Contains(t, out, "$110.00")
}

func TestSizeCommand_InvalidInput(t *testing.T) {
	_, err := execute(t, "size", "--balance", "1000", "--entry", "100", "--stop", "100")
	assert.Error(t, err)
}

func TestCategoriesCommand(t *testing.T) {
	out, err := execute(t, "categories", "--format", "yaml")
	require.NoError(t, err)

	for _, key := range []string{"intraday_long", "semi_swing_long", "swing_long", "intraday_short", "semi_swing_short", "swing_short"} {
		assert.Contains(t, out, "key: "+key)
	}
}

func TestCategoriesCommand_Table(t *testing.T) {
	out, err := execute(t, "categories", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "intraday_long")
	assert.NotContains(t, out, "\x1b[", "color should be off for a buffer")
}
