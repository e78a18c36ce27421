package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/config"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/session"
)

func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestSearchPages(t *testing.T) {
	pages := session.StaticPages{
		"SUMMARY\nDouble tapped breaker in main panel.",
		"ELECTRICAL\nA double  tapped\nbreaker was observed at the main panel.",
	}

	state, err := searchPages(testCommand(), pages, "double tapped breaker", config.Default())
	require.NoError(t, err)

	require.Len(t, state.Matches, 2)
	assert.Equal(t, 1, state.Matches[0].PageNumber)
	assert.Equal(t, 2, state.Matches[1].PageNumber)
	assert.Equal(t, 0, state.CurrentIndex)
}

func TestWriteJSON(t *testing.T) {
	pages := session.StaticPages{"Gutters are loose at the rear elevation."}
	state, err := searchPages(testCommand(), pages, "gutters", config.Default())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, state))

	var out searchOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "gutters", out.Query)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, "exact", out.Matches[0].Strategy)
	assert.Equal(t, 0, out.Matches[0].RawIndex)
}

func TestWriteText(t *testing.T) {
	t.Run("no matches", func(t *testing.T) {
		var buf bytes.Buffer
		writeText(&buf, session.State{Query: "radon"})
		assert.Equal(t, "No matches for \"radon\"\n", buf.String())
	})

	t.Run("lists matches", func(t *testing.T) {
		pages := session.StaticPages{"", "Radon test recommended."}
		state, err := searchPages(testCommand(), pages, "radon", config.Default())
		require.NoError(t, err)

		var buf bytes.Buffer
		writeText(&buf, state)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "1 match(es)")
		assert.Contains(t, lines[1], "page 2 @0")
		assert.Contains(t, lines[1], "[exact 1.00]")
	})
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t\tc", 80))
	assert.Equal(t, "abcdefg...", snippet("abcdefghijklmnop", 10))
}

func TestRunSearch_InvalidInput(t *testing.T) {
	dir := t.TempDir()

	err := runSearch(testCommand(), []string{filepath.Join(dir, "missing.pdf"), "q"})
	assert.ErrorContains(t, err, "not found")

	err = runSearch(testCommand(), []string{dir, "q"})
	assert.ErrorContains(t, err, "must be a PDF")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Version: dev")
	assert.Contains(t, buf.String(), "SQLite Driver:")
}
