//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"fetch", "lookup", "streets", "export", "snapshots", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "rakennus-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestFetchCommand_Flags(t *testing.T) {
	for _, name := range []string{"street", "out", "save", "hits"} {
		require.NotNil(t, fetchCmd.Flags().Lookup(name), "fetch should have --%s", name)
	}
}

func TestLookupCommand_Flags(t *testing.T) {
	for _, name := range []string{"id", "street", "number", "src", "snapshot"} {
		require.NotNil(t, lookupCmd.Flags().Lookup(name), "lookup should have --%s", name)
	}
}

func TestExportCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range exportCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"pg", "shp", "xlsx"} {
		assert.True(t, names[name], "expected export subcommand %q", name)
	}
}

func TestSnapshotsCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range snapshotsCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"list", "delete", "prune"} {
		assert.True(t, names[name], "expected snapshots subcommand %q", name)
	}
}
