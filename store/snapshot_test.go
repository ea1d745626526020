package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellect4all/kvstore/page"
)

func TestSnapshotter_RoundTripSinglePage(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshotter(dir)

	pairs := []page.KV{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
	}

	n, err := snap.Snapshot(pairs)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	entries, err := filepath.Glob(filepath.Join(dir, "snapshot_*.page"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0], ".page"))

	got, err := Load(entries[0])
	require.NoError(t, err)
	assert.Equal(t, pairs, got)
}

func TestSnapshotter_SpillsAcrossMultiplePages(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshotter(dir)

	pairs := make([]page.KV, 300)
	for i := range pairs {
		pairs[i] = page.KV{Key: fmt.Sprintf("key-%04d", i), Value: strings.Repeat("x", 40)}
	}

	n, err := snap.Snapshot(pairs)
	require.NoError(t, err)
	require.Greater(t, n, 1)

	entries, err := filepath.Glob(filepath.Join(dir, "snapshot_*.page"))
	require.NoError(t, err)
	require.Len(t, entries, n)
	sort.Strings(entries)

	var got []page.KV
	for _, e := range entries {
		pairs, err := Load(e)
		require.NoError(t, err)
		got = append(got, pairs...)
	}
	assert.Equal(t, pairs, got)
}
