package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayout_InitCreatesAllFourDirectories(t *testing.T) {
	root := t.TempDir()
	l := newLayout(root)

	require.NoError(t, l.init())

	require.DirExists(t, l.walDir)
	require.DirExists(t, l.snapshotDir)
	require.DirExists(t, l.tempDir)
	require.DirExists(t, l.persistentDir)
}
