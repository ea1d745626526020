// Package testutil holds small scratch-directory helpers shared by this
// module's test files.
package testutil

import (
	"os"
	"testing"
)

// TempDir creates a fresh scratch directory for a test and registers its
// removal on cleanup.
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "kvstore-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}
