package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// layout is the fixed set of subdirectories a data directory is organized
// into. Only walDir is read or written by the core; the others are
// reserved, except persistentDir, which C8 writes snapshot pages into.
type layout struct {
	root          string
	walDir        string
	snapshotDir   string
	tempDir       string
	persistentDir string
}

func newLayout(root string) layout {
	return layout{
		root:          root,
		walDir:        filepath.Join(root, "wal"),
		snapshotDir:   filepath.Join(root, "snapshot"),
		tempDir:       filepath.Join(root, "temp"),
		persistentDir: filepath.Join(root, "persistent"),
	}
}

// init creates every directory in the layout, if absent.
func (l layout) init() error {
	for _, dir := range []string{l.walDir, l.snapshotDir, l.tempDir, l.persistentDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "store: create directory %s", dir)
		}
	}
	return nil
}
