package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/intellect4all/kvstore/page"
)

// Snapshotter drains the in-memory index into slotted pages on clean
// shutdown. It performs no compaction and never touches the WAL — it is
// the one caller that exercises the page package end to end.
type Snapshotter struct {
	dir string
}

// NewSnapshotter builds a snapshotter writing pages under dir
// (the layout's persistentDir).
func NewSnapshotter(dir string) *Snapshotter {
	return &Snapshotter{dir: dir}
}

// Snapshot sorts pairs by key, repeatedly pages them via page.Construct, and
// writes each resulting page verbatim to
// persistent/snapshot_<unix_seconds>.page, continuing with the overflow
// until none remains. Returns the number of pages written.
func (s *Snapshotter) Snapshot(pairs []page.KV) (int, error) {
	remaining := make([]page.KV, len(pairs))
	copy(remaining, pairs)
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Key < remaining[j].Key })
	written := 0
	ts := time.Now().Unix()

	for len(remaining) > 0 {
		buf, overflow, err := page.Construct(remaining)
		if err != nil {
			return written, err
		}

		name := fmt.Sprintf("snapshot_%d.page", ts)
		path := filepath.Join(s.dir, name)
		for {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				break
			}
			ts++
			name = fmt.Sprintf("snapshot_%d.page", ts)
			path = filepath.Join(s.dir, name)
		}
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			return written, errors.Wrapf(err, "store: write snapshot page %s", name)
		}
		written++
		ts++

		if len(overflow) == len(remaining) {
			return written, errors.New("store: snapshot made no progress on remaining pairs")
		}
		remaining = overflow
	}

	return written, nil
}

// Load decodes a single snapshot page file back into its (key, value)
// pairs. The running store never reads these back itself (no compaction);
// this exists so the pages are exercised round-trip and so an operator
// tool could inspect a snapshot.
func Load(path string) ([]page.KV, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "store: read snapshot page %s", path)
	}
	return page.Decode(buf)
}
