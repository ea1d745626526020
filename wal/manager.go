package wal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

const segmentPrefix = "wal_"

// Manager enumerates, creates, rotates, and age-prunes WAL segment files
// inside a single directory. It never holds the tail's open handle —
// that is owned by the writer via FileIO — but it does create the file on
// disk during rotation, since it alone knows the naming scheme.
type Manager struct {
	dir       string
	sizeLimit int64
	logger    kitlog.Logger

	mu       sync.Mutex
	segments []string // basenames, ascending, oldest first; last is the tail
}

// NewManager discovers the segments already present in dir, creating a
// fresh tail segment if the directory is empty.
func NewManager(dir string, sizeLimit int64, logger kitlog.Logger) (*Manager, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	m := &Manager{dir: dir, sizeLimit: sizeLimit, logger: logger}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "wal: read segment directory")
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := parseSegmentTimestamp(e.Name()); ok {
			m.segments = append(m.segments, e.Name())
		}
	}
	sort.Strings(m.segments)

	if len(m.segments) == 0 {
		if _, err := m.rotateLocked(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func parseSegmentTimestamp(name string) (int64, bool) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 || parts[0]+"_" != segmentPrefix {
		return 0, false
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

func segmentName(ts int64) string {
	return fmt.Sprintf("%s%d", segmentPrefix, ts)
}

// Tail returns the full path of the current tail segment.
func (m *Manager) Tail() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filepath.Join(m.dir, m.segments[len(m.segments)-1])
}

// Segments returns the full paths of every segment, oldest first, including
// the tail — the order recovery must replay them in.
func (m *Manager) Segments() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.segments))
	for i, name := range m.segments {
		out[i] = filepath.Join(m.dir, name)
	}
	return out
}

// Rotate creates a new tail segment and returns an open handle to it. The
// previous tail is left untouched on disk; the caller (the WAL service) is
// responsible for flushing and replacing its own handle.
func (m *Manager) Rotate() (*os.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rotateLocked()
}

func (m *Manager) rotateLocked() (*os.File, error) {
	ts := time.Now().Unix()
	name := segmentName(ts)
	for len(m.segments) > 0 && name <= m.segments[len(m.segments)-1] {
		ts++
		name = segmentName(ts)
	}

	path := filepath.Join(m.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "wal: create segment %s", name)
	}

	m.segments = append(m.segments, name)
	level.Info(m.logger).Log("msg", "rotated wal segment", "segment", name)
	return f, nil
}

// SizeRotate rotates to a new tail, returning its open handle, if and only
// if the current tail's on-disk size has reached the configured limit.
func (m *Manager) SizeRotate() (*os.File, error) {
	m.mu.Lock()
	tail := filepath.Join(m.dir, m.segments[len(m.segments)-1])
	m.mu.Unlock()

	info, err := os.Stat(tail)
	if err != nil {
		return nil, errors.Wrap(err, "wal: stat tail segment")
	}
	if info.Size() < m.sizeLimit {
		return nil, nil
	}

	return m.Rotate()
}

type deleteResult struct {
	name    string
	deleted bool
	err     error
}

// AgeCleanup deletes every segment whose filename timestamp is strictly
// less than cutoff. Deletions run concurrently; a failed deletion is
// logged and the segment is left in place. If pruning would empty the
// segment set, a fresh tail is created synchronously before returning.
// Returns the number of segments successfully deleted.
func (m *Manager) AgeCleanup(cutoff int64) (int, error) {
	m.mu.Lock()
	var toDelete []string
	var keep []string
	for _, name := range m.segments {
		ts, ok := parseSegmentTimestamp(name)
		if ok && ts < cutoff {
			toDelete = append(toDelete, name)
		} else {
			keep = append(keep, name)
		}
	}
	m.mu.Unlock()

	if len(toDelete) == 0 {
		return 0, nil
	}

	results := make(chan deleteResult, len(toDelete))
	var wg sync.WaitGroup
	for _, name := range toDelete {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			err := os.Remove(filepath.Join(m.dir, name))
			results <- deleteResult{name: name, deleted: err == nil, err: err}
		}(name)
	}
	wg.Wait()
	close(results)

	deletedCount := 0
	deletedSet := make(map[string]bool)
	for r := range results {
		if r.deleted {
			deletedCount++
			deletedSet[r.name] = true
			continue
		}
		level.Warn(m.logger).Log("msg", "failed to prune wal segment", "segment", r.name, "err", r.err)
	}

	m.mu.Lock()
	survivors := keep
	for _, name := range toDelete {
		if !deletedSet[name] {
			survivors = append(survivors, name)
		}
	}
	sort.Strings(survivors)
	m.segments = survivors
	empty := len(m.segments) == 0
	m.mu.Unlock()

	if empty {
		if _, err := m.Rotate(); err != nil {
			return deletedCount, err
		}
	}

	return deletedCount, nil
}
