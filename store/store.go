// Package store wires the collaborators — the parser, the in-memory index,
// the LRU cache, the WAL, and the slotted-page snapshotter — into the
// read-eval-write-reply loop described by the store facade.
package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/intellect4all/kvstore/wal"
)

// Store is the facade (C7): it owns the in-memory index and cache
// exclusively on the reader side, and hands mutating operations to a WAL
// service running on its own goroutine.
type Store struct {
	cfg    Config
	layout layout
	logger kitlog.Logger

	memtable    *Memtable
	cache       *Cache
	mgr         *wal.Manager
	snapshotter *Snapshotter

	opCh chan wal.Op
}

// New builds a Store rooted at cfg.DataDir, creating the filesystem layout
// and the WAL manager. It does not start the reader/writer loop — call Run
// for that — nor does it replay the WAL; call Replay explicitly first if
// the caller wants startup rehydration.
func New(cfg Config, logger kitlog.Logger) (*Store, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}

	l := newLayout(cfg.DataDir)
	if err := l.init(); err != nil {
		return nil, err
	}

	mgr, err := wal.NewManager(l.walDir, int64(cfg.WalSegmentSizeLimit), logger)
	if err != nil {
		return nil, errors.Wrap(err, "store: build wal manager")
	}

	cache, err := NewCache(cfg.CacheCapacity)
	if err != nil {
		return nil, errors.Wrap(err, "store: build cache")
	}

	return &Store{
		cfg:         cfg,
		layout:      l,
		logger:      logger,
		memtable:    NewMemtable(),
		cache:       cache,
		mgr:         mgr,
		snapshotter: NewSnapshotter(l.persistentDir),
		opCh:        make(chan wal.Op, cfg.OpChannelCapacity),
	}, nil
}

// Replay reads every WAL segment, oldest first, and applies each decoded
// operation to the in-memory index, reconstructing the state a clean
// shutdown would have left behind.
func (s *Store) Replay() error {
	ops, err := wal.Recover(s.mgr)
	if err != nil {
		level.Error(s.logger).Log("msg", "wal recovery failed", "err", err)
		return err
	}
	for _, op := range ops {
		s.apply(op)
	}
	level.Info(s.logger).Log("msg", "replayed wal", "ops", len(ops))
	return nil
}

// apply evaluates op against the in-memory index and cache, returning the
// same result string the original layer's eval() returns: the key for SET,
// the value for GET, the prior value for DEL, and false when there is none.
func (s *Store) apply(op wal.Op) (string, bool) {
	switch op.Kind {
	case wal.KindSet:
		s.cache.Put(op.Key, op.Value)
		return s.memtable.Set(op.Key, op.Value), true
	case wal.KindGet:
		if v, ok := s.cache.Get(op.Key); ok {
			return v, true
		}
		v, ok := s.memtable.Get(op.Key)
		if ok {
			s.cache.Put(op.Key, v)
		}
		return v, ok
	case wal.KindDel:
		s.cache.Del(op.Key)
		return s.memtable.Del(op.Key)
	default:
		return "", false
	}
}

// Run starts the writer goroutine and drives the reader loop over in,
// writing one reply line per operation to out, until ctx is cancelled or
// in reaches EOF. On return, the operation channel has been closed and the
// writer goroutine has flushed and exited.
func (s *Store) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	svc, err := wal.NewService(s.opCh, s.mgr, int(s.cfg.WalBatchSize), s.logger)
	if err != nil {
		return errors.Wrap(err, "store: start wal service")
	}

	writerDone := make(chan struct{})
	go func() {
		svc.Run()
		close(writerDone)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			level.Error(s.logger).Log("msg", "stdin read failed", "err", err)
		}
	}()

readLoop:
	for {
		select {
		case <-ctx.Done():
			break readLoop
		case line, ok := <-lines:
			if !ok {
				break readLoop
			}
			s.processLine(ctx, line, out)
		}
	}

	close(s.opCh)
	<-writerDone
	return nil
}

// processLine parses one request line, applies every resulting operation,
// forwards mutating ones to the WAL, and writes one reply per operation.
// Parse errors are logged and the reader continues with the next line.
func (s *Store) processLine(ctx context.Context, line string, out io.Writer) {
	ops, err := ParseLine(line)
	if err != nil {
		level.Warn(s.logger).Log("msg", "parse error", "err", err)
		return
	}

	for _, op := range ops {
		op.Timestamp = time.Now().Unix()
		result, ok := s.apply(op)

		if op.Mutating() {
			select {
			case s.opCh <- op:
			case <-ctx.Done():
			}
		}

		reply := "Result: None\n"
		if ok {
			reply = fmt.Sprintf("Result: %s\n", result)
		}
		if _, err := io.WriteString(out, reply); err != nil {
			level.Error(s.logger).Log("msg", "write reply failed", "err", err)
		}
	}
}

// Snapshot drains the in-memory index into slotted pages under
// persistent/, for use on clean shutdown.
func (s *Store) Snapshot() (int, error) {
	return s.snapshotter.Snapshot(s.memtable.Pairs())
}
