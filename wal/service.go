package wal

import (
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// DefaultBatchCapacity is the batch size used when the caller doesn't size
// one explicitly. Small by design — each frame already carries its own CRC.
const DefaultBatchCapacity = 4 * 1024

// DefaultSegmentSizeLimit is the size at which a segment is rotated.
const DefaultSegmentSizeLimit = 5 * 1024 * 1024 // 5 MiB

// Service is the long-running WAL writer: it consumes operations from a
// channel, discards non-mutating ones, and durably appends the rest,
// rotating segments as needed. It owns the live file handle exclusively.
type Service struct {
	ops <-chan Op
	mgr *Manager
	io  *FileIO

	logger kitlog.Logger
}

// NewService opens the manager's current tail and wires a consumer over
// ops. batchCapacity <= 0 selects DefaultBatchCapacity.
func NewService(ops <-chan Op, mgr *Manager, batchCapacity int, logger kitlog.Logger) (*Service, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if batchCapacity <= 0 {
		batchCapacity = DefaultBatchCapacity
	}

	f, err := os.OpenFile(mgr.Tail(), os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "wal: open tail for writing")
	}

	return &Service{
		ops:    ops,
		mgr:    mgr,
		io:     NewFileIO(f, batchCapacity),
		logger: logger,
	}, nil
}

// Run drains ops until the channel is closed, encoding and writing every
// mutating operation. Write and rotation errors are logged and the loop
// continues — a burst of I/O errors does not kill the service. Run flushes
// the tail before returning.
func (s *Service) Run() {
	for op := range s.ops {
		if !op.Mutating() {
			continue
		}

		frame := Encode(op)
		if err := s.io.Write(frame); err != nil {
			level.Error(s.logger).Log("msg", "wal write failed", "op", op.Kind, "err", err)
			continue
		}

		newFile, err := s.mgr.SizeRotate()
		if err != nil {
			level.Error(s.logger).Log("msg", "wal rotation failed", "err", err)
			continue
		}
		if newFile != nil {
			if err := s.io.Flush(); err != nil {
				level.Error(s.logger).Log("msg", "wal flush before rotation failed", "err", err)
			}
			old := s.io.file
			s.io.file = newFile
			old.Close()
		}
	}

	if err := s.io.Close(); err != nil {
		level.Error(s.logger).Log("msg", "wal close on shutdown failed", "err", err)
	}
}

// ReadSegment reads one segment file's full contents, for use by recovery.
func ReadSegment(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "wal: read segment %s", path)
	}
	return buf, nil
}

// Recover decodes every frame found across every segment the manager knows
// about, oldest first, so the caller can replay them in file order.
func Recover(mgr *Manager) ([]Op, error) {
	var ops []Op
	for _, path := range mgr.Segments() {
		buf, err := ReadSegment(path)
		if err != nil {
			return ops, err
		}
		decoded, err := DecodeAll(buf)
		ops = append(ops, decoded...)
		if err != nil {
			return ops, errors.Wrapf(err, "wal: recover segment %s", path)
		}
	}
	return ops, nil
}
