package wal

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// FileIO wraps a single WAL segment file handle with a small batching
// buffer. Each record already carries its own CRC trailer, so the batch is
// sized in kilobytes, not megabytes — it exists to cut down on syscalls,
// not to provide durability by itself.
type FileIO struct {
	file  *os.File
	batch []byte
}

// NewFileIO wraps file with a batch buffer of the given capacity.
func NewFileIO(file *os.File, batchCapacity int) *FileIO {
	return &FileIO{
		file:  file,
		batch: make([]byte, 0, batchCapacity),
	}
}

// Write appends data to the batch, flushing first if it would overflow the
// batch's capacity. Appends happen strictly in call order.
func (f *FileIO) Write(data []byte) error {
	if len(f.batch)+len(data) > cap(f.batch) {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	f.batch = append(f.batch, data...)
	return nil
}

// Flush writes the entire batch to the file and clears it.
func (f *FileIO) Flush() error {
	if len(f.batch) == 0 {
		return nil
	}
	if _, err := f.file.Write(f.batch); err != nil {
		return errors.Wrap(err, "wal: flush")
	}
	f.batch = f.batch[:0]
	return nil
}

// Sync fsyncs the underlying file. No sync is ever performed implicitly by
// Write/Flush; callers opt in at rotation/shutdown boundaries.
func (f *FileIO) Sync() error {
	return errors.Wrap(f.file.Sync(), "wal: sync")
}

// Recover reads the whole file into memory, from the beginning, regardless
// of how much of it has already been batched/flushed by this handle.
func (f *FileIO) Recover() ([]byte, error) {
	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "wal: seek")
	}
	buf, err := io.ReadAll(f.file)
	if err != nil {
		return nil, errors.Wrap(err, "wal: read")
	}
	return buf, nil
}

// Close flushes any buffered bytes and closes the file handle.
func (f *FileIO) Close() error {
	if err := f.Flush(); err != nil {
		return err
	}
	return errors.Wrap(f.file.Close(), "wal: close")
}
