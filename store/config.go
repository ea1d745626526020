package store

import (
	"github.com/c2h5oh/datasize"

	"github.com/intellect4all/kvstore/wal"
)

// Config holds the tunables a Store is built from: a plain struct with a
// DefaultConfig constructor rather than functional options.
type Config struct {
	// DataDir is the store's root directory. wal/, snapshot/, temp/, and
	// persistent/ are created beneath it.
	DataDir string

	// CacheCapacity is the number of hot keys the LRU layer holds.
	CacheCapacity int

	// WalBatchSize is the WAL writer's in-memory batch capacity before a
	// flush is forced.
	WalBatchSize datasize.ByteSize

	// WalSegmentSizeLimit is the on-disk size at which the WAL rotates to a
	// fresh segment.
	WalSegmentSizeLimit datasize.ByteSize

	// OpChannelCapacity bounds the queue between the reader and writer
	// goroutines.
	OpChannelCapacity int
}

// DefaultConfig returns the configuration the CLI binary uses: cache
// capacity 100 and a 5 MiB WAL segment limit, as specified for the default
// build.
func DefaultConfig(root string) Config {
	return Config{
		DataDir:             root,
		CacheCapacity:       100,
		WalBatchSize:        4 * datasize.KB,
		WalSegmentSizeLimit: datasize.ByteSize(wal.DefaultSegmentSizeLimit),
		OpChannelCapacity:   100,
	}
}
