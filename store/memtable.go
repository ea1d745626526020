package store

import (
	"sort"

	"github.com/intellect4all/kvstore/page"
)

// Memtable is the in-memory index: a key/value map owned exclusively by the
// reader goroutine, so it needs no locking of its own (see Store). It is
// backed by a plain Go map
// rather than a third-party ordered-map type — key order only matters when
// pairs are drained for a snapshot, and a sort at drain time is cheaper than
// keeping every mutation ordered for a feature (range scans) this store
// doesn't implement.
type Memtable struct {
	data map[string]string
}

// NewMemtable returns an empty index.
func NewMemtable() *Memtable {
	return &Memtable{data: make(map[string]string)}
}

// Set installs key/value and returns key, matching the original layer's
// eval() contract where SET's result string is the key, not the value.
func (m *Memtable) Set(key, value string) string {
	m.data[key] = value
	return key
}

// Get returns the value for key and whether it was present.
func (m *Memtable) Get(key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Del removes key and returns its prior value, if any.
func (m *Memtable) Del(key string) (string, bool) {
	v, ok := m.data[key]
	delete(m.data, key)
	return v, ok
}

// Len reports the number of keys currently held.
func (m *Memtable) Len() int {
	return len(m.data)
}

// Pairs returns every (key, value) in lexicographic key order, the form C8
// consumes to build snapshot pages.
func (m *Memtable) Pairs() []page.KV {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]page.KV, len(keys))
	for i, k := range keys {
		pairs[i] = page.KV{Key: k, Value: m.data[k]}
	}
	return pairs
}
