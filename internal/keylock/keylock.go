// Package keylock provides striped per-key mutual exclusion.
//
// The store's upsert reads the current record before writing a merged one,
// and its delete checks existence before removing. The engine offers no
// compare-and-swap, so these check-then-act sequences are serialized per key
// here. Keys are hashed onto a fixed set of stripes; two distinct keys may
// share a stripe, which costs contention but never correctness.
package keylock

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// Map is a striped set of mutexes keyed by string.
// The zero value is not usable; use New.
type Map struct {
	stripes []sync.Mutex
}

// New creates a Map with the default stripe count.
func New() *Map {
	return &Map{stripes: make([]sync.Mutex, defaultStripes)}
}

func (m *Map) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &m.stripes[h.Sum32()%uint32(len(m.stripes))]
}

// Lock acquires the stripe owning key and returns its unlock function.
//
//	unlock := locks.Lock(key)
//	defer unlock()
func (m *Map) Lock(key string) func() {
	mu := m.stripe(key)
	mu.Lock()
	return mu.Unlock
}
