package engine

import "sort"

// memtable holds the live keyspace: a value map plus a sorted key slice so
// ordered scans do not re-sort on every call. All access is synchronized by
// the owning DB.
type memtable struct {
	values map[string][]byte
	keys   []string // ascending
}

func newMemtable() *memtable {
	return &memtable{values: make(map[string][]byte)}
}

func (m *memtable) len() int {
	return len(m.keys)
}

func (m *memtable) get(key string) ([]byte, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *memtable) put(key string, value []byte) {
	if _, exists := m.values[key]; !exists {
		i := sort.SearchStrings(m.keys, key)
		m.keys = append(m.keys, "")
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = key
	}
	m.values[key] = value
}

func (m *memtable) delete(key string) bool {
	if _, exists := m.values[key]; !exists {
		return false
	}
	delete(m.values, key)
	i := sort.SearchStrings(m.keys, key)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	return true
}

// keysFrom returns a copy of all keys >= start in ascending order. The copy
// lets scans iterate without holding the engine lock.
func (m *memtable) keysFrom(start string) []string {
	i := sort.SearchStrings(m.keys, start)
	out := make([]string, len(m.keys)-i)
	copy(out, m.keys[i:])
	return out
}
