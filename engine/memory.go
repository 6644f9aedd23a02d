package engine

import (
	"bytes"
	"context"
	"iter"
	"sync"
)

// Memory is an ephemeral KV backed only by a memtable. It is useful for
// tests and for callers that want slate semantics without persistence.
type Memory struct {
	mu     sync.RWMutex
	mem    *memtable
	closed bool
}

var _ KV = (*Memory)(nil)

// NewMemory creates an empty in-memory engine.
func NewMemory() *Memory {
	return &Memory{mem: newMemtable()}
}

func (m *Memory) Put(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.mem.put(string(key), bytes.Clone(value))
	return nil
}

func (m *Memory) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.mem.get(string(key))
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (m *Memory) Delete(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.mem.delete(string(key))
	return nil
}

func (m *Memory) Scan(ctx context.Context, start []byte) iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		m.mu.RLock()
		if m.closed {
			m.mu.RUnlock()
			yield(Pair{}, ErrClosed)
			return
		}
		keys := m.mem.keysFrom(string(start))
		m.mu.RUnlock()

		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				yield(Pair{}, err)
				return
			}

			m.mu.RLock()
			v, ok := m.mem.get(k)
			if ok {
				v = bytes.Clone(v)
			}
			m.mu.RUnlock()

			if !ok {
				continue
			}
			if !yield(Pair{Key: []byte(k), Value: v}, nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}
