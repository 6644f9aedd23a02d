package slate

import (
	"context"
	"fmt"
	"time"

	"github.com/zzstoatzz/slate/engine"
	"github.com/zzstoatzz/slate/internal/keylock"
)

// MemoryStore is the tagged-memory surface: opaque caller-supplied keys,
// arbitrary structured values, and upsert semantics that preserve the
// original created_at. It exclusively owns its engine handle.
//
// The engine offers no atomic read-modify-write, so the read-then-write in
// Store and the existence check in Delete are serialized per key through a
// striped lock. Without it two concurrent upserts could both read the same
// prior state and one could resurrect a deleted created_at.
type MemoryStore struct {
	kv    engine.KV
	opts  options
	locks *keylock.Map
}

// NewMemoryStore wraps an engine handle in the memory-store surface. The
// store takes ownership of kv and closes it on Close.
func NewMemoryStore(kv engine.KV, optFns ...Option) *MemoryStore {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return &MemoryStore{kv: kv, opts: o, locks: keylock.New()}
}

// Store upserts an entry. A first write sets created_at; subsequent writes
// to the same key carry the original created_at forward and replace
// everything else, refreshing updated_at. The stored entry is returned.
func (s *MemoryStore) Store(ctx context.Context, key string, value any, metadata map[string]any) (entry *Entry, err error) {
	start := time.Now()
	created := false
	defer func() {
		s.opts.metricsCollector.RecordStore(time.Since(start), err)
		s.opts.logger.LogStore(ctx, key, created, err)
	}()

	if key == "" {
		return nil, invalidInput("key must not be empty")
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	raw, ok, err := s.kv.Get(ctx, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("read existing entry: %w", err)
	}

	now := FormatEventTime(s.opts.clock())
	createdAt := now
	if ok {
		prev, err := decodeEntry(s.opts.codec, key, raw)
		if err != nil {
			return nil, err
		}
		createdAt = prev.CreatedAt
	} else {
		created = true
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	entry = &Entry{
		Key:       key,
		Value:     value,
		Metadata:  metadata,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}

	data, err := s.opts.codec.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	if err = s.kv.Put(ctx, []byte(key), data); err != nil {
		return nil, fmt.Errorf("write entry: %w", err)
	}
	return entry, nil
}

// Retrieve returns the entry stored under key, or ErrNotFound.
func (s *MemoryStore) Retrieve(ctx context.Context, key string) (entry *Entry, err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordRetrieve(time.Since(start), err)
		s.opts.logger.LogRetrieve(ctx, key, entry != nil, err)
	}()

	raw, ok, err := s.kv.Get(ctx, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	return decodeEntry(s.opts.codec, key, raw)
}

// Delete removes the entry under key and reports whether one existed. The
// engine's delete does not report prior existence, so a read runs first; the
// per-key lock keeps the pair coherent under concurrent writers.
func (s *MemoryStore) Delete(ctx context.Context, key string) (existed bool, err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordDelete(time.Since(start), err)
		s.opts.logger.LogDelete(ctx, key, existed, err)
	}()

	if key == "" {
		return false, invalidInput("key must not be empty")
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	_, ok, err := s.kv.Get(ctx, []byte(key))
	if err != nil {
		return false, fmt.Errorf("check existing entry: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err = s.kv.Delete(ctx, []byte(key)); err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	return true, nil
}

// Search returns entries whose key starts with prefix, in key order, at most
// limit (<= 0 for unlimited). An empty prefix degrades to a bounded-window
// full scan: it cannot prune by key, so it sees at most the configured scan
// window.
func (s *MemoryStore) Search(ctx context.Context, prefix string, limit int) (entries []*Entry, err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordScan(len(entries), time.Since(start), err)
		s.opts.logger.LogScan(ctx, prefix, len(entries), err)
	}()

	decode := func(key string, value []byte) (*Entry, error) {
		return decodeEntry(s.opts.codec, key, value)
	}
	if prefix == "" {
		return scanFilter(ctx, s.kv, s.opts.scanWindow, limit, decode, nil)
	}
	return scanPrefix(ctx, s.kv, prefix, limit, decode)
}

// Keys returns stored keys matching prefix without decoding the values.
func (s *MemoryStore) Keys(ctx context.Context, prefix string, limit int) (keys []string, err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordScan(len(keys), time.Since(start), err)
		s.opts.logger.LogScan(ctx, prefix, len(keys), err)
	}()

	decode := func(key string, _ []byte) (string, error) { return key, nil }
	if prefix == "" {
		return scanFilter(ctx, s.kv, s.opts.scanWindow, limit, decode, nil)
	}
	return scanPrefix(ctx, s.kv, prefix, limit, decode)
}

// Close releases the underlying engine handle.
func (s *MemoryStore) Close() error {
	return s.kv.Close()
}
