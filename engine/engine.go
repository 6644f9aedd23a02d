// Package engine implements the ordered key-value engine underneath slate.
//
// The engine keeps the full keyspace in a sorted in-memory table. Durability
// comes from a write-ahead log: every mutation is logged before it is
// applied, and periodic checkpoints fold the log into a compressed snapshot
// file so recovery stays cheap. Checkpoints can additionally be mirrored to
// object storage with an atomically advanced commit pointer.
//
// Keys are opaque byte strings. Scans iterate in ascending lexicographic
// byte order, which is the property the slate key schema builds on.
package engine

import (
	"context"
	"iter"
)

// Pair is a single key-value entry yielded by a scan.
type Pair struct {
	Key   []byte
	Value []byte
}

// KV is the contract the slate facades program against. *DB is the durable
// implementation; Memory is an ephemeral one for tests and throwaway use.
type KV interface {
	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key, value []byte) error

	// Get returns the value stored under key. The second return is false
	// when the key is absent.
	Get(ctx context.Context, key []byte) ([]byte, bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Scan yields entries with key >= start in ascending key order until
	// the keyspace is exhausted or the consumer stops. The yielded slices
	// are owned by the consumer.
	Scan(ctx context.Context, start []byte) iter.Seq2[Pair, error]

	// Close releases resources. Further calls fail with ErrClosed.
	Close() error
}
