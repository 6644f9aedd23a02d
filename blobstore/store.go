// Package blobstore abstracts object storage for engine checkpoint mirroring.
//
// Checkpoints are immutable blobs written once and read whole, so the
// interface is deliberately coarse: Put/Get/Delete/List plus a CommitStore
// that tracks which checkpoint is current. Implementations exist for the
// local filesystem, memory (tests), MinIO, and S3 (with a DynamoDB-backed
// commit pointer for safe concurrent writers).
package blobstore

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrConcurrentCommit is returned when a commit loses a race against another
// writer advancing the current-checkpoint pointer.
var ErrConcurrentCommit = errors.New("concurrent checkpoint commit detected")

// BlobStore stores immutable checkpoint blobs by name.
type BlobStore interface {
	// Put writes a blob atomically, overwriting any existing blob of the
	// same name.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a whole blob. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, sorted ascending.
	List(ctx context.Context, prefix string) ([]string, error)
}

// CommitStore tracks the current checkpoint blob name.
//
// Commit must be atomic with respect to concurrent committers: when two
// writers race, exactly one wins and the other receives ErrConcurrentCommit.
type CommitStore interface {
	// Commit atomically advances the current pointer to name.
	Commit(ctx context.Context, name string) error

	// Current returns the most recently committed name.
	// Returns ErrNotFound if nothing has been committed yet.
	Current(ctx context.Context) (string, error)
}
