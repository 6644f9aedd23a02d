package engine

import (
	"log/slog"

	"github.com/zzstoatzz/slate/blobstore"
	"github.com/zzstoatzz/slate/internal/fs"
	"github.com/zzstoatzz/slate/internal/wal"
)

type options struct {
	fs              fs.FileSystem
	logger          *slog.Logger
	durability      wal.Durability
	compression     CompressionType
	checkpointEvery int
	mirror          blobstore.BlobStore
	mirrorCommits   blobstore.CommitStore
	mirrorKeep      int
}

// Option configures an engine at Open time. Engine configuration is
// immutable after Open.
type Option func(*options)

func defaultOptions() options {
	return options{
		fs:              fs.Default,
		logger:          slog.Default(),
		durability:      wal.DurabilitySync,
		compression:     CompressionLZ4,
		checkpointEvery: 10_000,
		mirrorKeep:      3,
	}
}

// WithFS configures the filesystem the engine writes through. Mainly useful
// for fault injection in tests.
func WithFS(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithLogger configures structured logging. If nil is passed the process
// default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDurability configures WAL durability. DurabilitySync (default) fsyncs
// before acknowledging a write; DurabilityAsync trades crash safety for
// throughput.
func WithDurability(d wal.Durability) Option {
	return func(o *options) {
		o.durability = d
	}
}

// WithCompression configures checkpoint block compression.
func WithCompression(ct CompressionType) Option {
	return func(o *options) {
		o.compression = ct
	}
}

// WithCheckpointEvery configures how many mutations trigger an automatic
// checkpoint. Zero or negative disables automatic checkpoints; explicit
// Checkpoint calls still work.
func WithCheckpointEvery(n int) Option {
	return func(o *options) {
		o.checkpointEvery = n
	}
}

// WithMirror configures a blob store that receives a copy of every
// checkpoint. If commits is non-nil the mirror's current-checkpoint pointer
// is advanced through it after a successful upload.
func WithMirror(store blobstore.BlobStore, commits blobstore.CommitStore) Option {
	return func(o *options) {
		o.mirror = store
		o.mirrorCommits = commits
	}
}

// WithMirrorKeep configures how many mirrored checkpoints are retained.
// Older ones are pruned after each upload. Minimum is 1.
func WithMirrorKeep(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.mirrorKeep = n
		}
	}
}
