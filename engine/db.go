package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zzstoatzz/slate/internal/wal"
)

const (
	walFileName        = "wal.log"
	checkpointFileName = "checkpoint.snp"
)

// DB is the durable KV implementation. One DB owns one directory containing
// a checkpoint file and a write-ahead log; the live keyspace is held in a
// sorted in-memory table.
type DB struct {
	mu   sync.RWMutex
	opts options
	dir  string
	wal  *wal.WAL
	mem  *memtable

	lsn    uint64
	dirty  int // mutations since the last checkpoint
	closed bool
}

var _ KV = (*DB)(nil)

// Open opens or creates an engine in dir, replaying the write-ahead log on
// top of the most recent checkpoint. A torn WAL tail (partial record after a
// crash) is detected, logged, and folded away by an immediate checkpoint.
func Open(dir string, optFns ...Option) (*DB, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	if err := o.fs.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create engine dir: %w", err)
	}

	mem := newMemtable()
	cpPath := filepath.Join(dir, checkpointFileName)
	data, err := o.fs.ReadFile(cpPath)
	switch {
	case err == nil:
		mem, err = decodeSnapshot(data)
		if err != nil {
			return nil, err
		}
		o.logger.Info("checkpoint loaded", "path", cpPath, "entries", mem.len())
	case errors.Is(err, os.ErrNotExist):
		// Fresh engine.
	default:
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	w, err := wal.Open(o.fs, filepath.Join(dir, walFileName), wal.Options{Durability: o.durability})
	if err != nil {
		return nil, fmt.Errorf("open WAL: %w", err)
	}

	d := &DB{
		opts: o,
		dir:  dir,
		wal:  w,
		mem:  mem,
	}

	tornTail, replayed, err := d.replayWAL()
	if err != nil {
		w.Close()
		return nil, err
	}
	if replayed > 0 || tornTail {
		o.logger.Info("WAL recovery completed", "entries_replayed", replayed, "torn_tail", tornTail)
	}
	if tornTail {
		// Fold the replayed state into a checkpoint so the damaged log
		// bytes are discarded rather than appended after.
		if _, _, err := d.checkpointLocked(); err != nil {
			w.Close()
			return nil, fmt.Errorf("checkpoint after torn WAL tail: %w", err)
		}
	}

	return d, nil
}

// replayWAL applies logged mutations to the memtable. It returns whether the
// log ended in a torn or corrupt record and how many records were applied.
func (d *DB) replayWAL() (bool, int, error) {
	r, err := d.wal.Reader()
	if err != nil {
		return false, 0, fmt.Errorf("open WAL reader: %w", err)
	}
	defer r.Close()

	replayed := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return false, replayed, nil
		}
		if err != nil {
			// Anything short of a clean EOF is treated as a crash
			// artifact: replay stops at the last valid record.
			d.opts.logger.Warn("WAL replay stopped at damaged record",
				"offset", r.Offset(),
				"entries_replayed", replayed,
				"error", err,
			)
			return true, replayed, nil
		}

		switch rec.Type {
		case wal.RecordTypePut:
			d.mem.put(string(rec.Key), rec.Value)
		case wal.RecordTypeDelete:
			d.mem.delete(string(rec.Key))
		}
		if rec.LSN > d.lsn {
			d.lsn = rec.LSN
		}
		replayed++
		d.dirty++
	}
}

// Put stores value under key.
func (d *DB) Put(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}

	d.lsn++
	rec := &wal.Record{LSN: d.lsn, Type: wal.RecordTypePut, Key: key, Value: value}
	if err := d.wal.Append(rec); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("append to WAL: %w", err)
	}

	d.mem.put(string(key), bytes.Clone(value))
	d.dirty++
	snap, name := d.maybeCheckpointLocked()
	d.mu.Unlock()

	d.mirrorBestEffort(ctx, name, snap)
	return nil
}

// Get returns the value stored under key.
func (d *DB) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, false, ErrClosed
	}
	v, ok := d.mem.get(string(key))
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Delete removes key. Deleting an absent key is a no-op; the WAL record is
// still written so replay stays idempotent.
func (d *DB) Delete(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}

	d.lsn++
	rec := &wal.Record{LSN: d.lsn, Type: wal.RecordTypeDelete, Key: key}
	if err := d.wal.Append(rec); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("append to WAL: %w", err)
	}

	d.mem.delete(string(key))
	d.dirty++
	snap, name := d.maybeCheckpointLocked()
	d.mu.Unlock()

	d.mirrorBestEffort(ctx, name, snap)
	return nil
}

// Scan yields entries with key >= start in ascending key order. The key set
// is pinned when iteration begins; values are read live, so an entry deleted
// mid-scan is skipped rather than yielded stale.
func (d *DB) Scan(ctx context.Context, start []byte) iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		d.mu.RLock()
		if d.closed {
			d.mu.RUnlock()
			yield(Pair{}, ErrClosed)
			return
		}
		keys := d.mem.keysFrom(string(start))
		d.mu.RUnlock()

		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				yield(Pair{}, err)
				return
			}

			d.mu.RLock()
			v, ok := d.mem.get(k)
			if ok {
				v = bytes.Clone(v)
			}
			d.mu.RUnlock()

			if !ok {
				continue
			}
			if !yield(Pair{Key: []byte(k), Value: v}, nil) {
				return
			}
		}
	}
}

// Len returns the number of live keys.
func (d *DB) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mem.len()
}

// Checkpoint writes the current state to the checkpoint file, truncates the
// WAL, and mirrors the checkpoint if a mirror is configured.
func (d *DB) Checkpoint(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	snap, name, err := d.checkpointLocked()
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return d.mirror(ctx, name, snap)
}

// maybeCheckpointLocked runs an automatic checkpoint when enough mutations
// have accumulated. Failures are logged, not surfaced: the WAL still holds
// everything, so the write that triggered the checkpoint is not at risk.
func (d *DB) maybeCheckpointLocked() ([]byte, string) {
	if d.opts.checkpointEvery <= 0 || d.dirty < d.opts.checkpointEvery {
		return nil, ""
	}
	snap, name, err := d.checkpointLocked()
	if err != nil {
		d.opts.logger.Error("automatic checkpoint failed", "error", err)
		return nil, ""
	}
	return snap, name
}

func (d *DB) checkpointLocked() ([]byte, string, error) {
	path := filepath.Join(d.dir, checkpointFileName)
	snap, err := writeSnapshot(d.opts.fs, path, d.mem, d.opts.compression)
	if err != nil {
		return nil, "", fmt.Errorf("write checkpoint: %w", err)
	}
	if err := d.wal.Reset(); err != nil {
		return nil, "", fmt.Errorf("reset WAL: %w", err)
	}
	d.dirty = 0

	// Fixed-width nanosecond timestamps keep mirrored names sortable.
	name := fmt.Sprintf("checkpoint-%020d.snp", time.Now().UnixNano())
	d.opts.logger.Info("checkpoint written", "path", path, "entries", d.mem.len())
	return snap, name, nil
}

func (d *DB) mirrorBestEffort(ctx context.Context, name string, snap []byte) {
	if snap == nil {
		return
	}
	if err := d.mirror(ctx, name, snap); err != nil {
		d.opts.logger.Warn("checkpoint mirror failed", "checkpoint", name, "error", err)
	}
}

// mirror uploads a checkpoint copy to the configured blob store, prunes
// stale mirrored checkpoints, and advances the commit pointer. Upload and
// prune run concurrently; the pointer only moves after the upload landed.
func (d *DB) mirror(ctx context.Context, name string, snap []byte) error {
	if d.opts.mirror == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.opts.mirror.Put(gctx, name, snap)
	})
	g.Go(func() error {
		return d.pruneMirror(gctx, name)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if d.opts.mirrorCommits != nil {
		if err := d.opts.mirrorCommits.Commit(ctx, name); err != nil {
			return fmt.Errorf("advance commit pointer: %w", err)
		}
	}
	return nil
}

// pruneMirror deletes mirrored checkpoints beyond the retention count. The
// in-flight upload counts toward retention, so existing checkpoints keep
// mirrorKeep-1 slots.
func (d *DB) pruneMirror(ctx context.Context, inflight string) error {
	names, err := d.opts.mirror.List(ctx, "checkpoint-")
	if err != nil {
		return err
	}

	existing := names[:0]
	for _, n := range names {
		if n != inflight {
			existing = append(existing, n)
		}
	}

	keep := d.opts.mirrorKeep - 1
	if len(existing) <= keep {
		return nil
	}
	for _, n := range existing[:len(existing)-keep] {
		if err := d.opts.mirror.Delete(ctx, n); err != nil {
			return err
		}
		d.opts.logger.Debug("pruned mirrored checkpoint", "checkpoint", n)
	}
	return nil
}

// Close flushes and closes the WAL. The engine is unusable afterwards.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return d.wal.Close()
}
