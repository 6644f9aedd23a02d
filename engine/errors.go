package engine

import "errors"

var (
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine: closed")

	// ErrEmptyKey is returned when a mutation uses an empty key.
	ErrEmptyKey = errors.New("engine: key must not be empty")

	// ErrCorruptCheckpoint is returned when a checkpoint file fails its
	// integrity checks during recovery.
	ErrCorruptCheckpoint = errors.New("engine: corrupt checkpoint")

	// ErrNoMirror is returned when a mirror operation is requested but no
	// blob store was configured.
	ErrNoMirror = errors.New("engine: no mirror configured")
)
