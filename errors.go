package slate

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key is absent from the engine. Absence
	// is an ordinary result, never conflated with corruption.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when caller-supplied input is rejected
	// before touching the engine (empty keys, separator characters inside
	// owner or kind values, malformed payloads at the CLI boundary).
	ErrInvalidInput = errors.New("invalid input")
)

// CorruptionError indicates a value exists at a key but fails to decode into
// the expected envelope shape. This is a distinct failure mode from
// ErrNotFound: the data is there, it just cannot be trusted.
//
// The original underlying error can be accessed via errors.Unwrap.
type CorruptionError struct {
	Key   string
	cause error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt record at key %q: %v", e.Key, e.cause)
}

func (e *CorruptionError) Unwrap() error { return e.cause }

func corrupt(key string, cause error) error {
	return &CorruptionError{Key: key, cause: cause}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
