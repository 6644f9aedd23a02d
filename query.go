package slate

import (
	"context"
	"strings"

	"github.com/zzstoatzz/slate/engine"
)

// scanFloor is where scans over the whole keyspace begin. An empty start key
// already means "from the very beginning" under the engine contract, but
// using a minimal non-empty key keeps the intent explicit.
const scanFloor = "\x00"

// scanPrefix is the fast query path: a forward scan from the prefix that
// stops at the first key no longer carrying it. Keys are sorted, so once the
// prefix stops matching no later key can match; stopping there is a
// correctness property, not just an optimization. A limit <= 0 means
// unlimited.
func scanPrefix[T any](ctx context.Context, kv engine.KV, prefix string, limit int, decode func(key string, value []byte) (T, error)) ([]T, error) {
	if prefix == "" {
		// An empty match prefix never terminates early; serve it as a
		// bounded full scan instead.
		return nil, invalidInput("prefix must not be empty for a prefix scan")
	}

	var out []T
	for p, err := range kv.Scan(ctx, []byte(prefix)) {
		if err != nil {
			return nil, err
		}
		key := string(p.Key)
		if !strings.HasPrefix(key, prefix) {
			break
		}
		v, err := decode(key, p.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// scanFilter is the fallback for selectors the key encoding cannot express:
// scan at most window records from the start of the keyspace and keep those
// matching pred. Matches beyond the window are silently missed. A nil pred
// keeps everything; a limit <= 0 means unlimited.
func scanFilter[T any](ctx context.Context, kv engine.KV, window, limit int, decode func(key string, value []byte) (T, error), pred func(T) bool) ([]T, error) {
	var out []T
	scanned := 0
	for p, err := range kv.Scan(ctx, []byte(scanFloor)) {
		if err != nil {
			return nil, err
		}
		if scanned >= window {
			break
		}
		scanned++

		v, err := decode(string(p.Key), p.Value)
		if err != nil {
			return nil, err
		}
		if pred != nil && !pred(v) {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
