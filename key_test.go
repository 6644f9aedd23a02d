package slate

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventKeyLayout(t *testing.T) {
	ts := time.Date(2026, 8, 24, 12, 34, 56, 789000, time.UTC)
	key, err := EventKey("auth-service", ts, "login")
	require.NoError(t, err)
	require.Equal(t, "auth-service:2026-08-24T12:34:56.000789Z:login", key)
}

func TestEventKeyRejectsSeparator(t *testing.T) {
	ts := time.Now()

	_, err := EventKey("bad:service", ts, "login")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = EventKey("svc", ts, "bad:kind")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = EventKey("", ts, "login")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = EventKey("svc", ts, "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestEventKeyChronologicalOrder(t *testing.T) {
	// Byte order of keys must equal chronological order for a fixed
	// service, including across month/day boundaries and sub-millisecond
	// differences.
	times := []time.Time{
		time.Date(2026, 1, 31, 23, 59, 59, 999999000, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 1000, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 2000, time.UTC),
		time.Date(2026, 11, 5, 8, 0, 0, 0, time.UTC),
	}

	var keys []string
	for _, ts := range times {
		k, err := EventKey("svc", ts, "tick")
		require.NoError(t, err)
		keys = append(keys, k)
	}

	require.True(t, sort.StringsAreSorted(keys), "keys out of order: %v", keys)
}

func TestParseEventKey(t *testing.T) {
	ts := time.Date(2026, 8, 24, 12, 34, 56, 789000, time.UTC)
	key, err := EventKey("svc-a", ts, "login")
	require.NoError(t, err)

	service, parsed, kind, err := ParseEventKey(key)
	require.NoError(t, err)
	require.Equal(t, "svc-a", service)
	require.Equal(t, "login", kind)
	require.True(t, ts.Equal(parsed))
}

func TestParseEventKeyMalformed(t *testing.T) {
	for _, key := range []string{
		"",
		"no-separators",
		"svc:login",
		"svc:not-a-timestamp:login",
	} {
		_, _, _, err := ParseEventKey(key)
		require.ErrorIs(t, err, ErrInvalidInput, "key %q", key)
	}
}

func TestEventPrefix(t *testing.T) {
	require.Equal(t, "svc-a:", EventPrefix("svc-a"))
}
