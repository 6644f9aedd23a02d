package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, []byte("b"), []byte("2")))
	require.NoError(t, m.Put(ctx, []byte("a"), []byte("1")))
	require.ErrorIs(t, m.Put(ctx, nil, []byte("x")), ErrEmptyKey)

	v, ok, err := m.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)

	pairs := collect(t, m, nil)
	require.Len(t, pairs, 2)
	require.Equal(t, "a", string(pairs[0].Key))
	require.Equal(t, "b", string(pairs[1].Key))

	require.NoError(t, m.Delete(ctx, []byte("a")))
	_, ok, err = m.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Close())
	require.ErrorIs(t, m.Put(ctx, []byte("a"), []byte("1")), ErrClosed)
}
