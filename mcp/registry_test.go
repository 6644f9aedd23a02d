package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndExecute(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(Tool{Name: "echo"}, func(_ context.Context, args json.RawMessage) (Result, error) {
		return Result{Content: string(args)}, nil
	})
	require.NoError(t, err)

	// Duplicate names are rejected.
	err = reg.Register(Tool{Name: "echo"}, nil)
	require.ErrorIs(t, err, ErrToolAlreadyExists)

	// Empty names are rejected.
	err = reg.Register(Tool{}, nil)
	require.ErrorIs(t, err, ErrEmptyToolName)

	res, err := reg.Execute(context.Background(), "echo", json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	require.Equal(t, `{"x":1}`, res.Content)

	_, err = reg.Execute(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrToolNotFound)
}

func TestRegistryListSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Register(Tool{Name: name}, nil))
	}

	tools := reg.List()
	require.Len(t, tools, 3)
	require.Equal(t, "alpha", tools[0].Name)
	require.Equal(t, "mid", tools[1].Name)
	require.Equal(t, "zeta", tools[2].Name)
}

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Tool{Name: "t"}, func(context.Context, json.RawMessage) (Result, error) {
		return Result{}, nil
	}))

	h, ok := reg.Get("t")
	require.True(t, ok)
	require.NotNil(t, h)

	_, ok = reg.Get("nope")
	require.False(t, ok)
}
