package state_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/state"
)

func TestStateMapGetSetRemove(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	m := state.NewStateMap[state.UserNamespace, uint64, string, codec.Codec[uint64, string]](
		[]byte("balances"),
		struct {
			codec.Uint64KeyCodec
			codec.JSONValueCodec[string]
		}{},
	)

	_, found, err := m.Get(ctx, a, 1)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, m.Set(a, 1, "alice"))
	got, found, err := m.Get(ctx, a, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "alice", got)

	removed, found, err := m.Remove(ctx, a, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "alice", removed)

	_, found, err = m.Get(ctx, a, 1)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStateMapDistinctKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	c := struct {
		codec.Uint64KeyCodec
		codec.JSONValueCodec[string]
	}{}
	m := state.NewStateMap[state.UserNamespace, uint64, string, codec.Codec[uint64, string]]([]byte("m"), c)

	require.NoError(t, m.Set(a, 1, "one"))
	require.NoError(t, m.Set(a, 2, "two"))

	v1, _, err := m.Get(ctx, a, 1)
	require.NoError(t, err)
	v2, _, err := m.Get(ctx, a, 2)
	require.NoError(t, err)
	require.Equal(t, "one", v1)
	require.Equal(t, "two", v2)
}
