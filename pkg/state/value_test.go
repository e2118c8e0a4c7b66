package state_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/state"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

func TestStateValueGetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateValue[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("counter"), codec.Uint64ValueCodec{})

	_, found, err := v.Get(ctx, a)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStateValueSetThenGetRoundTrips(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateValue[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("counter"), codec.Uint64ValueCodec{})

	require.NoError(t, v.Set(a, 42))
	got, found, err := v.Get(ctx, a)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(42), got)
}

func TestStateValueGetOrErrOnMissingFails(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateValue[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("counter"), codec.Uint64ValueCodec{})

	_, err := v.GetOrErr(ctx, a)
	require.Error(t, err)
	var mv *types.MissingValueError
	require.ErrorAs(t, err, &mv)
}

func TestStateValueDeleteRemovesValue(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateValue[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("counter"), codec.Uint64ValueCodec{})

	require.NoError(t, v.Set(a, 1))
	require.NoError(t, v.Delete(a))

	_, found, err := v.Get(ctx, a)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDistinctPrefixesDoNotAlias(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v1 := state.NewStateValue[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("a"), codec.Uint64ValueCodec{})
	v2 := state.NewStateValue[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("b"), codec.Uint64ValueCodec{})

	require.NoError(t, v1.Set(a, 1))
	require.NoError(t, v2.Set(a, 2))

	got1, _, err := v1.Get(ctx, a)
	require.NoError(t, err)
	got2, _, err := v2.Get(ctx, a)
	require.NoError(t, err)
	require.Equal(t, uint64(1), got1)
	require.Equal(t, uint64(2), got2)
}
