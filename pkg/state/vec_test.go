package state_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/state"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

func TestStateVecEmptyHasZeroLen(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateVec[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("vec"), codec.Uint64ValueCodec{})

	n, err := v.Len(ctx, a)
	require.NoError(t, err)
	require.Equal(t, uint64(0), n)
}

func TestStateVecPushGetPop(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateVec[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("vec"), codec.Uint64ValueCodec{})

	require.NoError(t, v.Push(ctx, a, 10))
	require.NoError(t, v.Push(ctx, a, 20))
	require.NoError(t, v.Push(ctx, a, 30))

	n, err := v.Len(ctx, a)
	require.NoError(t, err)
	require.Equal(t, uint64(3), n)

	got, found, err := v.Get(ctx, a, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(20), got)

	popped, found, err := v.Pop(ctx, a)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(30), popped)

	n, err = v.Len(ctx, a)
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	_, found, err = v.Get(ctx, a, 2)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStateVecPopEmptyReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateVec[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("vec"), codec.Uint64ValueCodec{})

	_, found, err := v.Pop(ctx, a)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStateVecSetOutOfBoundsFails(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateVec[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("vec"), codec.Uint64ValueCodec{})
	require.NoError(t, v.Push(ctx, a, 1))

	err := v.Set(ctx, a, 5, 99)
	require.Error(t, err)
	var oob *types.IndexOutOfBoundsError
	require.ErrorAs(t, err, &oob)
}

func TestStateVecSetInBoundsOverwrites(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewStateVec[state.UserNamespace, uint64, codec.Uint64ValueCodec]([]byte("vec"), codec.Uint64ValueCodec{})
	require.NoError(t, v.Push(ctx, a, 1))
	require.NoError(t, v.Push(ctx, a, 2))

	require.NoError(t, v.Set(ctx, a, 0, 100))
	got, found, err := v.Get(ctx, a, 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(100), got)
}
