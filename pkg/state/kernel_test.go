package state_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/state"
)

func TestVersionedStateValueTrueVsVisibleSlot(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewVersionedStateValue[string, codec.JSONValueCodec[string]]([]byte("chain-param"), codec.JSONValueCodec[string]{})

	// Kernel writes at true slot 10, but the visible slot is still 5:
	// user-space reads must not see the new write yet.
	ws := state.NewKernelWorkingSet(a, 10, 5)
	require.NoError(t, v.SetTrue(ws, "v10"))

	_, found, err := v.GetVisible(ctx, ws)
	require.NoError(t, err)
	require.False(t, found)

	direct, found, err := v.GetVersion(ctx, ws, 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v10", direct)
}

func TestVersionedStateValueVisibleSlotSeesEarlierWrite(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewVersionedStateValue[string, codec.JSONValueCodec[string]]([]byte("chain-param"), codec.JSONValueCodec[string]{})

	ws := state.NewKernelWorkingSet(a, 5, 5)
	require.NoError(t, v.SetTrue(ws, "v5"))

	got, found, err := v.GetVisible(ctx, ws)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v5", got)
}

func TestVersionedStateValueMonotoneAcrossAdvancingVisibleSlot(t *testing.T) {
	ctx := context.Background()
	a := newTestAccessor(t)
	v := state.NewVersionedStateValue[string, codec.JSONValueCodec[string]]([]byte("chain-param"), codec.JSONValueCodec[string]{})

	wsAt5 := state.NewKernelWorkingSet(a, 5, 5)
	require.NoError(t, v.SetTrue(wsAt5, "v5"))

	// Advancing the visible slot past 5 must not make v5's entry
	// disappear: a direct read of slot 5 through a working set whose
	// visible slot is now 7 must still succeed.
	wsAt7 := state.NewKernelWorkingSet(a, 7, 7)
	got, found, err := v.GetVersion(ctx, wsAt7, 5)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v5", got)
}
