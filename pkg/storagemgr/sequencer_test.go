package storagemgr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dubhe-sub002/rollup-state/pkg/gas"
	"github.com/dubhe-sub002/rollup-state/pkg/storagemgr"
)

func TestStakeRegistryAuthorizeBudgetsAgainstStake(t *testing.T) {
	ctx := context.Background()
	ws := newTestAccessor(t)
	registry := storagemgr.NewStakeRegistry([]byte("stakes/"))

	require.NoError(t, registry.CreditStake(ctx, ws, "seq1", 500))

	meter, err := registry.AuthorizeSequencer(ctx, ws, "seq1", gas.Vector{1})
	require.NoError(t, err)
	require.Equal(t, uint64(500), meter.Remaining())
}

func TestStakeRegistryPenalizeWritesRemainingStakeBack(t *testing.T) {
	ctx := context.Background()
	ws := newTestAccessor(t)
	registry := storagemgr.NewStakeRegistry([]byte("stakes/"))

	require.NoError(t, registry.CreditStake(ctx, ws, "seq1", 500))
	meter, err := registry.AuthorizeSequencer(ctx, ws, "seq1", gas.Vector{1})
	require.NoError(t, err)
	require.NoError(t, meter.ChargeGas(gas.Vector{1}))

	require.NoError(t, registry.PenalizeSequencer(ctx, ws, "seq1", meter))

	newMeter, err := registry.AuthorizeSequencer(ctx, ws, "seq1", gas.Vector{1})
	require.NoError(t, err)
	require.Equal(t, uint64(499), newMeter.Remaining())
}

func TestStakeRegistryRefundIsNoOp(t *testing.T) {
	ctx := context.Background()
	ws := newTestAccessor(t)
	registry := storagemgr.NewStakeRegistry([]byte("stakes/"))

	require.NoError(t, registry.CreditStake(ctx, ws, "seq1", 500))
	meter, err := registry.AuthorizeSequencer(ctx, ws, "seq1", gas.Vector{1})
	require.NoError(t, err)

	require.NoError(t, registry.RefundSequencer(ctx, ws, "seq1", meter))

	again, err := registry.AuthorizeSequencer(ctx, ws, "seq1", gas.Vector{1})
	require.NoError(t, err)
	require.Equal(t, uint64(500), again.Remaining())
}
