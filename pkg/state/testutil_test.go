package state_test

import (
	"testing"

	"github.com/dubhe-sub002/rollup-state/pkg/cache"
	"github.com/dubhe-sub002/rollup-state/pkg/gas"
	"github.com/dubhe-sub002/rollup-state/pkg/jmtcore"
	"github.com/dubhe-sub002/rollup-state/pkg/kv/kvtest"
)

// newTestAccessor builds a *cache.WorkingSet backed by a fresh in-memory
// Delta, with a large gas budget so tests can focus on container
// semantics rather than metering.
func newTestAccessor(t *testing.T) *cache.WorkingSet {
	t.Helper()
	backend := kvtest.NewMemStore([]string{"user-nodes", "kernel-nodes", "accessory"})
	userTree := jmtcore.NewTree(jmtcore.NewNodeStore(backend, "user-nodes"))
	kernelTree := jmtcore.NewTree(jmtcore.NewNodeStore(backend, "kernel-nodes"))
	accessory := cache.NewAccessoryStore(backend, "accessory")
	delta := cache.NewDelta(1, userTree, kernelTree, jmtcore.EmptyRoot, jmtcore.EmptyRoot, accessory)
	sp := cache.NewTxScratchpad(delta)
	meter := gas.NewTransactionMeter(gas.Vector{1}, 1_000_000)
	return cache.NewWorkingSet(sp, meter, cache.DefaultGasSchedule(1))
}
