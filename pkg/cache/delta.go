package cache

import (
	"context"
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/jmtcore"
	"github.com/dubhe-sub002/rollup-state/pkg/log"
	"github.com/dubhe-sub002/rollup-state/pkg/metrics"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
	"github.com/dubhe-sub002/rollup-state/pkg/witness"
)

// Layer is the read/write primitive every cache level in the
// hierarchy implements, so a TxScratchpad can be built over a Delta or
// over another TxScratchpad without caring which.
type Layer interface {
	Get(ctx context.Context, ns types.Namespace, key []byte) ([]byte, bool, error)
	Set(ns types.Namespace, key, value []byte)
	Delete(ns types.Namespace, key []byte)
}

// Delta is the base layer of the cache hierarchy: one per slot. It
// owns the slot's pre-state roots for the provable namespaces, a
// versioned accessory store, and a witness.Recorder that the JMT
// engine's proofs flow into as a side effect of servicing misses.
type Delta struct {
	version uint64

	userTree   *jmtcore.Tree
	kernelTree *jmtcore.Tree
	userRoot   types.Hash
	kernelRoot types.Hash

	accessory *AccessoryStore

	userCache      *nsCache
	kernelCache    *nsCache
	accessoryCache *nsCache

	recorder *witness.Recorder
}

// NewDelta opens a slot's base cache layer against the given pre-state
// roots and version. The Recorder begins capturing a witness
// immediately: its pre-roots are set for both provable namespaces.
func NewDelta(version uint64, userTree, kernelTree *jmtcore.Tree, userRoot, kernelRoot types.Hash, accessory *AccessoryStore) *Delta {
	rec := witness.NewRecorder()
	rec.SetPreRoot(types.User, userRoot)
	rec.SetPreRoot(types.Kernel, kernelRoot)
	return &Delta{
		version:        version,
		userTree:       userTree,
		kernelTree:     kernelTree,
		userRoot:       userRoot,
		kernelRoot:     kernelRoot,
		accessory:      accessory,
		userCache:      newNSCache(),
		kernelCache:    newNSCache(),
		accessoryCache: newNSCache(),
		recorder:       rec,
	}
}

func (d *Delta) cacheFor(ns types.Namespace) *nsCache {
	switch ns {
	case types.Kernel:
		return d.kernelCache
	case types.Accessory:
		return d.accessoryCache
	default:
		return d.userCache
	}
}

func (d *Delta) treeFor(ns types.Namespace) (*jmtcore.Tree, types.Hash) {
	if ns == types.Kernel {
		return d.kernelTree, d.kernelRoot
	}
	return d.userTree, d.userRoot
}

// Get services a read: a hit returns the cached value; a miss queries
// the underlying storage, captures a witness hint (for provable
// namespaces only — accessory reads bypass witness capture per §4.3),
// and memoizes the result.
func (d *Delta) Get(ctx context.Context, ns types.Namespace, key []byte) ([]byte, bool, error) {
	nc := d.cacheFor(ns)
	if e, ok := nc.peek(key); ok {
		metrics.CacheHitsTotal.WithLabelValues("delta", ns.String()).Inc()
		return e.value, e.found, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("delta", ns.String()).Inc()

	missLogger := log.WithSlot(log.WithNamespace(log.WithComponent("cache"), ns.String()), d.version)

	if ns == types.Accessory {
		value, found, err := d.accessory.Get(ctx, key, d.version)
		if err != nil {
			return nil, false, &types.StateAccessError{Namespace: ns, Key: key, Err: err}
		}
		nc.memoize(key, value, found)
		missLogger.Debug().Bool("found", found).Msg("delta miss serviced")
		return value, found, nil
	}

	tree, root := d.treeFor(ns)
	proof, err := tree.GenerateProof(ctx, root, key)
	if err != nil {
		return nil, false, &types.StateAccessError{Namespace: ns, Key: key, Err: err}
	}
	d.recorder.RecordRead(ns, proof.KeyHash, proof)

	var value []byte
	found := proof.Leaf != nil
	if found {
		value = proof.Leaf.Value
	}
	nc.memoize(key, value, found)
	missLogger.Debug().Bool("found", found).Msg("delta miss serviced")
	return value, found, nil
}

// Set buffers a write without touching storage.
func (d *Delta) Set(ns types.Namespace, key, value []byte) {
	d.cacheFor(ns).set(key, value)
}

// Delete buffers a deletion without touching storage.
func (d *Delta) Delete(ns types.Namespace, key []byte) {
	d.cacheFor(ns).delete(key)
}

// FinishNamespace applies ns's buffered writes to its JMT (a no-op for
// Accessory, which the storage manager flushes separately via
// AccessoryWrites), in the order they were first written, and records
// the namespace's end-of-slot update hint. It must be called exactly
// once per provable namespace per slot.
func (d *Delta) FinishNamespace(ctx context.Context, ns types.Namespace) (types.Hash, error) {
	if !ns.Provable() {
		return types.Hash{}, fmt.Errorf("cache: FinishNamespace called on non-provable namespace %s", ns)
	}
	tree, root := d.treeFor(ns)
	dirty := d.cacheFor(ns).dirtyInOrder()

	writes := make([]jmtcore.Write, 0, len(dirty))
	for _, ke := range dirty {
		w := jmtcore.Write{Key: ke.key}
		if ke.entry.found {
			w.Value = ke.entry.value
		}
		writes = append(writes, w)
	}

	metrics.JMTBatchSize.WithLabelValues(ns.String()).Observe(float64(len(writes)))
	timer := metrics.NewTimer()
	newRoot, proofs, err := tree.UpdateBatch(ctx, root, writes)
	timer.ObserveDurationVec(metrics.JMTUpdateDuration, ns.String())
	if err != nil {
		return types.Hash{}, fmt.Errorf("cache: finishing namespace %s: %w", ns, err)
	}
	d.recorder.RecordUpdate(ns, proofs, newRoot)
	if ns == types.Kernel {
		d.kernelRoot = newRoot
	} else {
		d.userRoot = newRoot
	}
	return newRoot, nil
}

// AccessoryWrites returns Accessory's buffered dirty writes, in
// first-write order, for the storage manager to flush directly to the
// accessory store at slot commit.
func (d *Delta) AccessoryWrites() []keyedEntry {
	return d.accessoryCache.dirtyInOrder()
}

// Witness freezes and returns the slot's witness. Call once, after
// every provable namespace has been finished.
func (d *Delta) Witness() *witness.Witness {
	return d.recorder.Finish()
}

// Version returns the slot version this delta was opened against.
func (d *Delta) Version() uint64 { return d.version }

// UserRoot and KernelRoot expose the delta's current roots: the
// pre-state roots until FinishNamespace is called, the post-state
// roots after.
func (d *Delta) UserRoot() types.Hash   { return d.userRoot }
func (d *Delta) KernelRoot() types.Hash { return d.kernelRoot }

// VisibleHash is the 32-byte hash exposed to user modules: the user
// root alone (§3).
func (d *Delta) VisibleHash() types.Hash { return d.userRoot }

// GlobalRoot is the hash of (user-root ‖ kernel-root) (§3).
func GlobalRoot(userRoot, kernelRoot types.Hash) types.Hash {
	h := jmtcore.NewHasher()
	h.Write(userRoot[:])
	h.Write(kernelRoot[:])
	return h.Sum32()
}
