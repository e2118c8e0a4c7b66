package storagemgr

import (
	"context"
	"fmt"
	"sync"

	"github.com/dubhe-sub002/rollup-state/pkg/cache"
	"github.com/dubhe-sub002/rollup-state/pkg/jmtcore"
	"github.com/dubhe-sub002/rollup-state/pkg/kv"
	"github.com/dubhe-sub002/rollup-state/pkg/log"
	"github.com/dubhe-sub002/rollup-state/pkg/metrics"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
	"github.com/dubhe-sub002/rollup-state/pkg/witness"
)

// ChangeSet is the frozen result of executing one DA block's slot: the
// roots it produced and the witness its execution recorded, staged
// under its header until Finalize commits it.
type ChangeSet struct {
	Header     BlockHeader
	Version    uint64
	UserRoot   types.Hash
	KernelRoot types.Hash
	Witness    *witness.Witness
}

// cacheContainerGroup bundles one in-flight block's user, kernel, and
// accessory caches (all already held together inside a single *cache.Delta)
// with the header metadata needed to walk fork ancestry. Dropping a
// losing fork's group — a single map delete — discards all three
// namespaces' uncommitted state atomically, since nothing outside this
// struct holds a reference to the Delta underneath it.
type cacheContainerGroup struct {
	header    BlockHeader
	delta     *cache.Delta
	changeSet *ChangeSet
}

// commitInfo is the durable fact a finalized header leaves behind: the
// roots it committed to, available for any later CreateStateFor that
// builds on top of it.
type commitInfo struct {
	header     BlockHeader
	version    uint64
	userRoot   types.Hash
	kernelRoot types.Hash
}

// StorageManager owns the canonical history of committed state and the
// fork-depth window of pending, unfinalized blocks that may still be
// discarded in favor of a sibling. User, kernel, and accessory state
// all live behind one manager so a block's multi-namespace commit is
// atomic by construction: there is exactly one lock, and exactly one
// place version bookkeeping happens.
type StorageManager struct {
	mu sync.RWMutex

	backend    kv.Store
	userTree   *jmtcore.Tree
	kernelTree *jmtcore.Tree
	accessory  *cache.AccessoryStore

	nextVersion uint64

	committed map[types.Hash]*commitInfo
	pending   map[types.Hash]*cacheContainerGroup

	finalizedTip types.Hash
	forkDepth    uint64
}

// GenesisHeader is the sentinel parent of the first real block: the
// all-zero hash, paired with the all-zero JMT roots.
var GenesisHeader = BlockHeader{}

// NewStorageManager opens a manager over backend's user/kernel node
// column families and accessory column family, seeding commit history
// at the empty genesis state. forkDepth is how many blocks behind the
// finalized tip Prunable still keeps out of its report; it does not
// limit how many blocks may be pending at once.
func NewStorageManager(backend kv.Store, userNodeCF, kernelNodeCF, accessoryCF kv.ColumnFamily, forkDepth uint64) *StorageManager {
	m := &StorageManager{
		backend:    backend,
		userTree:   jmtcore.NewTree(jmtcore.NewNodeStore(backend, userNodeCF)),
		kernelTree: jmtcore.NewTree(jmtcore.NewNodeStore(backend, kernelNodeCF)),
		accessory:  cache.NewAccessoryStore(backend, accessoryCF),
		committed:  make(map[types.Hash]*commitInfo),
		pending:    make(map[types.Hash]*cacheContainerGroup),
		forkDepth:  forkDepth,
	}
	m.committed[GenesisHeader.Hash] = &commitInfo{
		header:     GenesisHeader,
		version:    0,
		userRoot:   jmtcore.EmptyRoot,
		kernelRoot: jmtcore.EmptyRoot,
	}
	m.finalizedTip = GenesisHeader.Hash
	return m
}

func (m *StorageManager) parentState(parentHash types.Hash) (userRoot, kernelRoot types.Hash, ok bool) {
	if info, found := m.committed[parentHash]; found {
		return info.userRoot, info.kernelRoot, true
	}
	if group, found := m.pending[parentHash]; found {
		return group.delta.UserRoot(), group.delta.KernelRoot(), true
	}
	return types.Hash{}, types.Hash{}, false
}

// CreateStateFor opens a fresh per-block state handle rooted at
// header.ParentHash's state. It returns the same *cache.Delta twice,
// once as stfState (the provable namespaces a transaction executes
// against) and once as ledgerState (the accessory namespace an indexer
// writes through): both views share one cache container group per
// §4.7's "atomic multi-namespace commit," so there is no separate
// storage domain to keep in sync between them.
func (m *StorageManager) CreateStateFor(ctx context.Context, header BlockHeader) (stfState *cache.Delta, ledgerState *cache.Delta, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pending[header.Hash]; exists {
		return nil, nil, fmt.Errorf("storagemgr: state already created for header %x", header.Hash)
	}
	userRoot, kernelRoot, ok := m.parentState(header.ParentHash)
	if !ok {
		return nil, nil, fmt.Errorf("storagemgr: unknown parent header %x for block %x", header.ParentHash, header.Hash)
	}

	version := m.nextVersion + 1
	m.nextVersion = version

	delta := cache.NewDelta(version, m.userTree, m.kernelTree, userRoot, kernelRoot, m.accessory)
	m.pending[header.Hash] = &cacheContainerGroup{header: header, delta: delta}
	metrics.ForkDepth.Set(float64(len(m.pending)))
	log.WithSlot(log.WithComponent("storagemgr"), version).Debug().Uint64("height", header.Height).Msg("state created for header")
	return delta, delta, nil
}

// SaveChangeSet stages the roots and witness a block's execution
// produced without making them the canonical tip. Every provable
// namespace's FinishNamespace must already have been called on delta
// before this is invoked. Accessory writes are flushed to the backend
// immediately: they are keyed by this block's unique version number,
// so even a change set that is later discarded as a losing fork leaves
// behind only orphaned, unreachable versioned entries, never a
// collision with the winning fork's data.
func (m *StorageManager) SaveChangeSet(ctx context.Context, header BlockHeader, delta *cache.Delta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, ok := m.pending[header.Hash]
	if !ok || group.delta != delta {
		return fmt.Errorf("storagemgr: no state was created for header %x via this manager", header.Hash)
	}

	for _, w := range delta.AccessoryWrites() {
		if err := m.accessory.Put(ctx, w.Key(), delta.Version(), w.Value()); err != nil {
			return fmt.Errorf("storagemgr: flushing accessory writes for header %x: %w", header.Hash, err)
		}
	}

	group.changeSet = &ChangeSet{
		Header:     header,
		Version:    delta.Version(),
		UserRoot:   delta.UserRoot(),
		KernelRoot: delta.KernelRoot(),
		Witness:    delta.Witness(),
	}
	stageLogger := log.WithSlot(log.WithNamespace(log.WithComponent("storagemgr"), types.Accessory.String()), delta.Version())
	stageLogger.Debug().Uint64("height", header.Height).Msg("change set staged")
	return nil
}

// ancestryChain walks header back to the finalized tip via ParentHash,
// returning the chain in oldest-to-newest order. It fails if any
// ancestor along the way was never staged via SaveChangeSet.
func (m *StorageManager) ancestryChain(header BlockHeader) ([]*cacheContainerGroup, error) {
	var chain []*cacheContainerGroup
	hash := header.Hash
	for hash != m.finalizedTip {
		group, ok := m.pending[hash]
		if !ok {
			return nil, fmt.Errorf("storagemgr: header %x has no staged change set", hash)
		}
		if group.changeSet == nil {
			return nil, fmt.Errorf("storagemgr: header %x was never saved via SaveChangeSet", hash)
		}
		chain = append(chain, group)
		parent := group.header.ParentHash
		if parent == hash {
			return nil, fmt.Errorf("storagemgr: header %x is its own parent", hash)
		}
		hash = parent
	}
	// Reverse into oldest-to-newest order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Finalize commits every change set along header's canonical ancestry
// back to the current finalized tip, then discards every other pending
// fork whose height is at or below header's: finalization always
// picks exactly one ancestry and drops the rest, per §4.7.
func (m *StorageManager) Finalize(ctx context.Context, header BlockHeader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	finalizeTimer := metrics.NewTimer()
	defer finalizeTimer.ObserveDuration(metrics.FinalizeDuration)

	chain, err := m.ancestryChain(header)
	if err != nil {
		return err
	}

	commitTimer := metrics.NewTimer()
	for _, group := range chain {
		m.committed[group.header.Hash] = &commitInfo{
			header:     group.header,
			version:    group.changeSet.Version,
			userRoot:   group.changeSet.UserRoot,
			kernelRoot: group.changeSet.KernelRoot,
		}
		delete(m.pending, group.header.Hash)
	}
	m.finalizedTip = header.Hash
	commitTimer.ObserveDurationVec(metrics.CommitDuration, "all")

	for h, group := range m.pending {
		if group.header.Height <= header.Height {
			delete(m.pending, h)
		}
	}
	metrics.ForkDepth.Set(float64(len(m.pending)))

	log.WithSlot(log.WithComponent("storagemgr"), header.Height).Info().Int("committed", len(chain)).Msg("ancestry finalized")
	return nil
}

// FinalizedTip returns the header hash of the most recently finalized
// block.
func (m *StorageManager) FinalizedTip() types.Hash {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.finalizedTip
}

// RootsAt returns the committed user and kernel roots for a finalized
// header, for building an APIAccessor over it.
func (m *StorageManager) RootsAt(header types.Hash) (userRoot, kernelRoot types.Hash, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.committed[header]
	if !ok {
		return types.Hash{}, types.Hash{}, fmt.Errorf("storagemgr: header %x is not finalized", header)
	}
	return info.userRoot, info.kernelRoot, nil
}

// UserTree and KernelTree expose the shared trees so callers can build
// an APIAccessor or a read-only proof query without re-opening the
// underlying column families.
func (m *StorageManager) UserTree() *jmtcore.Tree   { return m.userTree }
func (m *StorageManager) KernelTree() *jmtcore.Tree { return m.kernelTree }

// Prunable reports finalized headers older than forkDepth blocks
// behind the finalized tip's height: eligible for pruning, per §4.7,
// though this package does not itself delete their JMT nodes (actual
// garbage collection beyond basic JMT pruning is out of scope, see
// DESIGN.md).
func (m *StorageManager) Prunable(tipHeight uint64) []BlockHeader {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tipHeight <= m.forkDepth {
		return nil
	}
	cutoff := tipHeight - m.forkDepth
	var out []BlockHeader
	for _, info := range m.committed {
		if info.header.Height > 0 && info.header.Height < cutoff {
			out = append(out, info.header)
		}
	}
	return out
}
