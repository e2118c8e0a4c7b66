package jmtcore

import (
	"context"
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/kv"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// NodeStore persists tree nodes by content hash, on top of the
// engine's column-family key-value substrate. One column family per
// provable namespace keeps user and kernel trees from ever sharing
// storage, even though both hash through the same node encoding.
type NodeStore struct {
	backend kv.Store
	cf      kv.ColumnFamily
}

// NewNodeStore binds a NodeStore to one column family of backend. The
// caller is responsible for having created that column family (see
// kv.Open's cfs argument).
func NewNodeStore(backend kv.Store, cf kv.ColumnFamily) *NodeStore {
	return &NodeStore{backend: backend, cf: cf}
}

func (s *NodeStore) get(ctx context.Context, h types.Hash) (*node, error) {
	if h.IsZero() {
		return nil, nil
	}
	raw, err := s.backend.Get(ctx, s.cf, h[:])
	if err != nil {
		return nil, fmt.Errorf("jmtcore: reading node %x: %w", h, err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeNode(raw)
}

// stage accumulates nodes produced by a write batch before they are
// flushed to the backend in one atomic call.
type stage struct {
	writes map[types.Hash][]byte
}

func newStage() *stage {
	return &stage{writes: make(map[types.Hash][]byte)}
}

func (s *stage) put(n *node) types.Hash {
	h := n.hash()
	s.writes[h] = encodeNode(n)
	return h
}

func (s *NodeStore) flush(ctx context.Context, st *stage) error {
	if len(st.writes) == 0 {
		return nil
	}
	writes := make([]kv.Write, 0, len(st.writes))
	for h, raw := range st.writes {
		writes = append(writes, kv.Write{CF: s.cf, Key: append([]byte(nil), h[:]...), Value: raw})
	}
	if err := s.backend.WriteBatch(ctx, writes); err != nil {
		return fmt.Errorf("jmtcore: flushing %d nodes: %w", len(writes), err)
	}
	return nil
}
