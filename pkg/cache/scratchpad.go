package cache

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dubhe-sub002/rollup-state/pkg/log"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// TxScratchpad is a revertable overlay over a parent Layer, scoped to
// one transaction's lifetime. Reads and writes are buffered locally;
// Commit replays the buffered writes into the parent in a single pass,
// in first-write order; Revert simply drops the buffer, leaving the
// parent untouched.
type TxScratchpad struct {
	id      uuid.UUID
	txIndex int // slot-relative transaction index, -1 if unset
	parent  Layer
	caches  [3]*nsCache // indexed by types.Namespace
}

// NewTxScratchpad opens a scratchpad over parent. The id is opaque and
// used only for log correlation, never for consensus-visible data.
func NewTxScratchpad(parent Layer) *TxScratchpad {
	return &TxScratchpad{
		id:      uuid.New(),
		txIndex: -1,
		parent:  parent,
		caches:  [3]*nsCache{newNSCache(), newNSCache(), newNSCache()},
	}
}

// WithTxIndex attaches the slot-relative transaction index this
// scratchpad belongs to, for log correlation, and returns the receiver
// so it can be chained onto NewTxScratchpad.
func (s *TxScratchpad) WithTxIndex(txIndex int) *TxScratchpad {
	s.txIndex = txIndex
	return s
}

// logger returns the scratchpad's component logger, scoped to its
// transaction index when one has been set via WithTxIndex.
func (s *TxScratchpad) logger() zerolog.Logger {
	l := log.WithComponent("cache")
	if s.txIndex >= 0 {
		l = log.WithTx(l, s.txIndex)
	}
	return l
}

func (s *TxScratchpad) cacheFor(ns types.Namespace) *nsCache {
	return s.caches[ns]
}

// Get returns a cached value if this scratchpad already has one
// (whether from a prior read or a prior write), otherwise queries the
// parent layer and memoizes the result. The memoized read never
// propagates to the parent: per §4.3, "a child layer's cached reads do
// NOT propagate to the parent on commit".
func (s *TxScratchpad) Get(ctx context.Context, ns types.Namespace, key []byte) ([]byte, bool, error) {
	nc := s.cacheFor(ns)
	if e, ok := nc.peek(key); ok {
		return e.value, e.found, nil
	}
	value, found, err := s.parent.Get(ctx, ns, key)
	if err != nil {
		return nil, false, err
	}
	nc.memoize(key, value, found)
	return value, found, nil
}

// Set buffers a write visible to subsequent Gets on this scratchpad
// immediately, but invisible to the parent until Commit.
func (s *TxScratchpad) Set(ns types.Namespace, key, value []byte) {
	s.cacheFor(ns).set(key, value)
}

// Delete buffers a deletion, same visibility rules as Set.
func (s *TxScratchpad) Delete(ns types.Namespace, key []byte) {
	s.cacheFor(ns).delete(key)
}

// Commit replays every buffered dirty write into the parent, in the
// order each key was first touched in this scratchpad.
func (s *TxScratchpad) Commit() {
	for ns := types.User; ns <= types.Accessory; ns++ {
		for _, ke := range s.cacheFor(ns).dirtyInOrder() {
			if ke.entry.found {
				s.parent.Set(ns, ke.key, ke.entry.value)
			} else {
				s.parent.Delete(ns, ke.key)
			}
		}
	}
	s.logger().Debug().Str("scratchpad", s.id.String()).Msg("scratchpad committed")
}

// Revert discards the scratchpad's buffered reads and writes. The
// parent is left exactly as it was.
func (s *TxScratchpad) Revert() {
	s.logger().Debug().Str("scratchpad", s.id.String()).Msg("scratchpad reverted")
}

// ID returns the scratchpad's opaque instance identifier.
func (s *TxScratchpad) ID() uuid.UUID { return s.id }
