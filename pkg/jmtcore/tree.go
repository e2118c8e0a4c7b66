package jmtcore

import (
	"context"
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/log"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// EmptyRoot is the root hash of a tree holding no keys.
var EmptyRoot = emptyHash(treeDepth)

// Tree is the versioned authenticated tree over a single provable
// namespace. It has no notion of "current root": every operation
// takes the root to operate against and returns the root that results,
// so callers (the cache layers) own version history.
type Tree struct {
	store *NodeStore
}

// NewTree builds a Tree over store.
func NewTree(store *NodeStore) *Tree {
	return &Tree{store: store}
}

func (t *Tree) load(ctx context.Context, st *stage, h types.Hash) (*node, error) {
	if raw, ok := st.writes[h]; ok {
		return decodeNode(raw)
	}
	return t.store.get(ctx, h)
}

// Get reads the value stored for key under root. found is false if the
// key has never been written (or was deleted) as of root.
func (t *Tree) Get(ctx context.Context, root types.Hash, key []byte) ([]byte, bool, error) {
	keyHash := hashKey(key)
	st := newStage()
	cur := root
	for depth := 0; depth < treeDepth; depth++ {
		if cur == emptyHash(treeDepth-depth) {
			return nil, false, nil
		}
		n, err := t.load(ctx, st, cur)
		if err != nil {
			return nil, false, err
		}
		if n == nil {
			return nil, false, fmt.Errorf("jmtcore: dangling node reference at depth %d", depth)
		}
		if n.isLeaf {
			return nil, false, fmt.Errorf("jmtcore: leaf encountered at depth %d, tree is corrupt", depth)
		}
		if bitAt(keyHash, depth) == 0 {
			cur = n.left
		} else {
			cur = n.right
		}
	}
	if cur == emptyHash(0) {
		return nil, false, nil
	}
	n, err := t.load(ctx, st, cur)
	if err != nil {
		return nil, false, err
	}
	if n == nil || !n.isLeaf {
		return nil, false, fmt.Errorf("jmtcore: expected leaf at full depth")
	}
	return n.value, true, nil
}

// insert walks to depth, recursing to the leaf slot before unwinding
// to recompute every internal node's hash along the path. value == nil
// deletes the key. Empty subtrees collapse back to the canonical
// emptyHash for their depth so deletions shrink the tree.
func (t *Tree) insert(ctx context.Context, st *stage, cur types.Hash, keyHash types.Hash, depth int, value []byte) (types.Hash, error) {
	if depth == treeDepth {
		if value == nil {
			return emptyHash(0), nil
		}
		leaf := &node{isLeaf: true, keyHash: keyHash, value: value}
		return st.put(leaf), nil
	}

	childEmpty := emptyHash(treeDepth - depth - 1)
	var left, right types.Hash = childEmpty, childEmpty
	if cur != emptyHash(treeDepth-depth) {
		n, err := t.load(ctx, st, cur)
		if err != nil {
			return types.Hash{}, err
		}
		if n == nil || n.isLeaf {
			return types.Hash{}, fmt.Errorf("jmtcore: expected internal node at depth %d", depth)
		}
		left, right = n.left, n.right
	}

	bit := bitAt(keyHash, depth)
	var err error
	if bit == 0 {
		left, err = t.insert(ctx, st, left, keyHash, depth+1, value)
	} else {
		right, err = t.insert(ctx, st, right, keyHash, depth+1, value)
	}
	if err != nil {
		return types.Hash{}, err
	}

	if left == childEmpty && right == childEmpty {
		return emptyHash(treeDepth - depth), nil
	}
	return st.put(&node{isLeaf: false, left: left, right: right}), nil
}

// Put writes a single key and returns the resulting root. A nil value
// deletes the key.
func (t *Tree) Put(ctx context.Context, root types.Hash, key, value []byte) (types.Hash, error) {
	newRoot, _, err := t.putWithProof(ctx, root, key, value)
	return newRoot, err
}

func (t *Tree) putWithProof(ctx context.Context, root types.Hash, key, value []byte) (types.Hash, *UpdateProof, error) {
	keyHash := hashKey(key)
	st := newStage()

	preProof, err := t.generateProof(ctx, st, root, key, keyHash)
	if err != nil {
		return types.Hash{}, nil, err
	}

	newRoot, err := t.insert(ctx, st, root, keyHash, 0, value)
	if err != nil {
		return types.Hash{}, nil, err
	}
	if err := t.store.flush(ctx, st); err != nil {
		return types.Hash{}, nil, err
	}

	var newLeaf *LeafWitness
	if value != nil {
		newLeaf = &LeafWitness{KeyHash: keyHash, Value: value}
	}

	up := &UpdateProof{
		Key:      append([]byte(nil), key...),
		KeyHash:  keyHash,
		Siblings: preProof.Siblings,
		OldLeaf:  preProof.Leaf,
		NewLeaf:  newLeaf,
		PreRoot:  root,
		PostRoot: newRoot,
	}
	return newRoot, up, nil
}

// Write is one entry in an UpdateBatch: a nil Value deletes Key.
type Write struct {
	Key   []byte
	Value []byte
}

// UpdateBatch applies writes sequentially against root (each write's
// root is the prior write's resulting root) and returns the final root
// together with one UpdateProof per write, in order. This is the entry
// point cache.Delta.FinishNamespace uses to apply one namespace's
// buffered slot writes at the end of a slot.
func (t *Tree) UpdateBatch(ctx context.Context, root types.Hash, writes []Write) (types.Hash, []*UpdateProof, error) {
	cur := root
	proofs := make([]*UpdateProof, 0, len(writes))
	for _, w := range writes {
		newRoot, up, err := t.putWithProof(ctx, cur, w.Key, w.Value)
		if err != nil {
			return types.Hash{}, nil, fmt.Errorf("jmtcore: updating key %x: %w", w.Key, err)
		}
		cur = newRoot
		proofs = append(proofs, up)
	}
	log.WithComponent("jmtcore").Debug().Int("keys", len(writes)).Msg("update batch applied")
	return cur, proofs, nil
}

// GenerateProof produces an inclusion or exclusion proof for key
// against root without mutating anything.
func (t *Tree) GenerateProof(ctx context.Context, root types.Hash, key []byte) (*Proof, error) {
	keyHash := hashKey(key)
	return t.generateProof(ctx, newStage(), root, key, keyHash)
}

func (t *Tree) generateProof(ctx context.Context, st *stage, root types.Hash, key []byte, keyHash types.Hash) (*Proof, error) {
	proof := &Proof{Key: append([]byte(nil), key...), KeyHash: keyHash}
	cur := root
	for depth := 0; depth < treeDepth; depth++ {
		if cur == emptyHash(treeDepth-depth) {
			// Rest of the path is canonically empty; every remaining
			// sibling is the empty hash for its depth.
			for d := depth; d < treeDepth; d++ {
				proof.Siblings[d] = emptyHash(treeDepth - d - 1)
			}
			return proof, nil
		}
		n, err := t.load(ctx, st, cur)
		if err != nil {
			return nil, err
		}
		if n == nil || n.isLeaf {
			return nil, fmt.Errorf("jmtcore: expected internal node at depth %d", depth)
		}
		if bitAt(keyHash, depth) == 0 {
			proof.Siblings[depth] = n.right
			cur = n.left
		} else {
			proof.Siblings[depth] = n.left
			cur = n.right
		}
	}
	if cur == emptyHash(0) {
		return proof, nil
	}
	n, err := t.load(ctx, st, cur)
	if err != nil {
		return nil, err
	}
	if n == nil || !n.isLeaf {
		return nil, fmt.Errorf("jmtcore: expected leaf at full depth")
	}
	proof.Leaf = &LeafWitness{KeyHash: n.keyHash, Value: n.value}
	return proof, nil
}
