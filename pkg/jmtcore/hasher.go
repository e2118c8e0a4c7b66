// Package jmtcore implements the authenticated, versioned sparse merkle
// tree that backs every provable namespace (user, kernel). Keys are
// hashed into a fixed 256-bit path; the tree is a binary merkle tree
// over that path, with well-known empty-subtree hashes at every depth
// so exclusion proofs never need to materialize absent nodes.
package jmtcore

import (
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// blake2bHasher adapts golang.org/x/crypto/blake2b's hash.Hash to the
// engine's Hasher contract.
type blake2bHasher struct {
	h hash.Hash
}

// NewHasher returns the engine's default Hasher: blake2b-256.
func NewHasher() types.Hasher {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for a bad key, and we pass none.
		panic(err)
	}
	return &blake2bHasher{h: h}
}

func (b *blake2bHasher) Write(p []byte) (int, error) { return b.h.Write(p) }

func (b *blake2bHasher) Sum32() types.Hash {
	var out types.Hash
	copy(out[:], b.h.Sum(nil))
	return out
}

func (b *blake2bHasher) Reset() { b.h.Reset() }

// hashKey maps an arbitrary-length key to its 256-bit path in the tree.
func hashKey(key []byte) types.Hash {
	return types.HashOnce(NewHasher, key)
}

// hashLeaf computes the node hash of a leaf holding keyHash and the
// hash of its value.
func hashLeaf(keyHash, valueHash types.Hash) types.Hash {
	h := NewHasher()
	h.Write([]byte{leafDomain})
	h.Write(keyHash[:])
	h.Write(valueHash[:])
	return h.Sum32()
}

// hashInternal computes the node hash of an internal node from its two
// children. Either child may be emptyHash(depth+1).
func hashInternal(left, right types.Hash) types.Hash {
	h := NewHasher()
	h.Write([]byte{internalDomain})
	h.Write(left[:])
	h.Write(right[:])
	return h.Sum32()
}

// domain separation tags, so a leaf and an internal node with
// coincidentally identical child bytes never collide.
const (
	leafDomain     byte = 0x00
	internalDomain byte = 0x01
)

// treeDepth is the number of bits in the key path, one per tree level.
const treeDepth = 256

// emptyHashes[d] is the root hash of an empty subtree of depth d
// (d == 0 is an empty leaf slot, d == treeDepth is the root of an
// entirely empty tree). Computed once at package initialization, since
// it only depends on the hash function, not on any tree contents.
var emptyHashes = computeEmptyHashes()

func computeEmptyHashes() []types.Hash {
	out := make([]types.Hash, treeDepth+1)
	out[0] = types.Hash{} // empty leaf slot is the zero hash by convention
	for d := 1; d <= treeDepth; d++ {
		out[d] = hashInternal(out[d-1], out[d-1])
	}
	return out
}

func emptyHash(depth int) types.Hash {
	return emptyHashes[depth]
}
