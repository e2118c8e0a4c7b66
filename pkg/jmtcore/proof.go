package jmtcore

import "github.com/dubhe-sub002/rollup-state/pkg/types"

// LeafWitness is the leaf actually found (or not) while proving a key.
// A nil *LeafWitness inside a Proof means the key is absent: its path
// terminates at an empty subtree.
type LeafWitness struct {
	KeyHash types.Hash
	Value   []byte
}

// Proof is an inclusion or exclusion proof for one key against one
// root: the sibling hash at every depth from the root down to the
// key's leaf slot, plus whatever leaf (if any) actually occupies that
// slot. VerifyProof recomputes the root from these and compares.
type Proof struct {
	Key     []byte
	KeyHash types.Hash
	// Siblings[d] is the hash of the subtree NOT on the path to KeyHash
	// at depth d (0 = child of the root).
	Siblings [treeDepth]types.Hash
	Leaf     *LeafWitness
}

// Inclusion reports whether this proof attests to the key's presence.
func (p *Proof) Inclusion() bool { return p.Leaf != nil }

// VerifyProof recomputes root from proof and reports whether it
// matches. A caller that only trusts root (e.g. a zk circuit replaying
// a witness) uses this instead of touching the NodeStore at all.
func VerifyProof(root types.Hash, proof *Proof) bool {
	return recomputeRoot(proof) == root
}

func recomputeRoot(proof *Proof) types.Hash {
	cur := emptyHash(0)
	if proof.Leaf != nil {
		if proof.Leaf.KeyHash != proof.KeyHash {
			return types.Hash{} // malformed proof: leaf doesn't match the path
		}
		cur = hashLeaf(proof.Leaf.KeyHash, types.HashOnce(NewHasher, proof.Leaf.Value))
	}
	for d := treeDepth - 1; d >= 0; d-- {
		sibling := proof.Siblings[d]
		if bitAt(proof.KeyHash, d) == 0 {
			cur = hashInternal(cur, sibling)
		} else {
			cur = hashInternal(sibling, cur)
		}
	}
	return cur
}

// UpdateProof attests that applying a single key's write to PreRoot
// yields PostRoot. Because only nodes on the key's own path change
// when one key is written, the same sibling list verifies both the
// pre-state (against OldLeaf) and the post-state (against NewLeaf).
type UpdateProof struct {
	Key      []byte
	KeyHash  types.Hash
	Siblings [treeDepth]types.Hash
	OldLeaf  *LeafWitness
	NewLeaf  *LeafWitness
	PreRoot  types.Hash
	PostRoot types.Hash
}

// PreProof extracts the pre-state proof half of an UpdateProof, the
// form a replaying verifier checks against the block's opening root.
func (u *UpdateProof) PreProof() *Proof {
	return &Proof{Key: u.Key, KeyHash: u.KeyHash, Siblings: u.Siblings, Leaf: u.OldLeaf}
}

// PostProof extracts the post-state half.
func (u *UpdateProof) PostProof() *Proof {
	return &Proof{Key: u.Key, KeyHash: u.KeyHash, Siblings: u.Siblings, Leaf: u.NewLeaf}
}

// Verify checks both halves of an update proof against the given
// roots: exactly the check a zk replay performs without ever reading
// the NodeStore.
func (u *UpdateProof) Verify() bool {
	return VerifyProof(u.PreRoot, u.PreProof()) && VerifyProof(u.PostRoot, u.PostProof())
}
