package state

import (
	"context"
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/jmtcore"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// Accessor is the read/write primitive every typed container operates
// through. *cache.WorkingSet satisfies it; a KernelWorkingSet wraps one
// to additionally enforce the true-slot/visible-slot split for Kernel
// writes.
type Accessor interface {
	Get(ctx context.Context, ns types.Namespace, key []byte) ([]byte, bool, error)
	Set(ns types.Namespace, key, value []byte) error
	Delete(ns types.Namespace, key []byte) error
}

// StorageProof is the native-only artifact a module boundary (§6) hands
// to an off-chain client: a full key, the value observed (if any), the
// JMT proof attesting to it, and the namespace it was read from.
type StorageProof struct {
	Namespace types.Namespace
	Key       []byte
	Value     []byte
	Found     bool
	Proof     *jmtcore.Proof
}

// VerifyStorageProof checks proof against root for the expected
// namespace and key, returning the attested (key, value) pair on
// success. Namespace mismatch, key mismatch, and cryptographic mismatch
// are reported as distinct error types so a caller can tell which
// invariant failed.
func VerifyStorageProof(expected types.Namespace, key []byte, root types.Hash, proof *StorageProof) ([]byte, bool, error) {
	if proof.Namespace != expected {
		return nil, false, &types.NamespaceMismatchError{Expected: expected, Actual: proof.Namespace}
	}
	if string(proof.Key) != string(key) {
		return nil, false, &types.KeyMismatchError{Expected: key, Actual: proof.Key}
	}
	if !jmtcore.VerifyProof(root, proof.Proof) {
		return nil, false, &types.ProofVerificationError{Namespace: proof.Namespace, Reason: "storage proof does not recompute to the given root"}
	}
	if proof.Proof.Inclusion() != proof.Found {
		return nil, false, &types.ProofVerificationError{Namespace: proof.Namespace, Reason: "proof inclusion does not match claimed Found flag"}
	}
	return proof.Value, proof.Found, nil
}

// APIAccessor is a read-only view over a finalized pair of JMT roots:
// the module-system boundary's way of answering point queries and
// producing StorageProofs without opening a mutable working set (no
// gas, no scratchpad, no witness capture).
type APIAccessor struct {
	userTree   *jmtcore.Tree
	kernelTree *jmtcore.Tree
	userRoot   types.Hash
	kernelRoot types.Hash
}

// NewAPIAccessor binds an APIAccessor to the given finalized roots.
func NewAPIAccessor(userTree, kernelTree *jmtcore.Tree, userRoot, kernelRoot types.Hash) *APIAccessor {
	return &APIAccessor{userTree: userTree, kernelTree: kernelTree, userRoot: userRoot, kernelRoot: kernelRoot}
}

func (a *APIAccessor) treeFor(ns types.Namespace) (*jmtcore.Tree, types.Hash, error) {
	switch ns {
	case types.User:
		return a.userTree, a.userRoot, nil
	case types.Kernel:
		return a.kernelTree, a.kernelRoot, nil
	default:
		return nil, types.Hash{}, fmt.Errorf("state: APIAccessor cannot read non-provable namespace %s", ns)
	}
}

// Get reads key's committed value under ns as of the accessor's roots.
func (a *APIAccessor) Get(ctx context.Context, ns types.Namespace, key []byte) ([]byte, bool, error) {
	tree, root, err := a.treeFor(ns)
	if err != nil {
		return nil, false, err
	}
	return tree.Get(ctx, root, key)
}

// GenerateStorageProof produces a StorageProof for key in ns against the
// accessor's current root for that namespace.
func (a *APIAccessor) GenerateStorageProof(ctx context.Context, ns types.Namespace, key []byte) (*StorageProof, error) {
	tree, _, err := a.treeFor(ns)
	if err != nil {
		return nil, err
	}
	proof, err := tree.GenerateProof(ctx, a.rootFor(ns), key)
	if err != nil {
		return nil, err
	}
	sp := &StorageProof{Namespace: ns, Key: append([]byte(nil), key...), Found: proof.Inclusion(), Proof: proof}
	if proof.Leaf != nil {
		sp.Value = proof.Leaf.Value
	}
	return sp, nil
}

func (a *APIAccessor) rootFor(ns types.Namespace) types.Hash {
	if ns == types.Kernel {
		return a.kernelRoot
	}
	return a.userRoot
}

// UserRoot and KernelRoot expose the roots the accessor was built
// against.
func (a *APIAccessor) UserRoot() types.Hash   { return a.userRoot }
func (a *APIAccessor) KernelRoot() types.Hash { return a.kernelRoot }
