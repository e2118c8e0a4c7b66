package witness

import (
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/jmtcore"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// Replayer consumes a Witness in zk execution: every cache miss pops
// the next read hint and verifies it against the namespace's pre-root
// instead of touching a NodeStore; at end-of-slot it pops the update
// hint and verifies it against (pre-root, claimed post-root). Any
// verification failure is fatal to the slot (§4.6).
type Replayer struct {
	witness *Witness
	cursor  map[types.Namespace]int
}

// NewReplayer builds a Replayer over w.
func NewReplayer(w *Witness) *Replayer {
	return &Replayer{witness: w, cursor: make(map[types.Namespace]int)}
}

// PreRoot returns the pre-state root the witness recorded for ns. A
// replaying caller compares this against the root it was handed out of
// band (the parent slot's committed post-root) before trusting any
// hint below it.
func (r *Replayer) PreRoot(ns types.Namespace) (types.Hash, error) {
	log := r.witness.ForNamespace(ns)
	if log == nil {
		return types.Hash{}, fmt.Errorf("witness: no log recorded for namespace %s", ns)
	}
	return log.PreRoot, nil
}

// NextRead pops the next read hint for ns, verifies it against preRoot,
// and returns the value observed (nil, false for an exclusion proof).
// keyHash must match the hint at the head of the queue — a mismatch
// means native and zk execution diverged in read order, which is
// itself a *types.ProofVerificationError.
func (r *Replayer) NextRead(ns types.Namespace, preRoot types.Hash, keyHash types.Hash) ([]byte, bool, error) {
	log := r.witness.ForNamespace(ns)
	if log == nil {
		return nil, false, &types.ProofVerificationError{Namespace: ns, Reason: "no witness recorded for namespace"}
	}
	idx := r.cursor[ns]
	if idx >= len(log.Reads) {
		return nil, false, &types.ProofVerificationError{Namespace: ns, Reason: "witness exhausted: no more read hints"}
	}
	hint := log.Reads[idx]
	r.cursor[ns] = idx + 1

	if hint.KeyHash != keyHash {
		return nil, false, &types.ProofVerificationError{
			Namespace: ns,
			Reason:    fmt.Sprintf("read order mismatch: witness has %x, replay requested %x", hint.KeyHash, keyHash),
		}
	}
	if !jmtcore.VerifyProof(preRoot, hint.Proof) {
		return nil, false, &types.ProofVerificationError{Namespace: ns, Reason: fmt.Sprintf("read proof for key %x failed to verify against pre-root", keyHash)}
	}
	if hint.Proof.Leaf == nil {
		return nil, false, nil
	}
	return hint.Proof.Leaf.Value, true, nil
}

// VerifyUpdate pops ns's update hint and verifies every per-key
// UpdateProof chains correctly from preRoot to the claimed post-root,
// returning that post-root once confirmed.
func (r *Replayer) VerifyUpdate(ns types.Namespace, preRoot types.Hash, claimedPostRoot types.Hash) (types.Hash, error) {
	log := r.witness.ForNamespace(ns)
	if log == nil || log.Update == nil {
		return types.Hash{}, &types.ProofVerificationError{Namespace: ns, Reason: "no update hint recorded"}
	}
	cur := preRoot
	for i, up := range log.Update.Proofs {
		if up.PreRoot != cur {
			return types.Hash{}, &types.ProofVerificationError{
				Namespace: ns,
				Reason:    fmt.Sprintf("update proof %d pre-root does not chain from prior post-root", i),
			}
		}
		if !up.Verify() {
			return types.Hash{}, &types.ProofVerificationError{
				Namespace: ns,
				Reason:    fmt.Sprintf("update proof %d for key %x failed to verify", i, up.KeyHash),
			}
		}
		cur = up.PostRoot
	}
	if cur != log.Update.PostRoot || cur != claimedPostRoot {
		return types.Hash{}, &types.ProofVerificationError{
			Namespace: ns,
			Reason:    "chained update proofs do not reach the claimed post-root",
		}
	}
	return cur, nil
}
