package storagemgr

import (
	"context"

	"github.com/dubhe-sub002/rollup-state/pkg/log"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
	"github.com/dubhe-sub002/rollup-state/pkg/witness"
)

// ProofReceipt classifies the outcome of processing a submitted proof
// against its claimed state transition.
type ProofReceipt int

const (
	// ProofIgnored means the submission carried no witness, or a witness
	// with neither a User nor a Kernel log, and was not scored either way.
	ProofIgnored ProofReceipt = iota
	// ProofValid means every namespace's witness chained cryptographically
	// from its claimed pre-root to its claimed post-root.
	ProofValid
	// ProofInvalid means at least one namespace's witness failed to
	// verify: its update hints do not chain from the claimed pre-root, or
	// they end at a post-root that does not match what was claimed. Read
	// hints are not checked.
	ProofInvalid
)

func (r ProofReceipt) String() string {
	switch r {
	case ProofIgnored:
		return "ignored"
	case ProofValid:
		return "valid"
	case ProofInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// StateTransitionClaim is what a proof submission asserts about a
// slot's effect on the two provable namespaces.
type StateTransitionClaim struct {
	PreUserRoot    types.Hash
	PostUserRoot   types.Hash
	PreKernelRoot  types.Hash
	PostKernelRoot types.Hash
}

// ProofProcessor checks a submitted witness against its claimed state
// transition without re-executing any transaction: it replays the
// recorded update hints and confirms they chain from the claimed
// pre-roots to the claimed post-roots, exactly as a verifier checking
// incentivized proof submissions would.
type ProofProcessor struct{}

// NewProofProcessor builds a ProofProcessor. It is stateless: every
// call to Process is independent.
func NewProofProcessor() *ProofProcessor {
	return &ProofProcessor{}
}

// Process verifies w against claim and returns the resulting receipt.
// A nil or empty witness is ProofIgnored rather than ProofInvalid: it
// carries nothing to refute.
func (p *ProofProcessor) Process(ctx context.Context, claim StateTransitionClaim, w *witness.Witness) (ProofReceipt, error) {
	if w == nil || (w.ForNamespace(types.User) == nil && w.ForNamespace(types.Kernel) == nil) {
		return ProofIgnored, nil
	}

	replayer := witness.NewReplayer(w)

	if _, err := replayer.VerifyUpdate(types.User, claim.PreUserRoot, claim.PostUserRoot); err != nil {
		log.WithComponent("storagemgr").Warn().Err(err).Msg("proof rejected: user namespace")
		return ProofInvalid, nil
	}
	if _, err := replayer.VerifyUpdate(types.Kernel, claim.PreKernelRoot, claim.PostKernelRoot); err != nil {
		log.WithComponent("storagemgr").Warn().Err(err).Msg("proof rejected: kernel namespace")
		return ProofInvalid, nil
	}

	return ProofValid, nil
}
