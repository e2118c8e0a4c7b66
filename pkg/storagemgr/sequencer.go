package storagemgr

import (
	"context"
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/gas"
	"github.com/dubhe-sub002/rollup-state/pkg/state"
)

// SequencerAuthorizer gates pre-execution checks behind a sequencer's
// on-chain stake: AuthorizeSequencer opens a *gas.SequencerStakeMeter
// budgeted against current stake, PenalizeSequencer writes the
// reduced stake back when that meter is exhausted, and RefundSequencer
// is the non-exhaustion path (stake was never debited up front, so
// there is nothing to credit back — it exists for symmetry with
// GasEnforcer and to make the non-penalized path explicit at call
// sites).
type SequencerAuthorizer interface {
	AuthorizeSequencer(ctx context.Context, a state.Accessor, sequencer string, price gas.Vector) (*gas.SequencerStakeMeter, error)
	PenalizeSequencer(ctx context.Context, a state.Accessor, sequencer string, meter *gas.SequencerStakeMeter) error
	RefundSequencer(ctx context.Context, a state.Accessor, sequencer string, meter *gas.SequencerStakeMeter) error
}

// StakeRegistry implements SequencerAuthorizer against a User-namespace
// stake balance map, modeled on a sequencer registry's reward/slashing
// paths.
type StakeRegistry struct {
	stakes *state.StateMap[state.UserNamespace, string, uint64, codec.Codec[string, uint64]]
}

// NewStakeRegistry builds a StakeRegistry over a stake map at prefix.
func NewStakeRegistry(prefix []byte) *StakeRegistry {
	return &StakeRegistry{
		stakes: state.NewStateMap[state.UserNamespace, string, uint64, codec.Codec[string, uint64]](prefix, balanceCodec),
	}
}

// CreditStake adds amount to sequencer's on-chain stake, for a deposit
// made outside the authorize/penalize lifecycle.
func (r *StakeRegistry) CreditStake(ctx context.Context, a state.Accessor, sequencer string, amount uint64) error {
	stake, _, err := r.stakes.Get(ctx, a, sequencer)
	if err != nil {
		return fmt.Errorf("storagemgr: reading stake for sequencer %s: %w", sequencer, err)
	}
	return r.stakes.Set(a, sequencer, stake+amount)
}

// AuthorizeSequencer opens a meter budgeted against sequencer's current
// stake. The stake itself is left untouched until the meter's fate
// (exhausted or not) is known.
func (r *StakeRegistry) AuthorizeSequencer(ctx context.Context, a state.Accessor, sequencer string, price gas.Vector) (*gas.SequencerStakeMeter, error) {
	stake, _, err := r.stakes.Get(ctx, a, sequencer)
	if err != nil {
		return nil, fmt.Errorf("storagemgr: reading stake for sequencer %s: %w", sequencer, err)
	}
	return gas.NewSequencerStakeMeter(price, stake), nil
}

// PenalizeSequencer writes the sequencer's stake down to whatever the
// exhausted meter left remaining.
func (r *StakeRegistry) PenalizeSequencer(ctx context.Context, a state.Accessor, sequencer string, meter *gas.SequencerStakeMeter) error {
	return r.stakes.Set(a, sequencer, meter.Remaining())
}

// RefundSequencer is a no-op: since AuthorizeSequencer never debited
// the stake, the normal (non-exhaustion) path leaves it unchanged.
func (r *StakeRegistry) RefundSequencer(ctx context.Context, a state.Accessor, sequencer string, meter *gas.SequencerStakeMeter) error {
	return nil
}
