package cache

import (
	"context"

	"github.com/dubhe-sub002/rollup-state/pkg/gas"
	"github.com/dubhe-sub002/rollup-state/pkg/log"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// Event is a module-emitted event recorded against a WorkingSet.
// Module code supplies Kind and Data; the engine only transports them.
type Event struct {
	Kind string
	Data []byte
}

// WorkingSet wraps a TxScratchpad with a gas meter: every read and
// write is charged before it reaches the scratchpad. If a charge
// fails, the operation returns the meter's *gas.OutOfGasError and the
// caller must treat the whole working set as failed — drop it without
// calling Scratchpad().Commit(), which leaves the enclosing
// scratchpad's parent untouched exactly as if nothing had happened.
type WorkingSet struct {
	scratchpad *TxScratchpad
	meter      gas.Meter
	schedule   GasSchedule
	events     []Event
}

// NewWorkingSet opens a gas-metered view over scratchpad.
func NewWorkingSet(scratchpad *TxScratchpad, meter gas.Meter, schedule GasSchedule) *WorkingSet {
	return &WorkingSet{scratchpad: scratchpad, meter: meter, schedule: schedule}
}

// Get charges a read unit, then delegates to the scratchpad.
func (w *WorkingSet) Get(ctx context.Context, ns types.Namespace, key []byte) ([]byte, bool, error) {
	if err := w.meter.ChargeGas(w.schedule.Read); err != nil {
		return nil, false, err
	}
	return w.scratchpad.Get(ctx, ns, key)
}

// Set charges a write unit, then delegates to the scratchpad.
func (w *WorkingSet) Set(ns types.Namespace, key, value []byte) error {
	if err := w.meter.ChargeGas(w.schedule.Write); err != nil {
		return err
	}
	w.scratchpad.Set(ns, key, value)
	return nil
}

// Delete charges a delete unit, then delegates to the scratchpad.
func (w *WorkingSet) Delete(ns types.Namespace, key []byte) error {
	if err := w.meter.ChargeGas(w.schedule.Delete); err != nil {
		return err
	}
	w.scratchpad.Delete(ns, key)
	return nil
}

// EmitEvent appends an event to the working set's log.
func (w *WorkingSet) EmitEvent(e Event) {
	w.events = append(w.events, e)
}

// Events returns every event emitted so far, in emission order.
func (w *WorkingSet) Events() []Event { return w.events }

// Meter exposes the underlying gas meter, e.g. for the gas enforcer to
// read GasUsed()/TotalCost() once the transaction completes.
func (w *WorkingSet) Meter() gas.Meter { return w.meter }

// Scratchpad returns the underlying TxScratchpad, to be committed by
// the caller once the working set completes successfully.
func (w *WorkingSet) Scratchpad() *TxScratchpad { return w.scratchpad }

// PreExecWorkingSet is the same read/write interface as WorkingSet,
// but charges a sequencer-stake meter (see gas.SequencerStakeMeter)
// during pre-execution checks (signature verification, nonce lookup).
// On exhaustion, penalizing the sequencer is the caller's
// responsibility (the sequencer-authorization contract), not this
// type's: PreExecWorkingSet only surfaces the *gas.OutOfGasError.
type PreExecWorkingSet struct {
	scratchpad *TxScratchpad
	meter      *gas.SequencerStakeMeter
	schedule   GasSchedule
}

// NewPreExecWorkingSet opens a sequencer-stake-metered view over
// scratchpad.
func NewPreExecWorkingSet(scratchpad *TxScratchpad, meter *gas.SequencerStakeMeter, schedule GasSchedule) *PreExecWorkingSet {
	return &PreExecWorkingSet{scratchpad: scratchpad, meter: meter, schedule: schedule}
}

func (w *PreExecWorkingSet) Get(ctx context.Context, ns types.Namespace, key []byte) ([]byte, bool, error) {
	if err := w.meter.ChargeGas(w.schedule.Read); err != nil {
		log.WithComponent("cache").Warn().Msg("pre-exec working set exhausted sequencer stake on read")
		return nil, false, err
	}
	return w.scratchpad.Get(ctx, ns, key)
}

func (w *PreExecWorkingSet) Set(ns types.Namespace, key, value []byte) error {
	if err := w.meter.ChargeGas(w.schedule.Write); err != nil {
		log.WithComponent("cache").Warn().Msg("pre-exec working set exhausted sequencer stake on write")
		return err
	}
	w.scratchpad.Set(ns, key, value)
	return nil
}

func (w *PreExecWorkingSet) Delete(ns types.Namespace, key []byte) error {
	if err := w.meter.ChargeGas(w.schedule.Delete); err != nil {
		log.WithComponent("cache").Warn().Msg("pre-exec working set exhausted sequencer stake on delete")
		return err
	}
	w.scratchpad.Delete(ns, key)
	return nil
}

// Meter exposes the sequencer-stake meter so the caller can compute
// the sequencer's new bond (its remaining stake) on exhaustion.
func (w *PreExecWorkingSet) Meter() *gas.SequencerStakeMeter { return w.meter }

// Scratchpad returns the underlying TxScratchpad.
func (w *PreExecWorkingSet) Scratchpad() *TxScratchpad { return w.scratchpad }
