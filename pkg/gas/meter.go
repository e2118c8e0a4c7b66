package gas

import (
	"fmt"
	"strconv"

	"github.com/dubhe-sub002/rollup-state/pkg/metrics"
)

// OutOfGasError reports that a charge would exceed the meter's
// remaining budget. It carries everything a caller needs to explain
// the failure: what was attempted, the price it was attempted at, how
// much budget remained, and how much had already been consumed.
type OutOfGasError struct {
	Attempted uint64
	Price     Vector
	Remaining uint64
	Total     uint64
}

func (e *OutOfGasError) Error() string {
	return fmt.Sprintf("gas: out of gas: attempted %d, remaining %d, total consumed %d", e.Attempted, e.Remaining, e.Total)
}

// Meter charges and refunds gas against a scalar funds budget, priced
// by a per-dimension vector. Two concrete meters exist: TransactionMeter
// (budget = the transaction's max fee) and SequencerStakeMeter (budget =
// the sequencer's on-chain stake).
type Meter interface {
	// ChargeGas charges unit at the meter's current price. Returns
	// *OutOfGasError if the resulting cost would exceed Remaining().
	ChargeGas(unit Vector) error
	// RefundGas reverses a previous charge of unit. It is only valid
	// against gas actually charged; refunding more than consumed is an
	// invariant violation and returns an error rather than going
	// negative.
	RefundGas(unit Vector) error
	// GasUsed returns the running per-dimension total charged so far.
	GasUsed() Vector
	// TotalCost returns the running scalar fee total charged so far.
	TotalCost() uint64
	// Remaining returns the unspent scalar budget.
	Remaining() uint64
	// Price returns the meter's fixed per-dimension price vector.
	Price() Vector
}

// baseMeter implements the shared charge/refund bookkeeping every
// concrete meter uses; it is not exported because callers should
// always go through a named meter so it is clear which budget they are
// spending against.
type baseMeter struct {
	price     Vector
	remaining uint64
	total     uint64
	gasUsed   Vector
}

func newBaseMeter(price Vector, budget uint64) baseMeter {
	return baseMeter{price: price, remaining: budget, gasUsed: NewVector(len(price))}
}

func (m *baseMeter) ChargeGas(unit Vector) error {
	cost := unit.Dot(m.price)
	if cost > m.remaining {
		metrics.GasOutOfGasTotal.Inc()
		return &OutOfGasError{Attempted: cost, Price: m.price, Remaining: m.remaining, Total: m.total}
	}
	m.remaining -= cost
	m.total += cost
	m.gasUsed = m.gasUsed.Add(unit)
	for i, u := range unit {
		metrics.GasConsumed.WithLabelValues(strconv.Itoa(i)).Observe(float64(u))
	}
	return nil
}

func (m *baseMeter) RefundGas(unit Vector) error {
	cost := unit.Dot(m.price)
	if cost > m.total {
		return fmt.Errorf("gas: cannot refund %d, only %d has been charged so far", cost, m.total)
	}
	gasUsed, err := m.gasUsed.Sub(unit)
	if err != nil {
		return fmt.Errorf("gas: refund exceeds charged units: %w", err)
	}
	m.remaining += cost
	m.total -= cost
	m.gasUsed = gasUsed
	return nil
}

func (m *baseMeter) GasUsed() Vector  { return m.gasUsed }
func (m *baseMeter) TotalCost() uint64 { return m.total }
func (m *baseMeter) Remaining() uint64 { return m.remaining }
func (m *baseMeter) Price() Vector     { return m.price }

// TransactionMeter budgets against a transaction's max fee, already
// escrowed by the gas enforcer before execution starts. Exhaustion
// reverts the transaction; the enforcer refunds whatever remains.
type TransactionMeter struct {
	baseMeter
}

// NewTransactionMeter builds a meter with budget funds priced at price.
func NewTransactionMeter(price Vector, budget uint64) *TransactionMeter {
	return &TransactionMeter{baseMeter: newBaseMeter(price, budget)}
}

// SequencerStakeMeter budgets against the sequencer's on-chain stake
// during pre-execution checks. Exhaustion does not revert anything by
// itself — PreExecWorkingSet only surfaces the *OutOfGasError, and the
// code that receives it (the sequencer-authorization contract) applies
// the penalty.
type SequencerStakeMeter struct {
	baseMeter
}

// NewSequencerStakeMeter builds a meter with budget = the sequencer's
// current stake, priced at price.
func NewSequencerStakeMeter(price Vector, stake uint64) *SequencerStakeMeter {
	return &SequencerStakeMeter{baseMeter: newBaseMeter(price, stake)}
}
