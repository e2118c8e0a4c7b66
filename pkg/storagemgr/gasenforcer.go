package storagemgr

import (
	"context"
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/gas"
	"github.com/dubhe-sub002/rollup-state/pkg/state"
)

// GasEnforcer wraps the pre-execution/post-execution gas lifecycle
// around a transaction's *gas.TransactionMeter: reserving the escrowed
// max fee before a WorkingSet opens, refunding whatever the meter
// never spent, and splitting what it did spend between the slot's
// base-fee recipient and the transaction's tip recipient.
type GasEnforcer interface {
	TryReserveGas(ctx context.Context, a state.Accessor, payer string, price gas.Vector, maxFee uint64) (*gas.TransactionMeter, error)
	RefundRemainingGas(ctx context.Context, a state.Accessor, payer string, meter *gas.TransactionMeter) error
	AllocateConsumedGas(ctx context.Context, a state.Accessor, baseFeeRecipient, tipRecipient string, consumption uint64) error
}

var balanceCodec = struct {
	codec.StringKeyCodec
	codec.Uint64ValueCodec
}{}

// BankGasEnforcer implements GasEnforcer against a plain User-namespace
// balance map, modeled on the escrow/fee-split tests of a module bank:
// reserving gas debits the payer immediately (so double-spend across
// concurrently-considered transactions is impossible), and the split
// between base fee and tip happens at AllocateConsumedGas time, once
// the meter's actual GasUsed is known.
type BankGasEnforcer struct {
	balances *state.StateMap[state.UserNamespace, string, uint64, codec.Codec[string, uint64]]
	// tipFraction is the numerator of tipFraction/100 of consumed gas
	// credited to the tip recipient; the remainder goes to the base-fee
	// recipient. 100 means the sequencer keeps the whole tip and no
	// separate base-fee burn/recipient split is modeled.
	tipFraction uint64
}

// NewBankGasEnforcer builds a BankGasEnforcer over a balances map at
// prefix, splitting consumed gas tipFraction/100 to the tip recipient.
func NewBankGasEnforcer(prefix []byte, tipFraction uint64) *BankGasEnforcer {
	return &BankGasEnforcer{
		balances:    state.NewStateMap[state.UserNamespace, string, uint64, codec.Codec[string, uint64]](prefix, balanceCodec),
		tipFraction: tipFraction,
	}
}

// BalanceOf returns payer's current balance.
func (e *BankGasEnforcer) BalanceOf(ctx context.Context, a state.Accessor, payer string) (uint64, bool, error) {
	return e.balances.Get(ctx, a, payer)
}

// CreditBalance adds amount to payer's balance, for seeding a test
// account or crediting a deposit from outside the gas lifecycle.
func (e *BankGasEnforcer) CreditBalance(ctx context.Context, a state.Accessor, payer string, amount uint64) error {
	balance, _, err := e.balances.Get(ctx, a, payer)
	if err != nil {
		return fmt.Errorf("storagemgr: reading balance for %s: %w", payer, err)
	}
	return e.balances.Set(a, payer, balance+amount)
}

// TryReserveGas debits maxFee from payer's balance and returns a meter
// budgeted against it. Reservation fails outright if payer cannot
// cover maxFee; the transaction never reaches execution.
func (e *BankGasEnforcer) TryReserveGas(ctx context.Context, a state.Accessor, payer string, price gas.Vector, maxFee uint64) (*gas.TransactionMeter, error) {
	balance, _, err := e.balances.Get(ctx, a, payer)
	if err != nil {
		return nil, fmt.Errorf("storagemgr: reading balance for %s: %w", payer, err)
	}
	if balance < maxFee {
		return nil, fmt.Errorf("storagemgr: payer %s has insufficient balance to reserve %d gas", payer, maxFee)
	}
	if err := e.balances.Set(a, payer, balance-maxFee); err != nil {
		return nil, fmt.Errorf("storagemgr: reserving gas for %s: %w", payer, err)
	}
	return gas.NewTransactionMeter(price, maxFee), nil
}

// RefundRemainingGas credits back whatever the meter never spent.
func (e *BankGasEnforcer) RefundRemainingGas(ctx context.Context, a state.Accessor, payer string, meter *gas.TransactionMeter) error {
	if meter.Remaining() == 0 {
		return nil
	}
	balance, _, err := e.balances.Get(ctx, a, payer)
	if err != nil {
		return fmt.Errorf("storagemgr: reading balance for %s: %w", payer, err)
	}
	return e.balances.Set(a, payer, balance+meter.Remaining())
}

// AllocateConsumedGas splits consumption between the base-fee recipient
// and the tip recipient. Crediting the same address for both is valid
// and simply sums into one balance.
func (e *BankGasEnforcer) AllocateConsumedGas(ctx context.Context, a state.Accessor, baseFeeRecipient, tipRecipient string, consumption uint64) error {
	tip := consumption * e.tipFraction / 100
	base := consumption - tip

	baseBal, _, err := e.balances.Get(ctx, a, baseFeeRecipient)
	if err != nil {
		return fmt.Errorf("storagemgr: reading base fee recipient balance: %w", err)
	}
	if err := e.balances.Set(a, baseFeeRecipient, baseBal+base); err != nil {
		return fmt.Errorf("storagemgr: crediting base fee recipient: %w", err)
	}

	if tip == 0 {
		return nil
	}
	tipBal, _, err := e.balances.Get(ctx, a, tipRecipient)
	if err != nil {
		return fmt.Errorf("storagemgr: reading tip recipient balance: %w", err)
	}
	if err := e.balances.Set(a, tipRecipient, tipBal+tip); err != nil {
		return fmt.Errorf("storagemgr: crediting tip recipient: %w", err)
	}
	return nil
}
