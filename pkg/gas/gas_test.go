package gas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransactionMeterChargeAndOutOfGas(t *testing.T) {
	meter := NewTransactionMeter(Vector{10}, 100)

	require.NoError(t, meter.ChargeGas(Vector{6}))
	require.Equal(t, uint64(40), meter.Remaining())
	require.Equal(t, uint64(60), meter.TotalCost())

	err := meter.ChargeGas(Vector{5})
	require.Error(t, err)

	var oog *OutOfGasError
	require.True(t, errors.As(err, &oog))
	require.Equal(t, uint64(50), oog.Attempted)
	require.Equal(t, uint64(40), oog.Remaining)
	require.Equal(t, uint64(60), oog.Total)

	// a failed charge must not have mutated meter state
	require.Equal(t, uint64(40), meter.Remaining())
	require.Equal(t, uint64(60), meter.TotalCost())
}

func TestMeterRefund(t *testing.T) {
	meter := NewTransactionMeter(Vector{10}, 100)
	require.NoError(t, meter.ChargeGas(Vector{6}))
	require.NoError(t, meter.RefundGas(Vector{6}))
	require.Equal(t, uint64(100), meter.Remaining())
	require.Equal(t, uint64(0), meter.TotalCost())
}

func TestMeterRefundMoreThanChargedFails(t *testing.T) {
	meter := NewTransactionMeter(Vector{10}, 100)
	require.NoError(t, meter.ChargeGas(Vector{1}))
	err := meter.RefundGas(Vector{2})
	require.Error(t, err)
}

func TestGasUsedMonotoneAndBudgetInvariant(t *testing.T) {
	meter := NewTransactionMeter(Vector{1, 2}, 1000)
	const initialBudget = 1000

	units := []Vector{{10, 5}, {3, 1}, {0, 0}, {20, 2}}
	var lastTotal uint64
	for _, u := range units {
		require.NoError(t, meter.ChargeGas(u))
		require.GreaterOrEqual(t, meter.TotalCost(), lastTotal)
		require.LessOrEqual(t, meter.TotalCost()+meter.Remaining(), uint64(initialBudget))
		lastTotal = meter.TotalCost()
	}
}

func TestSequencerStakeMeterIndependentFromTransactionMeter(t *testing.T) {
	txMeter := NewTransactionMeter(Vector{5}, 50)
	seqMeter := NewSequencerStakeMeter(Vector{5}, 1000)

	require.NoError(t, seqMeter.ChargeGas(Vector{100}))
	require.Error(t, txMeter.ChargeGas(Vector{100}))
}

func TestBaseFeeAtTarget(t *testing.T) {
	params := BaseFeeParams{ElasticityMultiplier: 2, BaseFeeMaxChangeDenominator: 8}
	require.Equal(t, uint64(10000), NextBaseFee(100, 50, 10000, params))
}

func TestBaseFeeAboveTarget(t *testing.T) {
	params := BaseFeeParams{ElasticityMultiplier: 2, BaseFeeMaxChangeDenominator: 8}
	require.Equal(t, uint64(112), NextBaseFee(100, 100, 100, params))
}

func TestBaseFeeFromZeroAboveTargetGoesToOne(t *testing.T) {
	params := BaseFeeParams{ElasticityMultiplier: 2, BaseFeeMaxChangeDenominator: 8}
	require.Equal(t, uint64(1), NextBaseFee(100, 100, 0, params))
}

func TestBaseFeeBelowTargetDecreases(t *testing.T) {
	params := BaseFeeParams{ElasticityMultiplier: 2, BaseFeeMaxChangeDenominator: 8}
	next := NextBaseFee(100, 0, 10000, params)
	require.Less(t, next, uint64(10000))
}

func TestBaseFeeVectorIndependentPerDimension(t *testing.T) {
	params := BaseFeeParams{ElasticityMultiplier: 2, BaseFeeMaxChangeDenominator: 8}
	limit := Vector{100, 100}
	used := Vector{50, 100}
	fee := Vector{10000, 100}

	next := NextBaseFeeVector(limit, used, fee, params)
	require.Equal(t, Vector{10000, 112}, next)
}
