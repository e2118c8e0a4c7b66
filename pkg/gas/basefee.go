package gas

import (
	"strconv"

	"github.com/dubhe-sub002/rollup-state/pkg/metrics"
)

// BaseFeeParams holds the chain-configuration constants that drive the
// EIP-1559-style controller: how far gas usage may spike above the
// target in a single slot, and how quickly the fee adjusts toward it.
type BaseFeeParams struct {
	ElasticityMultiplier        uint64
	BaseFeeMaxChangeDenominator uint64
}

// nextBaseFee is the unidimensional EIP-1559 recurrence itself: unchanged
// at target, a bounded increase above target, a bounded decrease below
// target. From a zero fee a single above-target slot moves the fee to
// exactly 1.
func nextBaseFee(limit, used, fee uint64, params BaseFeeParams) uint64 {
	target := limit / params.ElasticityMultiplier
	switch {
	case used == target:
		return fee
	case used > target:
		delta := fee * (used - target) / target / params.BaseFeeMaxChangeDenominator
		if delta < 1 {
			delta = 1
		}
		return fee + delta
	default:
		delta := fee * (target - used) / target / params.BaseFeeMaxChangeDenominator
		if delta > fee {
			return 0
		}
		return fee - delta
	}
}

// NextBaseFee computes the next slot's base fee from the parent slot's
// gas limit, gas used, and base fee, and records it as dimension 0 of
// the base-fee gauge.
func NextBaseFee(limit, used, fee uint64, params BaseFeeParams) uint64 {
	newFee := nextBaseFee(limit, used, fee, params)
	metrics.BaseFee.WithLabelValues("0").Set(float64(newFee))
	return newFee
}

// NextBaseFeeVector applies the base-fee recurrence independently to
// each dimension of a multidimensional gas price, per §4.5's "apply the
// same rule per dimension independently", recording each dimension's
// resulting fee to the base-fee gauge.
func NextBaseFeeVector(limit, used, fee Vector, params BaseFeeParams) Vector {
	n := len(fee)
	out := make(Vector, n)
	for i := 0; i < n; i++ {
		var l, u uint64
		if i < len(limit) {
			l = limit[i]
		}
		if i < len(used) {
			u = used[i]
		}
		out[i] = nextBaseFee(l, u, fee[i], params)
		metrics.BaseFee.WithLabelValues(strconv.Itoa(i)).Set(float64(out[i]))
	}
	return out
}
