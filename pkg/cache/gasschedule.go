package cache

import "github.com/dubhe-sub002/rollup-state/pkg/gas"

// GasSchedule prices the three cache primitives. Real per-byte costs
// are left to the module system layered on top (it knows the encoded
// size up front); the cache hierarchy itself charges a fixed unit per
// operation so metering composes uniformly across container types.
type GasSchedule struct {
	Read   gas.Vector
	Write  gas.Vector
	Delete gas.Vector
}

// DefaultGasSchedule is a reasonable starting schedule for a
// single-dimension (native) gas price; chain configuration may supply
// its own.
func DefaultGasSchedule(dimensions int) GasSchedule {
	read := gas.NewVector(dimensions)
	write := gas.NewVector(dimensions)
	del := gas.NewVector(dimensions)
	for i := range read {
		read[i] = 1
		write[i] = 5
		del[i] = 2
	}
	return GasSchedule{Read: read, Write: write, Delete: del}
}
