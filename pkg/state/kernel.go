package state

import (
	"context"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// KernelWorkingSet is the accessor kernel code writes Kernel namespace
// state through. Writes to Kernel state are not restricted to it: any
// Accessor's Set accepts types.Kernel, and a KernelWorkingSet passes
// Get, Set and Delete straight to its inner Accessor. It carries two
// slot numbers for VersionedStateValue: trueSlot, the
// slot actually executing (what kernel-authored versioned writes are
// keyed by), and visibleSlot, the slot number user-space
// VersionedStateValue reads resolve against. The two diverge when the
// kernel delays exposing a just-written version until a later slot.
type KernelWorkingSet struct {
	inner       Accessor
	trueSlot    uint64
	visibleSlot uint64
}

// NewKernelWorkingSet builds a KernelWorkingSet over inner (typically a
// *cache.WorkingSet opened against the Kernel namespace's scratchpad).
func NewKernelWorkingSet(inner Accessor, trueSlot, visibleSlot uint64) *KernelWorkingSet {
	return &KernelWorkingSet{inner: inner, trueSlot: trueSlot, visibleSlot: visibleSlot}
}

// TrueSlot is the slot number currently executing.
func (k *KernelWorkingSet) TrueSlot() uint64 { return k.trueSlot }

// VisibleSlot is the slot number user-space VersionedStateValue reads
// resolve against.
func (k *KernelWorkingSet) VisibleSlot() uint64 { return k.visibleSlot }

// Get, Set, and Delete satisfy Accessor directly for ordinary
// (non-versioned) Kernel namespace containers.
func (k *KernelWorkingSet) Get(ctx context.Context, ns types.Namespace, key []byte) ([]byte, bool, error) {
	return k.inner.Get(ctx, ns, key)
}

func (k *KernelWorkingSet) Set(ns types.Namespace, key, value []byte) error {
	return k.inner.Set(ns, key, value)
}

func (k *KernelWorkingSet) Delete(ns types.Namespace, key []byte) error {
	return k.inner.Delete(ns, key)
}

var versionedSlotCodec = codec.Uint64KeyCodec{}

// VersionedStateValue is semantically a map from slot number to V,
// confined to the Kernel namespace. User-space code only ever sees the
// entry at the kernel's chosen visible slot; kernel code may read or
// write any version directly.
type VersionedStateValue[V any, C codec.ValueCodec[V]] struct {
	prefix []byte
	codec  C
}

// NewVersionedStateValue builds a VersionedStateValue at prefix.
func NewVersionedStateValue[V any, C codec.ValueCodec[V]](prefix []byte, c C) *VersionedStateValue[V, C] {
	return &VersionedStateValue[V, C]{prefix: append([]byte(nil), prefix...), codec: c}
}

func (v *VersionedStateValue[V, C]) keyFor(slot uint64) []byte {
	return append(append([]byte(nil), v.prefix...), versionedSlotCodec.EncodeKey(slot)...)
}

// GetVersion reads the entry for an explicit slot number, the access
// pattern kernel code uses to read versions other than the current
// visible one.
func (v *VersionedStateValue[V, C]) GetVersion(ctx context.Context, a Accessor, slot uint64) (V, bool, error) {
	var zero V
	key := v.keyFor(slot)
	raw, found, err := a.Get(ctx, types.Kernel, key)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}
	val, err := v.codec.DecodeValue(raw)
	if err != nil {
		return zero, false, &types.DecodeError{Namespace: types.Kernel, Key: key, Err: err}
	}
	return val, true, nil
}

// GetVisible is the user-space read: the entry at ws's visible slot.
func (v *VersionedStateValue[V, C]) GetVisible(ctx context.Context, ws *KernelWorkingSet) (V, bool, error) {
	return v.GetVersion(ctx, ws, ws.VisibleSlot())
}

// SetTrue writes val at ws's true slot — the only way Kernel namespace
// versioned state is ever written. Per §3, once a slot number becomes
// the visible slot its entry must never disappear; this method never
// deletes a prior version, so that invariant holds by construction.
func (v *VersionedStateValue[V, C]) SetTrue(ws *KernelWorkingSet, val V) error {
	return ws.inner.Set(types.Kernel, v.keyFor(ws.TrueSlot()), v.codec.EncodeValue(val))
}
