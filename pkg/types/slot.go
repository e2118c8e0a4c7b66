package types

import "bytes"

// SlotKey is the opaque byte sequence under which a single storage slot is
// addressed. It is built either as prefix‖encoded-item-key (a typed
// container's usual shape) or as a bare singleton prefix for one-off
// values. SlotKey never owns more than one backing array, so cloning it
// only copies a slice header.
type SlotKey struct {
	b []byte
}

// NewSlotKey concatenates a container's prefix with an encoded item key.
func NewSlotKey(prefix, encodedKey []byte) SlotKey {
	buf := make([]byte, 0, len(prefix)+len(encodedKey))
	buf = append(buf, prefix...)
	buf = append(buf, encodedKey...)
	return SlotKey{b: buf}
}

// Singleton builds a SlotKey out of a bare prefix, for containers that
// hold exactly one value (StateValue, StateVec's length slot).
func Singleton(prefix []byte) SlotKey {
	return SlotKey{b: append([]byte(nil), prefix...)}
}

// SlotKeyFromBytes wraps an already-encoded key, e.g. one read back off
// the wire or out of a witness hint.
func SlotKeyFromBytes(b []byte) SlotKey {
	return SlotKey{b: b}
}

// Bytes returns the key's byte representation. Callers must not mutate
// the returned slice.
func (k SlotKey) Bytes() []byte { return k.b }

// Clone returns a SlotKey sharing the same backing array; SlotKeys are
// treated as immutable once constructed, so no copy is required.
func (k SlotKey) Clone() SlotKey { return k }

// Equal reports whether two keys address the same slot.
func (k SlotKey) Equal(other SlotKey) bool { return bytes.Equal(k.b, other.b) }

// SlotValue is the opaque byte sequence stored for a slot. Like SlotKey,
// it is cheap to clone because it is treated as immutable.
type SlotValue struct {
	b []byte
}

// NewSlotValue wraps already-encoded value bytes.
func NewSlotValue(b []byte) SlotValue { return SlotValue{b: b} }

// Bytes returns the value's byte representation. Callers must not mutate
// the returned slice.
func (v SlotValue) Bytes() []byte { return v.b }

// Clone returns a SlotValue sharing the same backing array.
func (v SlotValue) Clone() SlotValue { return v }

// Equal reports whether two values hold the same bytes.
func (v SlotValue) Equal(other SlotValue) bool { return bytes.Equal(v.b, other.b) }
