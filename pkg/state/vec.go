package state

import (
	"context"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

var vecLenCodec = codec.Uint64ValueCodec{}
var vecIndexCodec = codec.Uint64KeyCodec{}

// StateVec stores prefix‖"len" as the authoritative element count and
// prefix‖encode_key(i) as element i. The length alone determines which
// indices are populated; Set never needs to check for a "hole" because
// none can exist below the stored length.
type StateVec[N NamespaceTag, V any, C codec.ValueCodec[V]] struct {
	prefix    []byte
	lenKey    []byte
	valueCode C
}

// NewStateVec builds a StateVec at prefix using value codec c.
func NewStateVec[N NamespaceTag, V any, C codec.ValueCodec[V]](prefix []byte, c C) *StateVec[N, V, C] {
	return &StateVec[N, V, C]{
		prefix:    append([]byte(nil), prefix...),
		lenKey:    append(append([]byte(nil), prefix...), []byte("len")...),
		valueCode: c,
	}
}

func (s *StateVec[N, V, C]) namespace() types.Namespace { return namespaceOf[N]() }

func (s *StateVec[N, V, C]) elemKey(i uint64) []byte {
	return append(append([]byte(nil), s.prefix...), vecIndexCodec.EncodeKey(i)...)
}

// Len returns the vector's current length, 0 if never written.
func (s *StateVec[N, V, C]) Len(ctx context.Context, a Accessor) (uint64, error) {
	raw, found, err := a.Get(ctx, s.namespace(), s.lenKey)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	n, err := vecLenCodec.DecodeValue(raw)
	if err != nil {
		return 0, &types.DecodeError{Namespace: s.namespace(), Key: s.lenKey, Err: err}
	}
	return n, nil
}

func (s *StateVec[N, V, C]) setLen(a Accessor, n uint64) error {
	return a.Set(s.namespace(), s.lenKey, vecLenCodec.EncodeValue(n))
}

// Push appends v, growing the length by one. The spec notes overflow at
// usize::MAX as an edge case; on a 64-bit length this is unreachable in
// practice and is left unchecked, matching how the teacher's own
// counters are implemented.
func (s *StateVec[N, V, C]) Push(ctx context.Context, a Accessor, v V) error {
	n, err := s.Len(ctx, a)
	if err != nil {
		return err
	}
	if err := a.Set(s.namespace(), s.elemKey(n), s.valueCode.EncodeValue(v)); err != nil {
		return err
	}
	return s.setLen(a, n+1)
}

// Pop removes and returns the last element, or found=false on an empty
// vector.
func (s *StateVec[N, V, C]) Pop(ctx context.Context, a Accessor) (V, bool, error) {
	var zero V
	n, err := s.Len(ctx, a)
	if err != nil {
		return zero, false, err
	}
	if n == 0 {
		return zero, false, nil
	}
	last := n - 1
	v, found, err := s.Get(ctx, a, last)
	if err != nil {
		return zero, false, err
	}
	if err := a.Delete(s.namespace(), s.elemKey(last)); err != nil {
		return zero, false, err
	}
	if err := s.setLen(a, last); err != nil {
		return zero, false, err
	}
	return v, found, nil
}

// Get returns element i, or found=false if i is at or beyond the
// current length.
func (s *StateVec[N, V, C]) Get(ctx context.Context, a Accessor, i uint64) (V, bool, error) {
	var zero V
	n, err := s.Len(ctx, a)
	if err != nil {
		return zero, false, err
	}
	if i >= n {
		return zero, false, nil
	}
	raw, found, err := a.Get(ctx, s.namespace(), s.elemKey(i))
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}
	v, err := s.valueCode.DecodeValue(raw)
	if err != nil {
		return zero, false, &types.DecodeError{Namespace: s.namespace(), Key: s.elemKey(i), Err: err}
	}
	return v, true, nil
}

// Set overwrites element i. i must be within [0, len); otherwise it
// fails with *types.IndexOutOfBoundsError rather than silently growing
// the vector (growth only happens through Push).
func (s *StateVec[N, V, C]) Set(ctx context.Context, a Accessor, i uint64, v V) error {
	n, err := s.Len(ctx, a)
	if err != nil {
		return err
	}
	if i >= n {
		return &types.IndexOutOfBoundsError{Index: i, Length: n}
	}
	return a.Set(s.namespace(), s.elemKey(i), s.valueCode.EncodeValue(v))
}
