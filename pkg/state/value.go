package state

import (
	"context"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// StateValue maps a single prefix key to one encoded V. It never stores
// actual data itself: the prefix, codec, and namespace tag are all it
// holds, matching §3's "a typed container holds its prefix, its codec,
// and a namespace tag; it never stores actual data."
type StateValue[N NamespaceTag, V any, C codec.ValueCodec[V]] struct {
	prefix []byte
	codec  C
}

// NewStateValue builds a StateValue at prefix using codec c. Two
// containers sharing a prefix within the same namespace alias the same
// storage slot; callers must give each container its own prefix.
func NewStateValue[N NamespaceTag, V any, C codec.ValueCodec[V]](prefix []byte, c C) *StateValue[N, V, C] {
	return &StateValue[N, V, C]{prefix: append([]byte(nil), prefix...), codec: c}
}

func (s *StateValue[N, V, C]) namespace() types.Namespace { return namespaceOf[N]() }

// Get returns the decoded value, or found=false if nothing has been
// written yet.
func (s *StateValue[N, V, C]) Get(ctx context.Context, a Accessor) (V, bool, error) {
	var zero V
	raw, found, err := a.Get(ctx, s.namespace(), s.prefix)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}
	v, err := s.codec.DecodeValue(raw)
	if err != nil {
		return zero, false, &types.DecodeError{Namespace: s.namespace(), Key: s.prefix, Err: err}
	}
	return v, true, nil
}

// GetOrErr is Get, but an absent value is reported as a
// *types.MissingValueError rather than found=false.
func (s *StateValue[N, V, C]) GetOrErr(ctx context.Context, a Accessor) (V, error) {
	v, found, err := s.Get(ctx, a)
	if err != nil {
		return v, err
	}
	if !found {
		var zero V
		return zero, &types.MissingValueError{Namespace: s.namespace(), Key: s.prefix}
	}
	return v, nil
}

// Set encodes and writes v.
func (s *StateValue[N, V, C]) Set(a Accessor, v V) error {
	return a.Set(s.namespace(), s.prefix, s.codec.EncodeValue(v))
}

// Delete removes the value, if any.
func (s *StateValue[N, V, C]) Delete(a Accessor) error {
	return a.Delete(s.namespace(), s.prefix)
}
