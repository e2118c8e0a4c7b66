package state

import (
	"context"

	"github.com/dubhe-sub002/rollup-state/pkg/codec"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// StateMap maps prefix ‖ encode_key(K) to an encoded V.
type StateMap[N NamespaceTag, K, V any, C codec.Codec[K, V]] struct {
	prefix []byte
	codec  C
}

// NewStateMap builds a StateMap at prefix using codec c.
func NewStateMap[N NamespaceTag, K, V any, C codec.Codec[K, V]](prefix []byte, c C) *StateMap[N, K, V, C] {
	return &StateMap[N, K, V, C]{prefix: append([]byte(nil), prefix...), codec: c}
}

func (m *StateMap[N, K, V, C]) namespace() types.Namespace { return namespaceOf[N]() }

func (m *StateMap[N, K, V, C]) fullKey(k K) []byte {
	return append(append([]byte(nil), m.prefix...), m.codec.EncodeKey(k)...)
}

// Get returns the decoded value for k, or found=false if absent.
func (m *StateMap[N, K, V, C]) Get(ctx context.Context, a Accessor, k K) (V, bool, error) {
	var zero V
	fullKey := m.fullKey(k)
	raw, found, err := a.Get(ctx, m.namespace(), fullKey)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}
	v, err := m.codec.DecodeValue(raw)
	if err != nil {
		return zero, false, &types.DecodeError{Namespace: m.namespace(), Key: fullKey, Err: err}
	}
	return v, true, nil
}

// Set encodes and writes v at k.
func (m *StateMap[N, K, V, C]) Set(a Accessor, k K, v V) error {
	return a.Set(m.namespace(), m.fullKey(k), m.codec.EncodeValue(v))
}

// Remove deletes k and returns the value it held, if any.
func (m *StateMap[N, K, V, C]) Remove(ctx context.Context, a Accessor, k K) (V, bool, error) {
	v, found, err := m.Get(ctx, a, k)
	if err != nil {
		return v, false, err
	}
	if !found {
		return v, false, nil
	}
	if err := a.Delete(m.namespace(), m.fullKey(k)); err != nil {
		return v, false, err
	}
	return v, true, nil
}
