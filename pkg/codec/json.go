package codec

import (
	"encoding/json"
	"fmt"
)

// JSONValueCodec is the default value codec: length-agnostic (the whole
// byte slice is the encoding, so no external length prefix is needed)
// and deterministic for any type whose JSON marshaling is deterministic
// (true for the plain structs and scalars modules store state as).
type JSONValueCodec[V any] struct{}

func (JSONValueCodec[V]) EncodeValue(v V) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Encoding is specified as total; a type that cannot marshal
		// is a programming error in the caller's container definition.
		panic(fmt.Sprintf("codec: value of type %T is not JSON-serializable: %v", v, err))
	}
	return b
}

func (JSONValueCodec[V]) DecodeValue(b []byte) (V, error) {
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		var zero V
		return zero, fmt.Errorf("codec: decoding %T: %w", v, err)
	}
	return v, nil
}
