package codec

import (
	"encoding/binary"
	"fmt"
)

// StringKeyCodec encodes a string key as its raw UTF-8 bytes.
type StringKeyCodec struct{}

func (StringKeyCodec) EncodeKey(k string) []byte { return []byte(k) }

// BytesKeyCodec encodes a []byte key unchanged. Safe only when the
// container's prefix is itself unambiguous (no key is a prefix of
// another's concatenation boundary in a way that could alias), which
// holds for every fixed-prefix typed container defined in this module.
type BytesKeyCodec struct{}

func (BytesKeyCodec) EncodeKey(k []byte) []byte { return append([]byte(nil), k...) }

// Uint64KeyCodec encodes a uint64 key as 8 big-endian bytes, so that
// lexicographic byte order matches numeric order — this is what lets a
// StateVec's range of populated indices be represented by a single
// stored length rather than an explicit presence bitmap.
type Uint64KeyCodec struct{}

func (Uint64KeyCodec) EncodeKey(k uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, k)
	return buf
}

// Uint64ValueCodec encodes a uint64 value as 8 big-endian bytes. Used for
// StateVec's length slot and for any module state that is naturally a
// bare counter rather than a JSON document.
type Uint64ValueCodec struct{}

func (Uint64ValueCodec) EncodeValue(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func (Uint64ValueCodec) DecodeValue(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("codec: uint64 value must be exactly 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
