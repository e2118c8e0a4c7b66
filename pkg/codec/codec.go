// Package codec provides the pluggable key/value encodings typed state
// containers are parameterized by. A codec must be deterministic: the
// same logical value always produces the same bytes, since map lookups
// and JMT leaf identity depend on exact byte equality.
package codec

// KeyCodec encodes a container's logical key type into the bytes that
// get appended to its prefix to form a full SlotKey.
type KeyCodec[K any] interface {
	EncodeKey(k K) []byte
}

// ValueCodec encodes and decodes a container's logical value type.
// EncodeValue is total; DecodeValue is partial and reports a decode
// error on malformed bytes.
type ValueCodec[V any] interface {
	EncodeValue(v V) []byte
	DecodeValue(b []byte) (V, error)
}

// Codec bundles a key codec and a value codec for one typed container.
type Codec[K, V any] interface {
	KeyCodec[K]
	ValueCodec[V]
}
