package types

// HashSize is the fixed digest width every Hasher implementation must
// produce. JMT keys, node digests, and roots are all HashSize bytes.
const HashSize = 32

// Hash is a fixed-width digest.
type Hash [HashSize]byte

// IsZero reports whether the hash is the all-zero sentinel used to mean
// "no node here" (an exclusion witness target, an empty subtree).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Hasher is a 32-byte-output cryptographic hash with a streaming API. The
// JMT engine and witness machinery depend only on this interface, never
// on a concrete hash function, so the engine can be run with whatever
// digest the chain configuration picks.
type Hasher interface {
	// Write absorbs more bytes into the running digest. It never
	// returns an error, matching hash.Hash's contract.
	Write(p []byte) (n int, err error)
	// Sum32 finalizes and returns the digest. It does not reset the
	// hasher; call Reset first if it is to be reused.
	Sum32() Hash
	// Reset returns the hasher to its initial state.
	Reset()
}

// NewHasherFunc constructs a fresh, zeroed Hasher. Components that need a
// one-shot hash take this factory rather than a single shared instance so
// they can be used concurrently.
type NewHasherFunc func() Hasher

// HashOnce hashes a single buffer in one shot.
func HashOnce(newHasher NewHasherFunc, data []byte) Hash {
	h := newHasher()
	h.Write(data)
	return h.Sum32()
}
