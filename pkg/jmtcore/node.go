package jmtcore

import (
	"encoding/binary"
	"fmt"

	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// node is the in-memory representation of one tree node. Nodes are
// content-addressed: a node's storage key is its own hash, so two
// subtrees with identical contents (e.g. across versions) are stored
// once.
type node struct {
	isLeaf bool

	// internal node fields
	left, right types.Hash

	// leaf node fields
	keyHash types.Hash
	value   []byte
}

func (n *node) hash() types.Hash {
	if n.isLeaf {
		return hashLeaf(n.keyHash, types.HashOnce(NewHasher, n.value))
	}
	return hashInternal(n.left, n.right)
}

const (
	tagLeaf     byte = 0x00
	tagInternal byte = 0x01
)

func encodeNode(n *node) []byte {
	if n.isLeaf {
		out := make([]byte, 0, 1+types.HashSize+4+len(n.value))
		out = append(out, tagLeaf)
		out = append(out, n.keyHash[:]...)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(n.value)))
		out = append(out, lenBuf[:]...)
		out = append(out, n.value...)
		return out
	}
	out := make([]byte, 0, 1+2*types.HashSize)
	out = append(out, tagInternal)
	out = append(out, n.left[:]...)
	out = append(out, n.right[:]...)
	return out
}

func decodeNode(b []byte) (*node, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("jmtcore: empty node encoding")
	}
	switch b[0] {
	case tagLeaf:
		if len(b) < 1+types.HashSize+4 {
			return nil, fmt.Errorf("jmtcore: truncated leaf node")
		}
		n := &node{isLeaf: true}
		copy(n.keyHash[:], b[1:1+types.HashSize])
		off := 1 + types.HashSize
		vlen := binary.BigEndian.Uint32(b[off : off+4])
		off += 4
		if len(b) < off+int(vlen) {
			return nil, fmt.Errorf("jmtcore: truncated leaf value")
		}
		n.value = append([]byte(nil), b[off:off+int(vlen)]...)
		return n, nil
	case tagInternal:
		if len(b) < 1+2*types.HashSize {
			return nil, fmt.Errorf("jmtcore: truncated internal node")
		}
		n := &node{isLeaf: false}
		copy(n.left[:], b[1:1+types.HashSize])
		copy(n.right[:], b[1+types.HashSize:1+2*types.HashSize])
		return n, nil
	default:
		return nil, fmt.Errorf("jmtcore: unknown node tag %x", b[0])
	}
}

// bitAt reports the bit at position depth (0 = most significant bit of
// the first byte) of a 256-bit key hash, used to walk the tree from
// root to leaf.
func bitAt(h types.Hash, depth int) int {
	byteIdx := depth / 8
	bitIdx := 7 - uint(depth%8)
	return int((h[byteIdx] >> bitIdx) & 1)
}
