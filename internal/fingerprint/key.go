// Package fingerprint derives comparable keys for candidate files.
//
// Two files with equal keys are assumed, not proven, to be identical. The
// checksum strategy hashes only the first and last KiB of large files, so
// equal keys mean "possibly identical" rather than byte-for-byte equal.
package fingerprint

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
)

// Key is a fingerprint. Keys are totally ordered by their raw bytes.
type Key [32]byte

// Compare orders keys lexicographically.
func (k Key) Compare(other Key) int {
	return bytes.Compare(k[:], other[:])
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// KeyFromUint64 embeds v so that key order matches numeric order.
func KeyFromUint64(v uint64) Key {
	var k Key
	binary.BigEndian.PutUint64(k[len(k)-8:], v)
	return k
}

// Pair associates a fingerprint with the file it was derived from and the
// byte size every member of that fingerprint's bucket shares.
type Pair struct {
	Key  Key
	Path string
	Size int64
}

// ComparePairs orders by key, then by path.
func ComparePairs(a, b Pair) int {
	if c := a.Key.Compare(b.Key); c != 0 {
		return c
	}
	switch {
	case a.Path < b.Path:
		return -1
	case a.Path > b.Path:
		return 1
	}
	return 0
}
