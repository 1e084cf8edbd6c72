// Package bytescan provides portable SWAR (SIMD Within A Register) byte
// search primitives used to locate line-boundary bytes in a haystack and to
// split dictionary files into lines without an intermediate bufio.Scanner.
//
// The two routines here process 8 bytes at a time using uint64 bitwise
// tricks instead of a byte-by-byte loop, which keeps the hot line-boundary
// scan cheap even on inputs in the hundreds-of-megabytes range.
package bytescan

import (
	"encoding/binary"
	"math/bits"
)

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// Index returns the index of the first instance of needle in haystack, or -1
// if needle is not present.
//
// Small inputs (< 8 bytes) fall back to a byte-by-byte scan since the SWAR
// setup cost outweighs the benefit there.
func Index(haystack []byte, needle byte) int {
	n := len(haystack)
	if n == 0 {
		return -1
	}
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle {
				return i
			}
		}
		return -1
	}

	// Broadcast needle into every byte of a uint64: needle=0x42 -> 0x4242...42.
	needleMask := uint64(needle) * lo8

	i := 0
	for i+8 <= n {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		xor := chunk ^ needleMask

		// Zero-byte detection (Hacker's Delight): a byte in xor is zero iff
		// the corresponding haystack byte matched needle.
		hasZero := (xor - lo8) & ^xor & hi8
		if hasZero != 0 {
			return i + bits.TrailingZeros64(hasZero)/8
		}
		i += 8
	}
	for i < n {
		if haystack[i] == needle {
			return i
		}
		i++
	}
	return -1
}

// IndexEither returns the index of the first occurrence of either needle1 or
// needle2 in haystack, or -1 if neither is present. It is used to scan for
// line-boundary bytes ('\n' or '\r') in a single pass.
func IndexEither(haystack []byte, needle1, needle2 byte) int {
	n := len(haystack)
	if n == 0 {
		return -1
	}
	if n < 8 {
		for i := 0; i < n; i++ {
			b := haystack[i]
			if b == needle1 || b == needle2 {
				return i
			}
		}
		return -1
	}

	mask1 := uint64(needle1) * lo8
	mask2 := uint64(needle2) * lo8

	i := 0
	for i+8 <= n {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		xor1 := chunk ^ mask1
		xor2 := chunk ^ mask2

		hasZero1 := (xor1 - lo8) & ^xor1 & hi8
		hasZero2 := (xor2 - lo8) & ^xor2 & hi8
		hasZero := hasZero1 | hasZero2

		if hasZero != 0 {
			return i + bits.TrailingZeros64(hasZero)/8
		}
		i += 8
	}
	for i < n {
		b := haystack[i]
		if b == needle1 || b == needle2 {
			return i
		}
		i++
	}
	return -1
}
