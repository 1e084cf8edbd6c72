// Package xhash provides the fixed hash primitives shared by the dedup set,
// the Bloom filter, and the hash bucket table: a 32-bit finalizer-style
// mixer for 4-byte grams, an FNV-1a hash over arbitrary buffers, and a mixer
// for single 32-bit keys. All constants are load-bearing: the compiled-store
// format is bit-exact, so changing a multiplier here changes where every
// pattern lands in the bucket table.
package xhash

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

// Gram packs the first four bytes of a pattern (or haystack window) into a
// big-endian 32-bit key, which is the hash-table and Bloom-filter key for
// the long-path matcher.
func Gram(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// MixGram is the finalizer-style avalanche mixer applied to a 4-byte gram
// before it is used as a bucket-table or Bloom index: three xor-shift +
// multiply rounds, using the same constants as Murmur3's fmix32.
func MixGram(g uint32) uint32 {
	g ^= g >> 16
	g *= 0x85ebca6b
	g ^= g >> 13
	g *= 0xc2b2ae35
	g ^= g >> 16
	return g
}

// MixKey mixes a single 32-bit key, used to seed the bucket index for
// structures keyed on something other than a raw 4-byte gram.
func MixKey(x uint32) uint32 {
	return (x ^ 0x9e3779b9) * 0x01000193
}

// FNV1a hashes an arbitrary byte buffer using the 32-bit FNV-1a algorithm.
// It is used by the dedup set, which must hash patterns of any length
// (unlike the gram-keyed structures, which only ever hash the first four
// bytes of patterns of length >= 5).
func FNV1a(b []byte) uint32 {
	h := fnvOffset32
	for _, c := range b {
		h ^= uint32(c)
		h *= fnvPrime32
	}
	return h
}
