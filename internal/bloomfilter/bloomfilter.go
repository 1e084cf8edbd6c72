// Package bloomfilter implements the power-of-two-sized Bloom filter that
// gates the long-path scan before a bucket-table probe is attempted. It
// uses the double-hashing technique from Kirsch and Mitzenmacher: two base
// hashes (h1, h2) derive all three probe positions via h1 + i*h2, avoiding
// the cost of three independent hash functions on the scan hot path.
package bloomfilter

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/scholarsmate/omega-match/internal/format"
	"github.com/scholarsmate/omega-match/internal/xhash"
)

const (
	bitsPerKey = 16
	numProbes  = 3
)

// Builder accumulates unique 4-byte gram keys and produces the bit array
// serialized into the compiled store.
type Builder struct {
	bits    []uint64 // bitSize/64 words
	bitSize uint32
}

// NewBuilder sizes a filter for nKeys expected unique grams at ~16 bits per
// key, rounded up to a whole power of two of 64-bit words.
func NewBuilder(nKeys int) *Builder {
	if nKeys < 1 {
		nKeys = 1
	}
	words := (uint64(nKeys)*bitsPerKey + 63) / 64
	bitSize := format.RoundUpPow2(words * 64)
	return &Builder{
		bits:    make([]uint64, bitSize/64),
		bitSize: uint32(bitSize),
	}
}

// Insert sets the three probe bits for gram. Repeated inserts of the same
// gram are idempotent.
func (b *Builder) Insert(gram uint32) {
	mask := b.bitSize - 1
	h1, h2 := probeSeeds(gram)
	b.setBit((h1) & mask)
	b.setBit((h1 + h2) & mask)
	b.setBit((h1 + 2*h2) & mask)
}

func (b *Builder) setBit(pos uint32) {
	b.bits[pos/64] |= 1 << (pos % 64)
}

// BitSize returns the bit-array size in bits (always a power of two).
func (b *Builder) BitSize() uint32 { return b.bitSize }

// ByteSize returns the serialized section's bit-array payload size in bytes,
// i.e. bitSize/8 (the section total also includes the 8-byte magic and
// 8-byte size+reserved prefix).
func (b *Builder) ByteSize() uint32 { return b.bitSize / 8 }

// WriteTo serializes the bloom section: magic, bit size, reserved, bit words.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	hdr := make([]byte, 16)
	copy(hdr[0:8], format.BloomMagic)
	binary.LittleEndian.PutUint32(hdr[8:12], b.bitSize)
	// hdr[12:16] reserved, left zero.
	n1, err := w.Write(hdr)
	if err != nil {
		return int64(n1), err
	}

	payload := make([]byte, len(b.bits)*8)
	for i, word := range b.bits {
		binary.LittleEndian.PutUint64(payload[i*8:], word)
	}
	n2, err := w.Write(payload)
	return int64(n1 + n2), err
}

// probeSeeds derives the two base hashes used for all three bit probes.
func probeSeeds(gram uint32) (h1, h2 uint32) {
	h1 = xhash.MixGram(gram)
	h2 = gram * 0x9e3779b1
	return h1, h2
}

// Reader is a read-only, zero-copy view over a serialized Bloom section.
type Reader struct {
	bits    []byte // raw bitSize/8 bytes, borrowed from the mapped store
	bitSize uint32
}

// Parse reads a Bloom section from the front of buf and returns the
// number of bytes consumed.
func Parse(buf []byte) (*Reader, int, error) {
	if len(buf) < 16 {
		return nil, 0, fmt.Errorf("bloomfilter: section too short")
	}
	if string(buf[0:8]) != format.BloomMagic {
		return nil, 0, fmt.Errorf("bloomfilter: bad magic %q", buf[0:8])
	}
	bitSize := binary.LittleEndian.Uint32(buf[8:12])
	if bitSize == 0 || bitSize&(bitSize-1) != 0 {
		return nil, 0, fmt.Errorf("bloomfilter: bit size %d is not a power of two", bitSize)
	}
	byteSize := int(bitSize / 8)
	end := 16 + byteSize
	if len(buf) < end {
		return nil, 0, fmt.Errorf("bloomfilter: truncated bit array: need %d bytes, have %d", byteSize, len(buf)-16)
	}
	return &Reader{bits: buf[16:end], bitSize: bitSize}, end, nil
}

// Query reports whether gram might be a member (false means definitely not).
func (r *Reader) Query(gram uint32) bool {
	mask := r.bitSize - 1
	h1, h2 := probeSeeds(gram)
	return r.testBit((h1)&mask) && r.testBit((h1+h2)&mask) && r.testBit((h1+2*h2)&mask)
}

func (r *Reader) testBit(pos uint32) bool {
	wordOff := (pos / 64) * 8
	word := binary.LittleEndian.Uint64(r.bits[wordOff : wordOff+8])
	return word&(1<<(pos%64)) != 0
}

// BitSize returns the bit-array size in bits.
func (r *Reader) BitSize() uint32 { return r.bitSize }
