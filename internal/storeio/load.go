// Package storeio assembles the read-side view of a compiled store from a
// single borrowed byte slice (typically a memory-mapped file), validating
// every section's magic and size against the global header before handing
// out zero-copy readers to the scan engine.
package storeio

import (
	"fmt"

	"github.com/scholarsmate/omega-match/internal/bloomfilter"
	"github.com/scholarsmate/omega-match/internal/buckettable"
	"github.com/scholarsmate/omega-match/internal/format"
	"github.com/scholarsmate/omega-match/internal/patternstore"
	"github.com/scholarsmate/omega-match/internal/shortmatch"
)

// CompiledStore is the fully parsed, read-only view of a compiled pattern
// store. Every field is a zero-copy slice or reader over the original
// buffer: nothing here is copied out of the mapping.
type CompiledStore struct {
	Header   format.Header
	Patterns *patternstore.Reader
	Bloom    *bloomfilter.Reader
	Buckets  *buckettable.Reader
	Short    *shortmatch.Reader // nil if the header has no short matcher
}

// Load parses buf (the full contents of a compiled store, however it was
// obtained) into a CompiledStore. It validates every section's magic and
// that buf is exactly the size the header claims: a truncated or
// over-length file is rejected rather than silently accepted.
func Load(buf []byte) (*CompiledStore, error) {
	if len(buf) < format.HeaderSize {
		return nil, fmt.Errorf("storeio: buffer too short for header: %d bytes", len(buf))
	}
	header, err := format.DecodeHeader(buf[:format.HeaderSize])
	if err != nil {
		return nil, fmt.Errorf("storeio: %w", err)
	}
	off := format.HeaderSize

	patEnd := off + int(header.PatternStoreSize)
	if patEnd > len(buf) {
		return nil, fmt.Errorf("storeio: pattern store extends past end of buffer")
	}
	patterns := patternstore.NewReader(buf[off:patEnd])
	off = patEnd

	bloomReader, consumed, err := bloomfilter.Parse(buf[off:])
	if err != nil {
		return nil, fmt.Errorf("storeio: bloom section: %w", err)
	}
	if consumed != int(header.BloomByteSize)+16 {
		return nil, fmt.Errorf("storeio: bloom section size mismatch: parsed %d, header claims %d", consumed, header.BloomByteSize+16)
	}
	off += consumed

	buckets, consumed, err := buckettable.Parse(buf[off:], header.IndexArrayLength, header.BucketDataByteSize)
	if err != nil {
		return nil, fmt.Errorf("storeio: hash index / bucket data: %w", err)
	}
	off += consumed

	var short *shortmatch.Reader
	if header.HasShortMatcher() {
		short, consumed, err = shortmatch.Parse(buf[off:])
		if err != nil {
			return nil, fmt.Errorf("storeio: short matcher: %w", err)
		}
		off += consumed
	}

	if off != len(buf) {
		return nil, fmt.Errorf("storeio: %d trailing bytes after last section", len(buf)-off)
	}

	return &CompiledStore{
		Header:   header,
		Patterns: patterns,
		Bloom:    bloomReader,
		Buckets:  buckets,
		Short:    short,
	}, nil
}
