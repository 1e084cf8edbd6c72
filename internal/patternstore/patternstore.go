// Package patternstore implements the append-only blob that holds every
// long-path pattern (length >= 5), deduplicated before being written. It is
// intentionally thin: the dedup set is owned and shared by the caller (the
// compiler also routes length 1-4 patterns through the same set before they
// reach the short matcher), so patternstore only ever appends bytes that the
// caller has already confirmed are new.
package patternstore

import (
	"fmt"
	"io"
)

// Store is an append-only sink for deduplicated long-path pattern bytes. It
// tracks the running byte offset so callers can record where each pattern
// landed without seeking.
type Store struct {
	w    io.Writer
	size uint64
}

// New wraps w as a pattern-store sink. w must already be positioned at the
// start of the pattern-store region (immediately after the global header).
func New(w io.Writer) *Store {
	return &Store{w: w}
}

// Append writes buf to the store and returns the absolute offset (from the
// start of the pattern-store region) at which it was written. The caller is
// responsible for deduplication: Append unconditionally writes.
func (s *Store) Append(buf []byte) (offset uint64, err error) {
	offset = s.size
	n, err := s.w.Write(buf)
	s.size += uint64(n)
	if err != nil {
		return offset, fmt.Errorf("patternstore: write failed: %w", err)
	}
	return offset, nil
}

// Size returns the number of bytes written so far.
func (s *Store) Size() uint64 { return s.size }

// Reader is a read-only, zero-copy view over a pattern-store region.
type Reader struct {
	data []byte
}

// NewReader wraps the raw pattern-store bytes sliced out of the mapped
// compiled store.
func NewReader(data []byte) *Reader { return &Reader{data: data} }

// Slice returns the pattern stored at [offset, offset+length) without
// copying. It panics if the range falls outside the store, which would
// indicate a corrupt compiled store (the loader validates bounds up front).
func (r *Reader) Slice(offset uint64, length uint32) []byte {
	end := offset + uint64(length)
	if end > uint64(len(r.data)) {
		panic(fmt.Sprintf("patternstore: slice [%d:%d) out of bounds (size %d)", offset, end, len(r.data)))
	}
	return r.data[offset:end]
}

// Len returns the total size of the pattern store in bytes.
func (r *Reader) Len() int { return len(r.data) }
