// Package buckettable implements the Robin-Hood open-addressed hash table
// that maps a pattern's leading 4-byte gram to the list of long-path
// patterns (length >= 5) sharing that gram. At build time each occupied
// slot owns a growable list of (offset, length) tuples into the pattern
// store; at serialize time those lists are flattened into the packed
// bucket-data layout read directly by the scan engine (no allocation on the
// read path: it walks the packed record by pointer arithmetic over the
// borrowed mapping).
package buckettable

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/scholarsmate/omega-match/internal/format"
	"github.com/scholarsmate/omega-match/internal/xhash"
)

const (
	initialCapacity = 8192
	maxLoadFactor   = 0.9
	emptyPSL        = -1
)

// Item is one (pattern-offset, pattern-length) tuple stored in a bucket.
type Item struct {
	Offset uint64
	Length uint32
}

type bslot struct {
	psl   int32
	key   uint32
	items []Item
}

// Builder accumulates patterns into buckets keyed by their leading 4-byte
// gram, using Robin-Hood open addressing over the bucket keys themselves
// (not over individual patterns: patterns sharing a gram share a slot).
type Builder struct {
	slots []bslot
	mask  uint32
	count uint32
}

// NewBuilder creates an empty builder with the spec-mandated initial
// capacity of 8192 slots.
func NewBuilder() *Builder {
	return &Builder{
		slots: newSlots(initialCapacity),
		mask:  initialCapacity - 1,
	}
}

func newSlots(capacity uint32) []bslot {
	s := make([]bslot, capacity)
	for i := range s {
		s[i].psl = emptyPSL
	}
	return s
}

// Add records a pattern of the given gram key, offset, and length. Patterns
// sharing a gram append to the same bucket's item list.
func (b *Builder) Add(key uint32, offset uint64, length uint32) {
	if idx, found := b.find(key); found {
		b.slots[idx].items = append(b.slots[idx].items, Item{Offset: offset, Length: length})
		return
	}

	if float64(b.count+1) > float64(len(b.slots))*maxLoadFactor {
		b.grow()
	}
	b.emplace(bslot{psl: 0, key: key, items: []Item{{Offset: offset, Length: length}}})
}

func (b *Builder) find(key uint32) (idx uint32, found bool) {
	idx = xhash.MixGram(key) & b.mask
	for psl := int32(0); psl <= b.slots[idx].psl; psl++ {
		if b.slots[idx].psl != emptyPSL && b.slots[idx].key == key {
			return idx, true
		}
		idx = (idx + 1) & b.mask
	}
	return idx, false
}

func (b *Builder) emplace(e bslot) {
	idx := xhash.MixGram(e.key) & b.mask
	for {
		cur := &b.slots[idx]
		if cur.psl == emptyPSL {
			*cur = e
			b.count++
			return
		}
		if e.psl > cur.psl {
			e, *cur = *cur, e
		}
		e.psl++
		idx = (idx + 1) & b.mask
	}
}

func (b *Builder) grow() {
	old := b.slots
	newCap := uint32(len(old)) * 2
	b.slots = newSlots(newCap)
	b.mask = newCap - 1
	b.count = 0
	for _, sl := range old {
		if sl.psl != emptyPSL {
			b.emplace(bslot{psl: 0, key: sl.key, items: sl.items})
		}
	}
}

// Finalize sorts every occupied bucket's item list by descending length (so
// the scan visits longer candidates first) and returns summary statistics
// used to populate the global header.
func (b *Builder) Finalize() (occupied, minSize, maxSize uint32) {
	minSize = ^uint32(0)
	for i := range b.slots {
		sl := &b.slots[i]
		if sl.psl == emptyPSL {
			continue
		}
		sort.Slice(sl.items, func(a, c int) bool { return sl.items[a].Length > sl.items[c].Length })
		occupied++
		n := uint32(len(sl.items))
		if n < minSize {
			minSize = n
		}
		if n > maxSize {
			maxSize = n
		}
	}
	if occupied == 0 {
		minSize = 0
	}
	return occupied, minSize, maxSize
}

// Keys returns every occupied bucket's gram key, used to seed the Bloom
// filter with exactly the keys the scan engine will ever probe for.
func (b *Builder) Keys() []uint32 {
	keys := make([]uint32, 0, b.count)
	for i := range b.slots {
		if b.slots[i].psl != emptyPSL {
			keys = append(keys, b.slots[i].key)
		}
	}
	return keys
}

// TableSize returns the current index-array length (always a power of two).
func (b *Builder) TableSize() uint32 { return b.mask + 1 }

// WriteTo serializes the hash index (magic + slot array) followed by the
// bucket-data region, in slot order. It returns the bucket-data byte size,
// which the caller needs for the global header.
func (b *Builder) WriteTo(w io.Writer) (bucketDataSize uint32, err error) {
	tableSize := b.TableSize()

	// Pass 1: compute each occupied slot's offset within the bucket-data
	// region so the index array can be written before the data itself.
	offsets := make([]uint32, tableSize)
	var running uint32
	for i := uint32(0); i < tableSize; i++ {
		sl := &b.slots[i]
		if sl.psl == emptyPSL {
			offsets[i] = 0xFFFFFFFF
			continue
		}
		offsets[i] = running
		running += format.BucketRecordHeaderSize + uint32(len(sl.items))*format.BucketItemSize
	}
	bucketDataSize = running

	hdr := []byte(format.HashIndexMagic)
	if _, err = w.Write(hdr); err != nil {
		return 0, fmt.Errorf("buckettable: write index magic: %w", err)
	}
	indexBuf := make([]byte, tableSize*4)
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(indexBuf[i*4:], off)
	}
	if _, err = w.Write(indexBuf); err != nil {
		return 0, fmt.Errorf("buckettable: write index array: %w", err)
	}

	// Pass 2: write the bucket-data region in the same slot order.
	for i := uint32(0); i < tableSize; i++ {
		sl := &b.slots[i]
		if sl.psl == emptyPSL {
			continue
		}
		rec := make([]byte, format.BucketRecordHeaderSize+len(sl.items)*format.BucketItemSize)
		binary.LittleEndian.PutUint32(rec[0:4], sl.key)
		binary.LittleEndian.PutUint32(rec[4:8], uint32(len(sl.items)))
		for j, it := range sl.items {
			base := format.BucketRecordHeaderSize + j*format.BucketItemSize
			binary.LittleEndian.PutUint64(rec[base:base+8], it.Offset)
			binary.LittleEndian.PutUint32(rec[base+8:base+12], it.Length)
			// rec[base+12:base+16] reserved, left zero.
		}
		if _, err = w.Write(rec); err != nil {
			return 0, fmt.Errorf("buckettable: write bucket record: %w", err)
		}
	}
	return bucketDataSize, nil
}
