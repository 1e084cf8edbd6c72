package buckettable

import (
	"encoding/binary"
	"fmt"

	"github.com/scholarsmate/omega-match/internal/format"
	"github.com/scholarsmate/omega-match/internal/xhash"
)

const sentinelOffset uint32 = 0xFFFFFFFF

// Reader is a read-only, zero-copy view over the serialized hash index and
// bucket-data sections.
type Reader struct {
	index      []byte // tableSize*4 raw bytes
	bucketData []byte
	tableSize  uint32
	mask       uint32
}

// Parse reads the hash-index section (magic + slot array) from the front of
// buf, then consumes bucketDataSize bytes of bucket data immediately after
// it. tableSize is taken from the global header (IndexArrayLength).
func Parse(buf []byte, tableSize, bucketDataSize uint32) (*Reader, int, error) {
	if tableSize == 0 || tableSize&(tableSize-1) != 0 {
		return nil, 0, fmt.Errorf("buckettable: table size %d is not a power of two", tableSize)
	}
	indexBytes := int(tableSize) * 4
	need := 8 + indexBytes + int(bucketDataSize)
	if len(buf) < need {
		return nil, 0, fmt.Errorf("buckettable: section too short: need %d bytes, have %d", need, len(buf))
	}
	if string(buf[0:8]) != format.HashIndexMagic {
		return nil, 0, fmt.Errorf("buckettable: bad magic %q", buf[0:8])
	}
	index := buf[8 : 8+indexBytes]
	bucketData := buf[8+indexBytes : need]
	return &Reader{index: index, bucketData: bucketData, tableSize: tableSize, mask: tableSize - 1}, need, nil
}

// Bucket is a read-only view over one occupied bucket's serialized items,
// already sorted by descending length.
type Bucket struct {
	data  []byte
	count uint32
}

// Len returns the number of patterns stored in the bucket.
func (bk Bucket) Len() int { return int(bk.count) }

// Item returns the (offset, length) of the i-th pattern in the bucket.
func (bk Bucket) Item(i int) (offset uint64, length uint32) {
	base := i * format.BucketItemSize
	offset = binary.LittleEndian.Uint64(bk.data[base : base+8])
	length = binary.LittleEndian.Uint32(bk.data[base+8 : base+12])
	return offset, length
}

// Probe looks up gram in the index, returning its Bucket and true on a hit,
// or a zero Bucket and false if the gram has no entry.
func (r *Reader) Probe(gram uint32) (Bucket, bool) {
	idx := xhash.MixGram(gram) & r.mask
	for i := uint32(0); i < r.tableSize; i++ {
		slotOff := binary.LittleEndian.Uint32(r.index[idx*4 : idx*4+4])
		if slotOff == sentinelOffset {
			return Bucket{}, false
		}
		key := binary.LittleEndian.Uint32(r.bucketData[slotOff : slotOff+4])
		if key == gram {
			count := binary.LittleEndian.Uint32(r.bucketData[slotOff+4 : slotOff+8])
			itemsStart := slotOff + format.BucketRecordHeaderSize
			itemsEnd := itemsStart + count*format.BucketItemSize
			return Bucket{data: r.bucketData[itemsStart:itemsEnd], count: count}, true
		}
		idx = (idx + 1) & r.mask
	}
	return Bucket{}, false
}

// TableSize returns the index-array length.
func (r *Reader) TableSize() uint32 { return r.tableSize }
