package omegamatch

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// Mapper acquires a read-only byte view over a compiled store and releases
// it on Close. Open accepts any Mapper, so callers that can't or don't want
// to use an OS-level memory map (a store already loaded into a []byte, a
// network-backed blob) can supply their own.
type Mapper interface {
	Bytes() []byte
	Close() error
}

// byteSliceMapper adapts an in-memory buffer the caller already owns to the
// Mapper interface. Close is a no-op.
type byteSliceMapper struct{ data []byte }

func (m byteSliceMapper) Bytes() []byte { return m.data }
func (m byteSliceMapper) Close() error  { return nil }

// NewByteSliceMapper wraps an already-loaded compiled-store buffer as a
// Mapper, for callers that read the file themselves or keep the store
// entirely in memory.
func NewByteSliceMapper(data []byte) Mapper { return byteSliceMapper{data: data} }

// fileMapper is the default Mapper: a read-only OS memory map over a
// compiled-store file.
type fileMapper struct {
	region mmap.MMap
}

// Bytes returns the mapped region.
func (m *fileMapper) Bytes() []byte { return m.region }

// Close unmaps the region.
func (m *fileMapper) Close() error {
	if err := m.region.Unmap(); err != nil {
		return fmt.Errorf("omegamatch: unmap %w", wrapIOErr(err))
	}
	return nil
}

// mapFile opens path read-only and memory-maps its entire contents.
func mapFile(path string) (Mapper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FormatError{Detail: "open", Err: wrapIOErr(err)}
	}
	defer f.Close()

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("omegamatch: mmap %q: %w", path, wrapIOErr(err))
	}
	return &fileMapper{region: region}, nil
}

func wrapIOErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}
