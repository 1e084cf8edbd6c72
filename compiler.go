package omegamatch

import (
	"fmt"
	"os"

	"github.com/scholarsmate/omega-match/internal/bloomfilter"
	"github.com/scholarsmate/omega-match/internal/buckettable"
	"github.com/scholarsmate/omega-match/internal/conv"
	"github.com/scholarsmate/omega-match/internal/dedup"
	"github.com/scholarsmate/omega-match/internal/format"
	"github.com/scholarsmate/omega-match/internal/normalize"
	"github.com/scholarsmate/omega-match/internal/patternstore"
	"github.com/scholarsmate/omega-match/internal/shortmatch"
	"github.com/scholarsmate/omega-match/internal/xhash"
)

// Compiler builds a compiled store on disk, one pattern at a time. A
// Compiler owns its destination file and is not safe for concurrent use:
// callers needing to build several stores at once should use one Compiler
// per file from a single goroutine each.
type Compiler struct {
	f    *os.File
	path string

	caseFold, ignorePunct, elideWS bool
	table                          *normalize.Table

	dedup    *dedup.Set
	patterns *patternstore.Store
	buckets  *buckettable.Builder
	short    *shortmatch.Builder

	longCount      uint32
	duplicateCount uint32
	minLen, maxLen uint32
	closed         bool
}

// Create opens path for writing and returns a Compiler ready to accept
// patterns. caseFold, ignorePunct, and elideWS select the normalization
// rules applied to every pattern (and, later, to every haystack the
// resulting store scans).
func Create(path string, caseFold, ignorePunct, elideWS bool) (*Compiler, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &FormatError{Detail: "create", Err: wrapIOErr(err)}
	}
	if _, err := f.Write(make([]byte, format.HeaderSize)); err != nil {
		f.Close()
		return nil, &FormatError{Detail: "write header placeholder", Err: wrapIOErr(err)}
	}

	var table *normalize.Table
	if caseFold || ignorePunct || elideWS {
		table = normalize.NewTable(caseFold, ignorePunct, elideWS)
	}

	return &Compiler{
		f:           f,
		path:        path,
		caseFold:    caseFold,
		ignorePunct: ignorePunct,
		elideWS:     elideWS,
		table:       table,
		dedup:       dedup.New(),
		patterns:    patternstore.New(f),
		buckets:     buckettable.NewBuilder(),
		short:       shortmatch.NewBuilder(),
		minLen:      ^uint32(0),
	}, nil
}

// Add registers one pattern. Patterns that normalize to zero length are
// rejected as a PatternError. A pattern identical (after normalization, if
// any) to one already added is silently discarded and counted, not an
// error.
func (c *Compiler) Add(pattern []byte) error {
	p := pattern
	if c.table != nil {
		dst := make([]byte, len(pattern))
		n := c.table.Apply(pattern, dst, make([]int, len(pattern)))
		p = dst[:n]
	}
	if len(p) == 0 {
		return &PatternError{Pattern: pattern, Reason: "normalizes to empty pattern"}
	}

	if !c.dedup.Add(p) {
		c.duplicateCount++
		return nil
	}

	n := uint32(len(p))
	if n < c.minLen {
		c.minLen = n
	}
	if n > c.maxLen {
		c.maxLen = n
	}

	if len(p) <= 4 {
		c.short.Add(p)
		return nil
	}

	offset, err := c.patterns.Append(p)
	if err != nil {
		return fmt.Errorf("omegamatch: %w", err)
	}
	gram := xhash.Gram(p[:4])
	c.buckets.Add(gram, offset, conv.IntToUint32(len(p)))
	c.longCount++
	return nil
}

// Close finalizes every section (Bloom filter, hash bucket table, short
// matcher), rewrites the global header now that every size is known, and
// closes the destination file. A Compiler must not be used after Close.
func (c *Compiler) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	keys := c.buckets.Keys()
	bloom := bloomfilter.NewBuilder(len(keys))
	for _, k := range keys {
		bloom.Insert(k)
	}
	if _, err := bloom.WriteTo(c.f); err != nil {
		c.f.Close()
		return fmt.Errorf("omegamatch: write bloom section: %w", wrapIOErr(err))
	}

	occupied, minBucket, maxBucket := c.buckets.Finalize()
	bucketDataSize, err := c.buckets.WriteTo(c.f)
	if err != nil {
		c.f.Close()
		return fmt.Errorf("omegamatch: write bucket table: %w", wrapIOErr(err))
	}

	var shortSize uint32
	if c.short.Len1Count()+c.short.Len2Count()+c.short.Len3Count()+c.short.Len4Count() > 0 {
		if _, err := c.short.WriteTo(c.f); err != nil {
			c.f.Close()
			return fmt.Errorf("omegamatch: write short matcher: %w", wrapIOErr(err))
		}
		shortSize = conv.IntToUint32(c.short.ByteSize())
	}

	minLen, maxLen := c.minLen, c.maxLen
	if minLen == ^uint32(0) {
		minLen, maxLen = 0, 0
	}

	var loadFactor, avgBucketSize float32
	if occupied > 0 {
		loadFactor = float32(occupied) / float32(c.buckets.TableSize())
		avgBucketSize = float32(c.longCount) / float32(occupied)
	}

	header := format.Header{
		Version:               format.Version,
		Flags:                 c.flags(),
		PatternStoreSize:      c.patterns.Size(),
		PatternCount:          c.longCount,
		SmallestPatternLength: minLen,
		LargestPatternLength:  maxLen,
		BloomByteSize:         bloom.ByteSize(),
		BucketDataByteSize:    bucketDataSize,
		IndexArrayLength:      c.buckets.TableSize(),
		OccupiedBucketCount:   occupied,
		MinBucketSize:         minBucket,
		MaxBucketSize:         maxBucket,
		ShortMatcherByteSize:  shortSize,
		LoadFactor:            loadFactor,
		AverageBucketSize:     avgBucketSize,
	}

	if _, err := c.f.Seek(0, 0); err != nil {
		c.f.Close()
		return fmt.Errorf("omegamatch: seek to header: %w", wrapIOErr(err))
	}
	if _, err := c.f.Write(header.Encode()); err != nil {
		c.f.Close()
		return fmt.Errorf("omegamatch: write header: %w", wrapIOErr(err))
	}

	if err := c.f.Close(); err != nil {
		return fmt.Errorf("omegamatch: close: %w", wrapIOErr(err))
	}
	return nil
}

// DuplicateCount returns the number of patterns discarded so far because an
// identical (post-normalization) pattern was already present.
func (c *Compiler) DuplicateCount() uint32 { return c.duplicateCount }

func (c *Compiler) flags() uint32 {
	var f uint32
	if c.caseFold {
		f |= format.FlagCaseFold
	}
	if c.ignorePunct {
		f |= format.FlagIgnorePunct
	}
	if c.elideWS {
		f |= format.FlagElideWS
	}
	return f
}
