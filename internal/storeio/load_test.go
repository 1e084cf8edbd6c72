package storeio

import (
	"bytes"
	"testing"

	"github.com/scholarsmate/omega-match/internal/bloomfilter"
	"github.com/scholarsmate/omega-match/internal/buckettable"
	"github.com/scholarsmate/omega-match/internal/format"
	"github.com/scholarsmate/omega-match/internal/patternstore"
	"github.com/scholarsmate/omega-match/internal/shortmatch"
	"github.com/scholarsmate/omega-match/internal/xhash"
)

// build assembles a minimal but complete compiled store in memory, mirroring
// what the compiler does at Close time, so Load can be exercised without a
// real compiler.
func build(t *testing.T, withShort bool) []byte {
	t.Helper()

	var patBuf bytes.Buffer
	ps := patternstore.New(&patBuf)
	off1, _ := ps.Append([]byte("hello"))
	off2, _ := ps.Append([]byte("worldwide"))

	bt := buckettable.NewBuilder()
	bt.Add(xhash.Gram([]byte("hello")), off1, 5)
	bt.Add(xhash.Gram([]byte("worldwide")), off2, 9)
	occupied, minSize, maxSize := bt.Finalize()

	bf := bloomfilter.NewBuilder(len(bt.Keys()))
	for _, k := range bt.Keys() {
		bf.Insert(k)
	}

	var bloomBuf, bucketBuf, shortBuf bytes.Buffer
	if _, err := bf.WriteTo(&bloomBuf); err != nil {
		t.Fatalf("bloom WriteTo: %v", err)
	}
	bucketDataSize, err := bt.WriteTo(&bucketBuf)
	if err != nil {
		t.Fatalf("bucket WriteTo: %v", err)
	}

	var shortSize uint32
	if withShort {
		sm := shortmatch.NewBuilder()
		sm.Add([]byte("a"))
		sm.Add([]byte("ab"))
		n, err := sm.WriteTo(&shortBuf)
		if err != nil {
			t.Fatalf("short WriteTo: %v", err)
		}
		shortSize = uint32(n)
	}

	header := format.Header{
		Version:               format.Version,
		PatternStoreSize:      ps.Size(),
		PatternCount:          2,
		SmallestPatternLength: 5,
		LargestPatternLength:  9,
		BloomByteSize:         bf.ByteSize(),
		BucketDataByteSize:    bucketDataSize,
		IndexArrayLength:      bt.TableSize(),
		OccupiedBucketCount:   occupied,
		MinBucketSize:         minSize,
		MaxBucketSize:         maxSize,
		ShortMatcherByteSize:  shortSize,
	}

	var out bytes.Buffer
	out.Write(header.Encode())
	out.Write(patBuf.Bytes())
	out.Write(bloomBuf.Bytes())
	out.Write(bucketBuf.Bytes())
	if withShort {
		out.Write(shortBuf.Bytes())
	}
	return out.Bytes()
}

func TestLoadRoundTrip(t *testing.T) {
	buf := build(t, true)
	cs, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cs.Header.PatternCount != 2 {
		t.Fatalf("PatternCount = %d, want 2", cs.Header.PatternCount)
	}
	if string(cs.Patterns.Slice(0, 5)) != "hello" {
		t.Fatal("pattern store mismatch for offset 0")
	}
	bucket, found := cs.Buckets.Probe(xhash.Gram([]byte("hello")))
	if !found || bucket.Len() != 1 {
		t.Fatal("expected bucket hit for 'hello' gram")
	}
	if !cs.Bloom.Query(xhash.Gram([]byte("hello"))) {
		t.Fatal("bloom filter missing inserted gram")
	}
	if cs.Short == nil || !cs.Short.Query1('a') {
		t.Fatal("expected short matcher with 'a' registered")
	}
}

func TestLoadWithoutShortMatcher(t *testing.T) {
	buf := build(t, false)
	cs, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cs.Short != nil {
		t.Fatal("expected nil Short when header has no short matcher")
	}
}

func TestLoadRejectsTrailingBytes(t *testing.T) {
	buf := build(t, false)
	buf = append(buf, 0xFF)
	if _, err := Load(buf); err == nil {
		t.Fatal("expected error for trailing bytes")
	}
}

func TestLoadRejectsTruncatedBuffer(t *testing.T) {
	buf := build(t, true)
	if _, err := Load(buf[:len(buf)-10]); err == nil {
		t.Fatal("expected error for truncated buffer")
	}
}

func TestLoadRejectsShortHeader(t *testing.T) {
	if _, err := Load(make([]byte, 10)); err == nil {
		t.Fatal("expected error for buffer shorter than header")
	}
}
