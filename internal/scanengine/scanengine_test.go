package scanengine

import (
	"bytes"
	"sort"
	"testing"

	"github.com/scholarsmate/omega-match/internal/bloomfilter"
	"github.com/scholarsmate/omega-match/internal/buckettable"
	"github.com/scholarsmate/omega-match/internal/format"
	"github.com/scholarsmate/omega-match/internal/matchresult"
	"github.com/scholarsmate/omega-match/internal/patternstore"
	"github.com/scholarsmate/omega-match/internal/shortmatch"
	"github.com/scholarsmate/omega-match/internal/storeio"
	"github.com/scholarsmate/omega-match/internal/xhash"
)

// buildStore compiles longPatterns (length >= 5) and shortPatterns (length
// 1-4) into an in-memory CompiledStore, mirroring what the real compiler
// does at Close time.
func buildStore(t *testing.T, longPatterns, shortPatterns []string) *storeio.CompiledStore {
	t.Helper()

	var patBuf bytes.Buffer
	ps := patternstore.New(&patBuf)
	bt := buckettable.NewBuilder()

	var largest, smallest uint32 = 0, ^uint32(0)
	for _, p := range longPatterns {
		off, err := ps.Append([]byte(p))
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		bt.Add(xhash.Gram([]byte(p)), off, uint32(len(p)))
		if uint32(len(p)) > largest {
			largest = uint32(len(p))
		}
		if uint32(len(p)) < smallest {
			smallest = uint32(len(p))
		}
	}
	occupied, minSize, maxSize := bt.Finalize()

	bf := bloomfilter.NewBuilder(len(bt.Keys()))
	for _, k := range bt.Keys() {
		bf.Insert(k)
	}

	sm := shortmatch.NewBuilder()
	for _, p := range shortPatterns {
		sm.Add([]byte(p))
		if uint32(len(p)) > largest {
			largest = uint32(len(p))
		}
		if uint32(len(p)) < smallest {
			smallest = uint32(len(p))
		}
	}

	var bloomBuf, bucketBuf, shortBuf bytes.Buffer
	if _, err := bf.WriteTo(&bloomBuf); err != nil {
		t.Fatalf("bloom WriteTo: %v", err)
	}
	bucketDataSize, err := bt.WriteTo(&bucketBuf)
	if err != nil {
		t.Fatalf("bucket WriteTo: %v", err)
	}
	var shortSize int64
	if len(shortPatterns) > 0 {
		shortSize, err = sm.WriteTo(&shortBuf)
		if err != nil {
			t.Fatalf("short WriteTo: %v", err)
		}
	}
	if smallest == ^uint32(0) {
		smallest = 0
	}

	header := format.Header{
		Version:               format.Version,
		PatternStoreSize:      ps.Size(),
		PatternCount:          uint32(len(longPatterns) + len(shortPatterns)),
		SmallestPatternLength: smallest,
		LargestPatternLength:  largest,
		BloomByteSize:         bf.ByteSize(),
		BucketDataByteSize:    bucketDataSize,
		IndexArrayLength:      bt.TableSize(),
		OccupiedBucketCount:   occupied,
		MinBucketSize:         minSize,
		MaxBucketSize:         maxSize,
		ShortMatcherByteSize:  uint32(shortSize),
	}

	var out bytes.Buffer
	out.Write(header.Encode())
	out.Write(patBuf.Bytes())
	out.Write(bloomBuf.Bytes())
	out.Write(bucketBuf.Bytes())
	if len(shortPatterns) > 0 {
		out.Write(shortBuf.Bytes())
	}

	cs, err := storeio.Load(out.Bytes())
	if err != nil {
		t.Fatalf("storeio.Load: %v", err)
	}
	return cs
}

func sortedStrings(haystack string, matches []matchresult.Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = haystack[m.Start:m.End]
	}
	sort.Strings(out)
	return out
}

func TestScanFindsLongAndShortPatterns(t *testing.T) {
	cs := buildStore(t, []string{"hello", "world"}, []string{"a", "is"})
	e := New(cs, false, false, false)

	haystack := "a hello world is nice"
	matches, stats := e.Scan([]byte(haystack), Options{})

	got := sortedStrings(haystack, matches)
	want := []string{"a", "hello", "is", "world"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if stats.Hits == 0 {
		t.Fatal("expected non-zero hits")
	}
}

func TestScanRejectsBloomFalsePositiveCandidate(t *testing.T) {
	cs := buildStore(t, []string{"needle"}, nil)
	e := New(cs, false, false, false)

	matches, _ := e.Scan([]byte("this haystack has no match at all"), Options{})
	if len(matches) != 0 {
		t.Fatalf("got %v matches, want none", matches)
	}
}

func TestScanOverlappingPatterns(t *testing.T) {
	cs := buildStore(t, []string{"testing"}, []string{"test"})
	e := New(cs, false, false, false)

	haystack := "testing"
	matches, _ := e.Scan([]byte(haystack), Options{})
	got := sortedStrings(haystack, matches)
	want := []string{"test", "testing"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanWordBoundaryRejectsEmbeddedMatch(t *testing.T) {
	cs := buildStore(t, nil, []string{"cat"})
	e := New(cs, false, false, false)

	matches, _ := e.Scan([]byte("category cat"), Options{WordBoundary: true})
	got := sortedStrings("category cat", matches)
	if len(got) != 1 || got[0] != "cat" {
		t.Fatalf("got %v, want [cat]", got)
	}
}

func TestScanLineStartAnchor(t *testing.T) {
	cs := buildStore(t, []string{"error"}, nil)
	e := New(cs, false, false, false)

	haystack := "no error here\nerror at start"
	matches, _ := e.Scan([]byte(haystack), Options{LineStart: true})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if haystack[matches[0].Start:matches[0].End] != "error" {
		t.Fatalf("matched %q, want error", haystack[matches[0].Start:matches[0].End])
	}
	if matches[0].Start != 14 {
		t.Fatalf("Start = %d, want 14", matches[0].Start)
	}
}

func TestScanWithCaseFoldNormalization(t *testing.T) {
	cs := buildStore(t, []string{"HELLO"}, nil)
	e := New(cs, true, false, false)

	haystack := "say hello now"
	matches, _ := e.Scan([]byte(haystack), Options{})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if haystack[matches[0].Start:matches[0].End] != "hello" {
		t.Fatalf("matched %q, want hello (original casing)", haystack[matches[0].Start:matches[0].End])
	}
}

func TestScanWithPunctuationIgnored(t *testing.T) {
	cs := buildStore(t, []string{"cannot"}, nil)
	e := New(cs, false, true, false)

	haystack := "can.not do it"
	matches, _ := e.Scan([]byte(haystack), Options{})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Start != 0 {
		t.Fatalf("Start = %d, want 0", matches[0].Start)
	}
}

// TestScanCounterSemantics pins the long-path counters to values worked out
// by hand against the exact Bloom/bucket-probe formulas, covering all four
// events spec.md §4.10 defines: a gram attempt that passes both gates and
// matches (offset 0 and offset 12, "hello"), gram attempts the Bloom filter
// rejects outright (Filtered), and one crafted gram ("abyl") that survives
// the Bloom filter as a false positive but finds no occupied bucket slot
// (Misses). There is only one long pattern and no short patterns, so none of
// these counters are perturbed by the short matcher, which has none of its
// own.
func TestScanCounterSemantics(t *testing.T) {
	cs := buildStore(t, []string{"hello"}, nil)
	e := New(cs, false, false, false)

	haystack := "hello there hello abyl end"
	matches, stats := e.Scan([]byte(haystack), Options{})

	got := sortedStrings(haystack, matches)
	want := []string{"hello", "hello"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}

	if stats.Attempts != 23 {
		t.Errorf("Attempts = %d, want 23", stats.Attempts)
	}
	if stats.Filtered != 20 {
		t.Errorf("Filtered = %d, want 20", stats.Filtered)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Comparisons != 2 {
		t.Errorf("Comparisons = %d, want 2", stats.Comparisons)
	}
}

func TestScanDeterministicAcrossThreadCounts(t *testing.T) {
	cs := buildStore(t, []string{"alpha", "bravo", "charlie"}, []string{"on"})
	haystack := bytes.Repeat([]byte("alpha bravo charlie on the go "), 200)

	var baseline []string
	for _, threads := range []int{1, 2, 4, 8} {
		e := New(cs, false, false, false)
		matches, _ := e.Scan(haystack, Options{ThreadCount: threads, ChunkSize: 64})
		got := sortedStrings(string(haystack), matches)
		if baseline == nil {
			baseline = got
			continue
		}
		if len(got) != len(baseline) {
			t.Fatalf("thread count %d: got %d matches, want %d", threads, len(got), len(baseline))
		}
		for i := range got {
			if got[i] != baseline[i] {
				t.Fatalf("thread count %d: mismatch at %d: got %q, want %q", threads, i, got[i], baseline[i])
			}
		}
	}
}
