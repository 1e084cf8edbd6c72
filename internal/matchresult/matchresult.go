// Package matchresult defines the match record and scan statistics shared by
// the scan engine, the result sorter, and the public API: a small,
// dependency-free package so none of those three need to import each other
// just to pass matches around.
package matchresult

// Match is one located occurrence: a half-open byte range [Start, End) in the
// caller's original haystack, already mapped back through normalization if it
// was enabled.
type Match struct {
	Start uint64
	End   uint64
}

// Length returns End - Start.
func (m Match) Length() uint64 { return m.End - m.Start }

// Stats accumulates scan-engine counters across every worker, for callers
// who want visibility into match-rate without instrumenting the scan
// themselves. All five counters apply to the long path only (gram formed,
// Bloom-gated, bucket-probed); the short matcher (lengths 1-4) has no
// counters of its own.
type Stats struct {
	// Attempts counts every position where a 4-byte gram was formed, i.e.
	// every position with at least 4 bytes remaining in the buffer,
	// regardless of what the Bloom filter or bucket probe later decide.
	Attempts uint64
	// Filtered counts grams the Bloom filter rejected (definite non-member).
	Filtered uint64
	// Misses counts grams that passed the Bloom filter but had no entry in
	// the bucket table (a Bloom false positive).
	Misses uint64
	// Hits counts positions where the bucket probe found an entry, once per
	// position regardless of how many patterns are in that bucket.
	Hits uint64
	// Comparisons counts the total number of byte-range equality checks
	// performed against bucket entries, win or lose.
	Comparisons uint64
}

// Add accumulates o's counters into s.
func (s *Stats) Add(o Stats) {
	s.Attempts += o.Attempts
	s.Filtered += o.Filtered
	s.Misses += o.Misses
	s.Hits += o.Hits
	s.Comparisons += o.Comparisons
}
