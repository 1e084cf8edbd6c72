package omegamatch

// Match is one located pattern occurrence, reported against the caller's
// original haystack regardless of whether normalization was enabled.
type Match struct {
	// Offset is the byte offset of the match's first byte in the original
	// haystack.
	Offset uint64
	// Length is the number of original-haystack bytes the match covers.
	Length uint32
	// Bytes is the matched slice of the original haystack. It aliases the
	// caller's input and must not be retained past the haystack's lifetime
	// if the caller intends to reuse or free that buffer.
	Bytes []byte
}

// Results is the ordered, filtered outcome of a Scan call: longest match
// first within each start offset, then ascending by start offset, with
// LongestOnly/NoOverlap already applied.
type Results struct {
	Matches []Match
	Stats   Stats
}

// Stats reports scan-engine counters, useful for judging match rate and
// filter effectiveness without instrumenting the scan itself. All five
// counters apply to the long path (length >= 5 patterns); the short matcher
// (lengths 1-4) has no counters of its own.
type Stats struct {
	// Attempts counts every position where a leading 4-byte gram was formed,
	// before the Bloom filter is consulted.
	Attempts uint64
	// Filtered counts grams the Bloom filter rejected outright.
	Filtered uint64
	// Misses counts grams that passed the Bloom filter but had no matching
	// bucket-table entry (a Bloom false positive).
	Misses uint64
	// Hits counts positions where the bucket probe found an entry, once per
	// position regardless of how many patterns share that bucket.
	Hits uint64
	// Comparisons counts every byte-range equality check performed against
	// bucket entries.
	Comparisons uint64
}
