package omegamatch

// ScanOptions controls one call to Matcher.Scan: the anchoring filters that
// decide which per-position candidates survive, the post-scan ordering
// filters, and the concurrency knobs for the scan itself.
//
// The zero value scans every candidate position with no anchoring, returns
// every match (including overlapping ones), and picks thread count and
// chunk size automatically.
type ScanOptions struct {
	// NoOverlap keeps a match only if it starts at or after the end of the
	// previously kept match, scanning left to right.
	NoOverlap bool
	// LongestOnly keeps only the longest match at each distinct start
	// offset.
	LongestOnly bool

	// WordBoundary requires a word/non-word transition at the match's start
	// position, and rejects a word character immediately following the
	// match.
	WordBoundary bool
	// WordPrefix rejects a match preceded by a word character.
	WordPrefix bool
	// WordSuffix rejects a match followed by a word character.
	WordSuffix bool
	// LineStart requires the match to start at the beginning of the
	// haystack or immediately after a line terminator.
	LineStart bool
	// LineEnd requires the match to end at the end of the haystack or
	// immediately before a line terminator.
	LineEnd bool

	// ThreadCount is the number of worker goroutines used to scan the
	// haystack. Zero means use the host's GOMAXPROCS. A negative value or
	// one above GOMAXPROCS is a ConfigError.
	ThreadCount int
	// ChunkSize is the number of haystack bytes assigned to each scheduled
	// unit of work, rounded up to a power of two. Zero means 4096. A
	// negative value is a ConfigError.
	ChunkSize int
}
