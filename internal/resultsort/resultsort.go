// Package resultsort orders raw scan matches into the canonical result order
// (longest match first, then by ascending start offset) using an 8-pass LSD
// radix sort, and implements the longest_only and no_overlap post-filters
// that compose on top of that order.
//
// Radix sort is used instead of sort.Slice because match counts on a large
// haystack can run into the millions, where an O(n log n) comparison sort's
// constant factor starts to dominate; a fixed 8-pass counting sort is O(n)
// in the number of matches.
package resultsort

import "github.com/scholarsmate/omega-match/internal/matchresult"

const radixPasses = 4

// Sort returns matches reordered so that, for any run of matches sharing the
// same start offset, the longest comes first, and runs are ordered by
// ascending start offset. The input slice is not mutated; the result may
// alias it only when len(matches) < 2.
func Sort(matches []matchresult.Match) []matchresult.Match {
	if len(matches) < 2 {
		return matches
	}

	src := make([]matchresult.Match, len(matches))
	copy(src, matches)
	dst := make([]matchresult.Match, len(matches))

	// Pass 1 (4 rounds): stable sort by descending length, via ascending
	// sort of the bitwise complement of length.
	for byteIdx := 0; byteIdx < radixPasses; byteIdx++ {
		countingSortPass(src, dst, byteIdx, negatedLengthKey)
		src, dst = dst, src
	}
	// Pass 2 (4 rounds): stable sort by ascending start offset. Being the
	// final, most-significant pass, this establishes the overall order;
	// matches that tie on start offset keep the length-descending order
	// pass 1 already gave them.
	for byteIdx := 0; byteIdx < radixPasses; byteIdx++ {
		countingSortPass(src, dst, byteIdx, startOffsetKey)
		src, dst = dst, src
	}
	return src
}

func negatedLengthKey(m matchresult.Match) uint32 { return ^uint32(m.Length()) }
func startOffsetKey(m matchresult.Match) uint32   { return uint32(m.Start) }

// countingSortPass performs one stable counting-sort round over byte index
// byteIdx (0 = least significant) of keyFunc's 32-bit key, reading src and
// writing the reordered result to dst.
func countingSortPass(src, dst []matchresult.Match, byteIdx int, keyFunc func(matchresult.Match) uint32) {
	shift := uint(byteIdx * 8)

	var counts [257]int
	for _, m := range src {
		b := (keyFunc(m) >> shift) & 0xFF
		counts[b+1]++
	}
	for i := 0; i < 256; i++ {
		counts[i+1] += counts[i]
	}
	for _, m := range src {
		b := (keyFunc(m) >> shift) & 0xFF
		dst[counts[b]] = m
		counts[b]++
	}
}

// FilterLongestOnly drops every match whose start offset duplicates an
// already-kept match's start offset. sorted must already be in Sort's
// output order, so the first match at any given start is the longest one.
func FilterLongestOnly(sorted []matchresult.Match) []matchresult.Match {
	if len(sorted) == 0 {
		return sorted
	}
	kept := sorted[:0:0]
	var lastStart uint64
	haveLast := false
	for _, m := range sorted {
		if haveLast && m.Start == lastStart {
			continue
		}
		kept = append(kept, m)
		lastStart = m.Start
		haveLast = true
	}
	return kept
}

// FilterNoOverlap greedily drops any match that overlaps a previously kept
// match, scanning left to right. sorted must already be in Sort's output
// order: combined with the longest-first tiebreak, this greedy pass favors
// the longest match starting earliest whenever candidates overlap.
func FilterNoOverlap(sorted []matchresult.Match) []matchresult.Match {
	if len(sorted) == 0 {
		return sorted
	}
	kept := sorted[:0:0]
	var lastEnd uint64
	haveLast := false
	for _, m := range sorted {
		if haveLast && m.Start < lastEnd {
			continue
		}
		kept = append(kept, m)
		lastEnd = m.End
		haveLast = true
	}
	return kept
}
