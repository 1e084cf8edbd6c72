// Package scanengine implements the two-tier candidate scan: a Bloom-gated
// hash-bucket probe for patterns of length >= 5, and a bitmap / sorted-array
// probe for patterns of length 1-4, run in parallel over static chunks of
// the haystack with an errgroup-managed worker pool.
package scanengine

import (
	"bytes"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/scholarsmate/omega-match/internal/classify"
	"github.com/scholarsmate/omega-match/internal/format"
	"github.com/scholarsmate/omega-match/internal/matchresult"
	"github.com/scholarsmate/omega-match/internal/normalize"
	"github.com/scholarsmate/omega-match/internal/storeio"
	"github.com/scholarsmate/omega-match/internal/xhash"
)

const defaultChunkSize = 4096

// Options controls one scan: concurrency and the position-dependent
// anchoring filters. Options that only affect the final match list (no
// overlapping matches, longest match per start) are applied after the scan,
// not here, since they need no byte-level context.
type Options struct {
	ThreadCount int
	ChunkSize   int

	WordBoundary bool
	WordPrefix   bool
	WordSuffix   bool
	LineStart    bool
	LineEnd      bool
}

// Engine runs candidate scans against a single compiled store, with an
// optional normalization table built once and reused across every Scan
// call.
type Engine struct {
	store *storeio.CompiledStore
	table *normalize.Table
}

// New builds an Engine over store. If any of caseFold, ignorePunct, or
// elideWhitespace is set, every Scan call normalizes the haystack before
// matching and maps result offsets back to the caller's original bytes.
func New(store *storeio.CompiledStore, caseFold, ignorePunct, elideWhitespace bool) *Engine {
	e := &Engine{store: store}
	if caseFold || ignorePunct || elideWhitespace {
		e.table = normalize.NewTable(caseFold, ignorePunct, elideWhitespace)
	}
	return e
}

// Scan finds every pattern occurrence in haystack, applying the anchoring
// filters in opts. Returned matches are in arbitrary order; the caller is
// expected to run them through resultsort.
func (e *Engine) Scan(haystack []byte, opts Options) ([]matchresult.Match, matchresult.Stats) {
	if len(haystack) == 0 {
		return nil, matchresult.Stats{}
	}
	if e.table == nil {
		return e.scanBuffer(haystack, opts)
	}

	dst := make([]byte, len(haystack))
	backmap := make([]int, len(haystack))
	n := e.table.Apply(haystack, dst, backmap)
	normBuf := dst[:n]

	matches, stats := e.scanBuffer(normBuf, opts)
	for i := range matches {
		matches[i].Start = uint64(backmap[matches[i].Start])
		matches[i].End = uint64(mapNormalizedEnd(backmap, int(matches[i].End)))
	}
	return matches, stats
}

// mapNormalizedEnd maps an exclusive end offset in normalized-buffer space
// back to source space: one past the source index of the last normalized
// byte the match covered. For a byte that represents a collapsed whitespace
// run, this reports only the run's first source byte plus one, which is a
// documented simplification: it understates how much source whitespace the
// match's trailing edge actually consumed.
func mapNormalizedEnd(backmap []int, normEnd int) int {
	if normEnd == 0 {
		return 0
	}
	return backmap[normEnd-1] + 1
}

// scanBuffer dispatches chunked, concurrent candidate scanning over buf,
// which is either the raw haystack or, when normalization is enabled, the
// already-normalized buffer (the caller remaps offsets afterward).
func (e *Engine) scanBuffer(buf []byte, opts Options) ([]matchresult.Match, matchresult.Stats) {
	n := len(buf)
	if n == 0 {
		return nil, matchresult.Stats{}
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	chunkSize = int(format.RoundUpPow2(uint64(chunkSize)))

	threadCount := opts.ThreadCount
	if threadCount <= 0 {
		threadCount = runtime.GOMAXPROCS(0)
	}

	type chunkRange struct{ start, end int }
	var chunks []chunkRange
	for s := 0; s < n; s += chunkSize {
		end := s + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, chunkRange{s, end})
	}

	chunkMatches := make([][]matchresult.Match, len(chunks))
	chunkStats := make([]matchresult.Stats, len(chunks))

	var g errgroup.Group
	g.SetLimit(threadCount)
	for ci, cr := range chunks {
		ci, cr := ci, cr
		g.Go(func() error {
			local, st := e.scanChunk(buf, cr.start, cr.end, opts)
			chunkMatches[ci] = local
			chunkStats[ci] = st
			return nil
		})
	}
	_ = g.Wait() // scanChunk never returns an error

	var total int
	for _, m := range chunkMatches {
		total += len(m)
	}
	merged := make([]matchresult.Match, 0, total)
	var stats matchresult.Stats
	for i := range chunkMatches {
		merged = append(merged, chunkMatches[i]...)
		stats.Add(chunkStats[i])
	}
	return merged, stats
}

// scanChunk owns start positions in [start, end) but may read ahead into buf
// past end (read-only, safe under concurrent access from other chunks) to
// find patterns that extend beyond the chunk boundary.
func (e *Engine) scanChunk(buf []byte, start, end int, opts Options) ([]matchresult.Match, matchresult.Stats) {
	var local []matchresult.Match
	var stats matchresult.Stats
	for i := start; i < end; i++ {
		e.scanPosition(buf, i, opts, &stats, func(matchEnd int) {
			local = append(local, matchresult.Match{Start: uint64(i), End: uint64(matchEnd)})
		})
	}
	return local, stats
}

// scanPosition evaluates every candidate pattern that could start at i,
// invoking emit(end) for each one whose bytes compare equal and whose
// anchoring filters are satisfied. Counters on the long path follow the
// per-step order of the gram-probe algorithm: Attempts fires once a gram is
// formed, before the Bloom query; Filtered fires on a Bloom miss; Misses
// fires on a bucket-probe miss (a Bloom false positive); Hits fires once per
// bucket found, before its items are visited; Comparisons fires once per
// item actually byte-compared. The short matcher has no counters of its own.
func (e *Engine) scanPosition(buf []byte, i int, opts Options, stats *matchresult.Stats, emit func(end int)) {
	n := len(buf)
	remaining := n - i

	if opts.WordBoundary {
		prevWord := i > 0 && classify.IsWord(buf[i-1])
		curWord := classify.IsWord(buf[i])
		if prevWord == curWord {
			return
		}
	}

	if short := e.store.Short; short != nil {
		if remaining >= 1 && short.Query1(buf[i]) {
			e.tryEmit(buf, i, i+1, opts, emit)
		}
		if remaining >= 2 && short.Query2(buf[i], buf[i+1]) {
			e.tryEmit(buf, i, i+2, opts, emit)
		}
		if remaining >= 3 && short.Query3(buf[i:i+3]) {
			e.tryEmit(buf, i, i+3, opts, emit)
		}
		if remaining >= 4 && short.Query4(buf[i:i+4]) {
			e.tryEmit(buf, i, i+4, opts, emit)
		}
	}

	if remaining < 4 {
		return
	}
	gram := xhash.Gram(buf[i : i+4])
	stats.Attempts++
	if !e.store.Bloom.Query(gram) {
		stats.Filtered++
		return
	}
	bucket, found := e.store.Buckets.Probe(gram)
	if !found {
		stats.Misses++
		return
	}
	stats.Hits++
	for j := 0; j < bucket.Len(); j++ {
		offset, length := bucket.Item(j)
		end := i + int(length)
		if end > n {
			continue
		}
		stats.Comparisons++
		if bytes.Equal(buf[i:end], e.store.Patterns.Slice(offset, length)) {
			e.tryEmit(buf, i, end, opts, emit)
		}
	}
}

// tryEmit applies the per-match anchoring filters to the candidate range
// [start, end) and calls emit(end) only if every enabled filter accepts it.
// word_boundary's start-side condition is a position-level transition gate
// handled in scanPosition before any candidate is even considered; here it
// only re-checks the end side, sharing that check with word_suffix.
func (e *Engine) tryEmit(buf []byte, start, end int, opts Options, emit func(end int)) {
	if opts.WordPrefix && start > 0 && classify.IsWord(buf[start-1]) {
		return
	}
	if (opts.WordSuffix || opts.WordBoundary) && end < len(buf) && classify.IsWord(buf[end]) {
		return
	}
	if opts.LineStart && start > 0 && !classify.IsLineBoundary(buf[start-1]) {
		return
	}
	if opts.LineEnd && end < len(buf) && !classify.IsLineBoundary(buf[end]) {
		return
	}
	emit(end)
}
