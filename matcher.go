package omegamatch

import (
	"os"
	"runtime"

	"github.com/scholarsmate/omega-match/internal/cpufeatures"
	"github.com/scholarsmate/omega-match/internal/resultsort"
	"github.com/scholarsmate/omega-match/internal/scanengine"
	"github.com/scholarsmate/omega-match/internal/storeio"
)

// CPUFeatures reports the SIMD instruction sets detected on the host CPU.
// It's informational only: no code path in this module dispatches on these
// flags (the scan engine is plain Go with no SIMD variant), but callers
// tuning ScanOptions.ThreadCount against expected per-core
// throughput may find it useful.
func CPUFeatures() cpufeatures.Features { return cpufeatures.Detect() }

// Matcher scans haystacks against a compiled store. A Matcher is safe for
// concurrent Scan calls from multiple goroutines; each Scan call manages its
// own worker pool internally.
type Matcher struct {
	mapper   Mapper
	store    *storeio.CompiledStore
	engine   *scanengine.Engine
	tempPath string
}

// Open memory-maps the compiled store at path and prepares a Matcher over
// it.
func Open(path string) (*Matcher, error) {
	mapper, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	return newMatcher(mapper, "")
}

// OpenBytes builds a Matcher over a compiled store the caller has already
// loaded into memory (e.g. fetched over the network, embedded via go:embed).
// Close does not release data; the caller owns its lifetime.
func OpenBytes(data []byte) (*Matcher, error) {
	return newMatcher(NewByteSliceMapper(data), "")
}

// OpenDictionary compiles the newline-delimited pattern file at path into a
// temporary compiled store, opens it, and arranges for the temporary file to
// be removed when the returned Matcher is closed. It is a convenience for
// callers who have a raw dictionary rather than a pre-compiled store and
// don't want to manage the intermediate artifact themselves.
func OpenDictionary(path string, caseFold, ignorePunct, elideWS bool) (*Matcher, error) {
	patterns, err := LoadDictionary(path)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "omegamatch-*.store")
	if err != nil {
		return nil, &FormatError{Detail: "create temp store", Err: wrapIOErr(err)}
	}
	tmpPath := tmp.Name()
	tmp.Close()

	c, err := Create(tmpPath, caseFold, ignorePunct, elideWS)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	for _, p := range patterns {
		if err := c.Add(p); err != nil {
			os.Remove(tmpPath)
			return nil, err
		}
	}
	if err := c.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	mapper, err := mapFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	m, err := newMatcher(mapper, tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	return m, nil
}

func newMatcher(mapper Mapper, tempPath string) (*Matcher, error) {
	store, err := storeio.Load(mapper.Bytes())
	if err != nil {
		mapper.Close()
		return nil, &FormatError{Detail: "load compiled store", Err: err}
	}
	engine := scanengine.New(store, store.Header.CaseFold(), store.Header.IgnorePunct(), store.Header.ElideWhitespace())
	return &Matcher{mapper: mapper, store: store, engine: engine, tempPath: tempPath}, nil
}

// Close releases the underlying mapping (and, for a Matcher opened via
// OpenDictionary, deletes the temporary compiled store). A Matcher must not
// be used after Close.
func (m *Matcher) Close() error {
	err := m.mapper.Close()
	if m.tempPath != "" {
		if rmErr := os.Remove(m.tempPath); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

// Scan finds every pattern occurrence in haystack satisfying opts'
// anchoring filters, in the canonical order: longest match first at each
// start offset, then ascending by start offset.
func (m *Matcher) Scan(haystack []byte, opts ScanOptions) (Results, error) {
	maxThreads := runtime.GOMAXPROCS(0)
	if opts.ThreadCount < 0 || opts.ThreadCount > maxThreads {
		return Results{}, &ConfigError{Option: "ThreadCount", Reason: "must be in [0, GOMAXPROCS]"}
	}
	if opts.ChunkSize < 0 {
		return Results{}, &ConfigError{Option: "ChunkSize", Reason: "must not be negative"}
	}

	matches, stats := m.engine.Scan(haystack, scanengine.Options{
		ThreadCount:  opts.ThreadCount,
		ChunkSize:    opts.ChunkSize,
		WordBoundary: opts.WordBoundary,
		WordPrefix:   opts.WordPrefix,
		WordSuffix:   opts.WordSuffix,
		LineStart:    opts.LineStart,
		LineEnd:      opts.LineEnd,
	})

	sorted := resultsort.Sort(matches)
	if opts.LongestOnly {
		sorted = resultsort.FilterLongestOnly(sorted)
	}
	if opts.NoOverlap {
		sorted = resultsort.FilterNoOverlap(sorted)
	}

	out := make([]Match, len(sorted))
	for i, mm := range sorted {
		out[i] = Match{
			Offset: mm.Start,
			Length: uint32(mm.Length()),
			Bytes:  haystack[mm.Start:mm.End],
		}
	}

	return Results{
		Matches: out,
		Stats: Stats{
			Attempts:    stats.Attempts,
			Filtered:    stats.Filtered,
			Misses:      stats.Misses,
			Hits:        stats.Hits,
			Comparisons: stats.Comparisons,
		},
	}, nil
}

// SmallestPatternLength and LargestPatternLength report the shortest and
// longest pattern lengths present in the compiled store.
func (m *Matcher) SmallestPatternLength() uint32 { return m.store.Header.SmallestPatternLength }
func (m *Matcher) LargestPatternLength() uint32  { return m.store.Header.LargestPatternLength }
