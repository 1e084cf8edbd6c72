// Package normalize implements the optional haystack transform applied
// before scanning: ASCII case-folding, punctuation stripping, and whitespace
// run elision. Each enabled rule is folded into a single 256-entry action
// table so the hot path is one slice index per byte, and the transform
// produces a back-map from normalized offsets to source offsets so match
// positions can be reported against the caller's original buffer.
package normalize

import "github.com/scholarsmate/omega-match/internal/classify"

type action uint8

const (
	actionEmit action = iota
	actionSkip
	actionElide
)

// Table is a precomputed per-byte normalization action, built once per
// Matcher/Compiler and reused across every scan.
type Table struct {
	action [256]action
	mapped [256]byte
}

// NewTable builds a normalization table for the given feature combination.
// Punctuation stripping takes priority over whitespace elision for bytes
// that could be classified as either (there are none in the ASCII ranges
// used here, but the precedence is fixed for determinism).
func NewTable(caseFold, ignorePunct, elideWhitespace bool) *Table {
	t := &Table{}
	for b := 0; b < 256; b++ {
		c := byte(b)
		mapped := c
		if caseFold {
			mapped = classify.ToUpperASCII(c)
		}
		t.mapped[b] = mapped

		switch {
		case ignorePunct && classify.IsPunct(c):
			t.action[b] = actionSkip
		case elideWhitespace && classify.IsSpace(c):
			t.action[b] = actionElide
		default:
			t.action[b] = actionEmit
		}
	}
	return t
}

// Len returns the worst-case output length for an input of size n: the
// transform never grows the input, since every action either emits one byte,
// collapses a run to one byte, or drops the byte entirely.
func Len(n int) int { return n }

// Apply transforms src into dst (which must have capacity >= len(src)) and
// records, for every emitted byte, the source index it came from in backmap
// (which must have the same capacity as dst). It returns the number of bytes
// written. A trailing space produced by collapsing a whitespace run that
// runs to the end of src is trimmed, so a window boundary falling inside
// trailing whitespace never leaves a dangling separator in the output.
func (t *Table) Apply(src []byte, dst []byte, backmap []int) int {
	n := 0
	inElideRun := false
	for i, c := range src {
		switch t.action[c] {
		case actionSkip:
			// Dropped entirely; does not interrupt a whitespace run in
			// progress, since punctuation inside whitespace is also dropped.
		case actionElide:
			if inElideRun {
				continue
			}
			dst[n] = ' '
			backmap[n] = i
			n++
			inElideRun = true
		default:
			dst[n] = t.mapped[c]
			backmap[n] = i
			n++
			inElideRun = false
		}
	}
	if inElideRun && n > 0 {
		n--
	}
	return n
}
