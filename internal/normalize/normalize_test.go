package normalize

import "testing"

func apply(t *Table, s string) (string, []int) {
	dst := make([]byte, len(s))
	backmap := make([]int, len(s))
	n := t.Apply([]byte(s), dst, backmap)
	return string(dst[:n]), backmap[:n]
}

func TestCaseFoldOnly(t *testing.T) {
	tbl := NewTable(true, false, false)
	got, _ := apply(tbl, "Hello World")
	if got != "HELLO WORLD" {
		t.Fatalf("got %q, want %q", got, "HELLO WORLD")
	}
}

func TestIgnorePunctuation(t *testing.T) {
	tbl := NewTable(false, true, false)
	got, backmap := apply(tbl, "a,b.c!")
	if got != "abc" {
		t.Fatalf("got %q, want %q", got, "abc")
	}
	want := []int{0, 2, 4}
	for i, w := range want {
		if backmap[i] != w {
			t.Fatalf("backmap[%d] = %d, want %d", i, backmap[i], w)
		}
	}
}

func TestElideWhitespaceCollapsesRuns(t *testing.T) {
	tbl := NewTable(false, false, true)
	got, backmap := apply(tbl, "a   b\t\tc")
	if got != "a b c" {
		t.Fatalf("got %q, want %q", got, "a b c")
	}
	// The elided run's back-map entry points at the first whitespace byte.
	if backmap[1] != 1 {
		t.Fatalf("backmap[1] = %d, want 1", backmap[1])
	}
}

func TestElideWhitespaceTrimsTrailingRun(t *testing.T) {
	tbl := NewTable(false, false, true)
	got, backmap := apply(tbl, "a   b   ")
	if got != "a b" {
		t.Fatalf("got %q, want %q (trailing whitespace run trimmed, not collapsed to a dangling space)", got, "a b")
	}
	want := []int{0, 1, 4}
	for i, w := range want {
		if backmap[i] != w {
			t.Fatalf("backmap[%d] = %d, want %d", i, backmap[i], w)
		}
	}
}

func TestAllFeaturesCombined(t *testing.T) {
	tbl := NewTable(true, true, true)
	got, _ := apply(tbl, "Hello,  World!")
	if got != "HELLO WORLD" {
		t.Fatalf("got %q, want %q", got, "HELLO WORLD")
	}
}

func TestBackmapRoundTripsToOriginalOffsets(t *testing.T) {
	tbl := NewTable(false, true, false)
	src := "x.y.z"
	got, backmap := apply(tbl, src)
	if got != "xyz" {
		t.Fatalf("got %q, want xyz", got)
	}
	for i, b := range []byte(got) {
		if src[backmap[i]] != b {
			t.Fatalf("backmap[%d]=%d points at %q, want %q", i, backmap[i], src[backmap[i]], b)
		}
	}
}

func TestNoFeaturesIsIdentity(t *testing.T) {
	tbl := NewTable(false, false, false)
	got, backmap := apply(tbl, "Mixed CASE, punct!")
	if got != "Mixed CASE, punct!" {
		t.Fatalf("got %q, want identity", got)
	}
	for i := range backmap {
		if backmap[i] != i {
			t.Fatalf("backmap[%d] = %d, want %d", i, backmap[i], i)
		}
	}
}
