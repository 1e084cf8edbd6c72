package format

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Version:               Version,
		Flags:                 FlagCaseFold | FlagElideWS,
		PatternStoreSize:      12345,
		PatternCount:          7,
		SmallestPatternLength: 2,
		LargestPatternLength:  40,
		BloomByteSize:         1024,
		BucketDataByteSize:    512,
		IndexArrayLength:      8192,
		OccupiedBucketCount:   5,
		MinBucketSize:         1,
		MaxBucketSize:         3,
		ShortMatcherByteSize:  8484,
		LoadFactor:            0.125,
		AverageBucketSize:     1.4,
	}
	buf := h.Encode()
	if len(buf) != HeaderSize {
		t.Fatalf("Encode() length = %d, want %d", len(buf), HeaderSize)
	}
	got, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestDecodeHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf, "GARBAGE!")
	if _, err := DecodeHeader(buf); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeHeader(make([]byte, 10)); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestDecodeHeaderRejectsBadVersion(t *testing.T) {
	h := Header{Version: 99}
	buf := h.Encode()
	if _, err := DecodeHeader(buf); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestRoundUpPow2(t *testing.T) {
	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128}
	for n, want := range cases {
		if got := RoundUpPow2(n); got != want {
			t.Errorf("RoundUpPow2(%d) = %d, want %d", n, got, want)
		}
	}
}
