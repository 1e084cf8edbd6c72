// Package cpufeatures reports the SIMD-relevant CPU features detected at
// process start. Nothing in the module dispatches on them: the scan engine
// and the bytescan SWAR helpers run the same portable Go on every
// architecture. It exists so Matcher can surface that information to
// callers deciding how many worker goroutines to run, without every caller
// needing its own golang.org/x/sys/cpu import.
package cpufeatures

import "golang.org/x/sys/cpu"

// Features summarizes the SIMD instruction sets available on the host CPU.
type Features struct {
	AVX2  bool
	SSE42 bool
	NEON  bool
}

// Detect reads golang.org/x/sys/cpu's package-init-time feature flags for
// the running architecture.
func Detect() Features {
	return Features{
		AVX2:  cpu.X86.HasAVX2,
		SSE42: cpu.X86.HasSSE42,
		NEON:  cpu.ARM64.HasASIMD,
	}
}
