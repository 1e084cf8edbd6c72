// Package dedup implements the open-addressed Robin-Hood hash set over owned
// byte buffers that is the sole duplicate-rejection mechanism for both the
// long-pattern store and the short matcher.
//
// The algorithm follows the textbook Robin Hood creed ("take from the rich,
// give to the poor"): each slot tracks its probe sequence length (PSL), and
// on insertion an incoming element displaces any resident whose PSL is
// smaller, carrying the displaced element forward to find a new home. This
// keeps the variance of probe lengths low and avoids the long linear-probe
// clusters that plain open addressing degrades into.
package dedup

import "github.com/scholarsmate/omega-match/internal/xhash"

const (
	initialCapacity = 64
	maxLoadFactor   = 0.9
	emptyPSL        = -1
)

type slot struct {
	psl  int32
	hash uint32
	key  []byte
}

// Set is a Robin-Hood open-addressed set of byte buffers, keyed by an
// FNV-1a hash with byte-wise equality on collision.
type Set struct {
	slots []slot
	mask  uint32
	count uint32
}

// New creates an empty dedup set.
func New() *Set {
	return &Set{
		slots: newSlots(initialCapacity),
		mask:  initialCapacity - 1,
	}
}

func newSlots(capacity uint32) []slot {
	s := make([]slot, capacity)
	for i := range s {
		s[i].psl = emptyPSL
	}
	return s
}

// Len returns the number of unique buffers stored in the set.
func (s *Set) Len() int { return int(s.count) }

// Contains reports whether buf is already present in the set.
func (s *Set) Contains(buf []byte) bool {
	_, found := s.find(buf, xhash.FNV1a(buf))
	return found
}

// find returns the slot index of buf if present, or the index the probe
// reached (where an insertion would begin) if absent.
func (s *Set) find(buf []byte, hash uint32) (idx uint32, found bool) {
	idx = xhash.MixKey(hash) & s.mask
	for psl := int32(0); psl <= s.slots[idx].psl; psl++ {
		sl := &s.slots[idx]
		if sl.hash == hash && len(sl.key) == len(buf) && bytesEqual(sl.key, buf) {
			return idx, true
		}
		idx = (idx + 1) & s.mask
	}
	return idx, false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Add inserts buf into the set, copying it so the caller's slice may be
// reused. It reports true if buf was newly inserted, false if an identical
// buffer was already present (a duplicate).
func (s *Set) Add(buf []byte) bool {
	hash := xhash.FNV1a(buf)
	if _, found := s.find(buf, hash); found {
		return false
	}

	if float64(s.count+1) > float64(len(s.slots))*maxLoadFactor {
		s.grow()
	}

	owned := make([]byte, len(buf))
	copy(owned, buf)
	s.emplace(slot{psl: 0, hash: hash, key: owned})
	return true
}

// emplace performs the Robin-Hood insertion, swapping the incoming element
// forward whenever it has traveled farther from its ideal slot (higher PSL)
// than the current resident.
func (s *Set) emplace(e slot) {
	idx := xhash.MixKey(e.hash) & s.mask
	for {
		cur := &s.slots[idx]
		if cur.psl == emptyPSL {
			*cur = e
			s.count++
			return
		}
		if e.psl > cur.psl {
			e, *cur = *cur, e
		}
		e.psl++
		idx = (idx + 1) & s.mask
	}
}

func (s *Set) grow() {
	old := s.slots
	newCap := uint32(len(old)) * 2
	s.slots = newSlots(newCap)
	s.mask = newCap - 1
	s.count = 0
	for _, sl := range old {
		if sl.psl != emptyPSL {
			s.emplace(slot{psl: 0, hash: sl.hash, key: sl.key})
		}
	}
}
