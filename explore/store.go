package explore

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/go-eda/miter/circuit"
)

// maxDenseBits bounds the packed-index store: up to 2^24 states track
// membership in a flat bit set, larger spaces fall back to hashing keys.
const maxDenseBits = 24

// store deduplicates visited states. Symbolic states are never stored and
// always count as new.
type store struct {
	stateBits int
	dense     *bitset.BitSet
	sparse    map[string]struct{}
	n         int
}

func newStore(stateBits int) *store {
	s := &store{stateBits: stateBits}
	if stateBits <= maxDenseBits {
		s.dense = bitset.New(uint(1) << uint(stateBits))
	} else {
		s.sparse = make(map[string]struct{})
	}
	return s
}

// add records the state and reports whether it was new.
func (s *store) add(st circuit.State) bool {
	if s.dense != nil {
		idx, ok := packState(st)
		if !ok {
			return true
		}
		if s.dense.Test(uint(idx)) {
			return false
		}
		s.dense.Set(uint(idx))
		s.n++
		return true
	}
	key, ok := st.Key()
	if !ok {
		return true
	}
	if _, seen := s.sparse[key]; seen {
		return false
	}
	s.sparse[key] = struct{}{}
	s.n++
	return true
}

func (s *store) len() int { return s.n }

// packState concatenates the register values into a single index, first
// register in the low bits. It fails on symbolic values.
func packState(st circuit.State) (uint64, bool) {
	var idx uint64
	shift := 0
	for _, v := range st {
		c, ok := v.Concrete()
		if !ok {
			return 0, false
		}
		idx |= c << uint(shift)
		shift += v.Width()
	}
	return idx, true
}
