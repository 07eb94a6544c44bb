package circuit

import (
	"encoding/binary"
	"strings"

	"github.com/go-eda/miter/bv"
)

// State is a register valuation, aligned to Circuit.Registers order.
type State []bv.Value

// Inputs is an input valuation, aligned to Circuit.Inputs order.
type Inputs []bv.Value

// Outputs is an output valuation, aligned to Circuit.Outputs order.
type Outputs []bv.Value

// Concrete reports whether every register value is concrete.
func (s State) Concrete() bool {
	for _, v := range s {
		if v.Symbolic() {
			return false
		}
	}
	return true
}

// Key packs a concrete state into a map key. Two states of the same circuit
// collide exactly when they hold the same register values. The second
// result is false when the state contains a symbolic value.
func (s State) Key() (string, bool) {
	b := make([]byte, 0, 2*len(s))
	for _, v := range s {
		c, ok := v.Concrete()
		if !ok {
			return "", false
		}
		b = binary.AppendUvarint(b, c)
	}
	return string(b), true
}

// Clone returns a copy of s. Values are immutable, so the copy is shallow.
func (s State) Clone() State { return append(State(nil), s...) }

// Clone returns a copy of in.
func (in Inputs) Clone() Inputs { return append(Inputs(nil), in...) }

// Concrete reports whether every input value is concrete.
func (in Inputs) Concrete() bool {
	for _, v := range in {
		if v.Symbolic() {
			return false
		}
	}
	return true
}

func (s State) String() string   { return joinValues([]bv.Value(s)) }
func (in Inputs) String() string { return joinValues([]bv.Value(in)) }
func (o Outputs) String() string { return joinValues([]bv.Value(o)) }

func joinValues(vs []bv.Value) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
