// Package testcircuits builds the small circuits shared by tests across
// the module. Most mirror a netlist fixture under testdata/; the rest
// isolate one behavior each.
package testcircuits

import (
	"fmt"

	"github.com/go-eda/miter/circuit"
)

func mustCompile(b *circuit.Builder) *circuit.Circuit {
	c, err := b.Compile()
	if err != nil {
		panic(err)
	}
	return c
}

// CounterGate is a 2-bit enable counter written at the bit level: toggle
// and carry with xor/and.
func CounterGate() *circuit.Circuit {
	b := circuit.NewBuilder("counter_gate")
	en := b.Input("en", 1)
	q0 := b.Register("q0", 1)
	q1 := b.Register("q1", 1)
	b.Next("q0", b.Xor(q0, en))
	b.Next("q1", b.Xor(q1, b.And(q0, en)))
	b.Output("count", b.Concat(q1, q0))
	return mustCompile(b)
}

// CounterGold is the same counter written at the vector level: add one
// when enabled, add zero when not.
func CounterGold() *circuit.Circuit {
	b := circuit.NewBuilder("counter_gold")
	en := b.Input("en", 1)
	q := b.Register("q", 2)
	b.Next("q", b.Select(en, b.Add(q, b.Const(1, 2)), b.Add(q, b.Const(0, 2))))
	b.Output("count", q)
	return mustCompile(b)
}

// CounterDrift is CounterGold with the enable dropped from the increment
// path: it counts every cycle.
func CounterDrift() *circuit.Circuit {
	b := circuit.NewBuilder("counter_drift")
	b.Input("en", 1)
	q := b.Register("q", 2)
	b.Next("q", b.Add(q, b.Const(1, 2)))
	b.Output("count", q)
	return mustCompile(b)
}

// CounterWideEn widens the enable to two bits, changing the interface
// while keeping the behavior of bit zero.
func CounterWideEn() *circuit.Circuit {
	b := circuit.NewBuilder("counter_wide_en")
	en := b.Input("en", 2)
	q := b.Register("q", 2)
	b.Next("q", b.Select(b.Bit(en, 0), b.Add(q, b.Const(1, 2)), q))
	b.Output("count", q)
	return mustCompile(b)
}

// Passthrough wires an input straight to an output; no registers.
func Passthrough(width int) *circuit.Circuit {
	b := circuit.NewBuilder(fmt.Sprintf("passthrough%d", width))
	x := b.Input("x", width)
	b.Output("y", x)
	return mustCompile(b)
}

// PassthroughDN is Passthrough behind a double negation.
func PassthroughDN(width int) *circuit.Circuit {
	b := circuit.NewBuilder(fmt.Sprintf("passthrough_dn%d", width))
	x := b.Input("x", width)
	b.Output("y", b.Not(b.Not(x)))
	return mustCompile(b)
}

// AccumGold adds its 8-bit input into an accumulator every cycle.
func AccumGold() *circuit.Circuit {
	b := circuit.NewBuilder("accum_gold")
	d := b.Input("d", 8)
	q := b.Register("q", 8)
	b.Next("q", b.Add(q, d))
	b.Output("sum", q)
	return mustCompile(b)
}

// AccumGate computes the same accumulator as subtraction of the negation.
func AccumGate() *circuit.Circuit {
	b := circuit.NewBuilder("accum_gate")
	d := b.Input("d", 8)
	q := b.Register("q", 8)
	b.Next("q", b.Sub(q, b.Neg(d)))
	b.Output("sum", q)
	return mustCompile(b)
}

// AccumBug masks off the lowest data bit before accumulating.
func AccumBug() *circuit.Circuit {
	b := circuit.NewBuilder("accum_bug")
	d := b.Input("d", 8)
	q := b.Register("q", 8)
	b.Next("q", b.Add(q, b.And(d, b.Const(0xfe, 8))))
	b.Output("sum", q)
	return mustCompile(b)
}

// ShiftAdd doubles its 8-bit input by adding it to itself; combinational.
func ShiftAdd() *circuit.Circuit {
	b := circuit.NewBuilder("shift_add")
	x := b.Input("x", 8)
	b.Output("y", b.Add(x, x))
	return mustCompile(b)
}

// ShiftCat doubles its 8-bit input by concatenating a zero under the low
// seven bits; combinational.
func ShiftCat() *circuit.Circuit {
	b := circuit.NewBuilder("shift_cat")
	x := b.Input("x", 8)
	b.Output("y", b.Concat(b.Slice(x, 6, 0), b.Const(0, 1)))
	return mustCompile(b)
}

// OrLatch latches high once its input has been high: q' = q or d.
func OrLatch() *circuit.Circuit {
	b := circuit.NewBuilder("or_latch")
	d := b.Input("d", 1)
	q := b.Register("q", 1)
	b.Next("q", b.Or(q, d))
	b.Output("y", q)
	return mustCompile(b)
}

// MuxLatch is OrLatch written as a multiplexer: q' = d ? 1 : q.
func MuxLatch() *circuit.Circuit {
	b := circuit.NewBuilder("mux_latch")
	d := b.Input("d", 1)
	q := b.Register("q", 1)
	b.Next("q", b.Select(d, b.Const(1, 1), q))
	b.Output("y", q)
	return mustCompile(b)
}

// DelayTwo delays its input by two cycles through a pair of registers.
// Only the last stage is observed, so two instances agree from any pair
// of states only after both pipelines have refilled.
func DelayTwo(name string) *circuit.Circuit {
	b := circuit.NewBuilder(name)
	d := b.Input("d", 1)
	s0 := b.Register("s0", 1)
	s1 := b.Register("s1", 1)
	b.Next("s0", d)
	b.Next("s1", s0)
	b.Output("y", s1)
	return mustCompile(b)
}
