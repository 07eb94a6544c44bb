// Package bv implements fixed-width bit-vector values with hardware
// semantics: unsigned arithmetic wraps modulo 2^width, bitwise operators act
// per bit and comparisons return 1-bit values.
//
// A Value is either concrete (a reduced uint64) or symbolic (an immutable
// node of a deferred-operation DAG whose leaves are variables allocated from
// a Pool). Operations between concrete values evaluate immediately;
// operations with at least one symbolic operand build a new node tagged with
// the operation and its operands, to be resolved later by an evaluator or a
// solver. Widths range from 1 to 64 bits.
//
// Operands of a binary operation must have equal widths. Mixing widths is a
// usage error and panics with a *MismatchError; callers that assemble
// expressions from untrusted input are expected to width-check first (the
// circuit compiler does).
package bv

import "fmt"

// Value is a fixed-width bit vector, either concrete or symbolic.
// The zero Value is invalid.
type Value struct {
	width int
	bits  uint64 // reduced modulo 2^width, meaningful when node == nil
	node  *node
}

type node struct {
	op     Op
	width  int
	args   []Value
	v      Var    // OpVar payload
	label  string // OpVar debug label
	hi, lo int    // OpExtract payload
}

// New returns a concrete Value of the given width holding v.
// It fails with a *WidthRangeError if width is outside 1..64 and with a
// *OverflowError if v does not fit in width bits.
func New(v uint64, width int) (Value, error) {
	if width < 1 || width > 64 {
		return Value{}, &WidthRangeError{Width: width}
	}
	if width < 64 && v>>uint(width) != 0 {
		return Value{}, &OverflowError{Value: v, Width: width}
	}
	return Value{width: width, bits: v}, nil
}

// Must is like New but panics on error. It is intended for literals whose
// fit is known at the call site.
func Must(v uint64, width int) Value {
	r, err := New(v, width)
	if err != nil {
		panic(err)
	}
	return r
}

// Zero returns the all-zero Value of the given width.
func Zero(width int) Value { return Must(0, width) }

// One returns the Value 1 of the given width.
func One(width int) Value { return Must(1, width) }

// Width returns the width of v in bits.
func (v Value) Width() int { return v.width }

// Valid reports whether v was produced by a constructor of this package.
func (v Value) Valid() bool { return v.width != 0 }

// Concrete returns the held bits and true when v is concrete.
func (v Value) Concrete() (uint64, bool) {
	if v.node != nil {
		return 0, false
	}
	return v.bits, true
}

// Uint64 returns the held bits of a concrete Value and panics if v is
// symbolic.
func (v Value) Uint64() uint64 {
	if v.node != nil {
		panic(&MismatchError{Op: v.node.op, Detail: "Uint64 on a symbolic value"})
	}
	return v.bits
}

// Symbolic reports whether v is a deferred expression.
func (v Value) Symbolic() bool { return v.node != nil }

// Op returns the operation tag of v: OpConst for concrete values, OpVar for
// variable leaves and the deferred operation otherwise.
func (v Value) Op() Op {
	if v.node == nil {
		return OpConst
	}
	return v.node.op
}

// Operands returns the operands of a deferred operation, nil for concrete
// values and variable leaves. The returned slice must not be modified.
func (v Value) Operands() []Value {
	if v.node == nil {
		return nil
	}
	return v.node.args
}

// Var returns the variable of an OpVar leaf.
func (v Value) Var() Var {
	if v.Op() != OpVar {
		panic(&MismatchError{Op: v.Op(), Detail: "Var on a non-variable value"})
	}
	return v.node.v
}

// ExtractBounds returns the bit range of an OpExtract node.
func (v Value) ExtractBounds() (hi, lo int) {
	if v.Op() != OpExtract {
		panic(&MismatchError{Op: v.Op(), Detail: "ExtractBounds on a non-extract value"})
	}
	return v.node.hi, v.node.lo
}

// Identical reports whether a and b are structurally the same value: equal
// concrete bits or the same symbolic node. Identical symbolic values are
// equal under every variable assignment; the converse does not hold.
func (a Value) Identical(b Value) bool {
	if a.width != b.width {
		return false
	}
	if a.node != nil || b.node != nil {
		return a.node == b.node
	}
	return a.bits == b.bits
}

func (v Value) String() string {
	if v.node == nil {
		return fmt.Sprintf("%d'd%d", v.width, v.bits)
	}
	n := v.node
	switch n.op {
	case OpVar:
		if n.label != "" {
			return n.label
		}
		return fmt.Sprintf("$%d", n.v)
	case OpExtract:
		return fmt.Sprintf("bits(%s, %d, %d)", n.args[0], n.hi, n.lo)
	default:
		s := n.op.String() + "("
		for i, a := range n.args {
			if i > 0 {
				s += ", "
			}
			s += a.String()
		}
		return s + ")"
	}
}

func mask(width int) uint64 {
	return ^uint64(0) >> uint(64-width)
}

func checkBin(op Op, a, b Value) {
	if !a.Valid() || !b.Valid() {
		panic(&MismatchError{Op: op, Detail: "operand is the zero Value"})
	}
	if a.width != b.width {
		panic(&MismatchError{Op: op, Detail: fmt.Sprintf("operand widths %d and %d differ", a.width, b.width)})
	}
}

func defer2(op Op, width int, a, b Value) Value {
	return Value{width: width, node: &node{op: op, width: width, args: []Value{a, b}}}
}

func defer1(op Op, width int, a Value) Value {
	return Value{width: width, node: &node{op: op, width: width, args: []Value{a}}}
}

// Not returns the bitwise complement of a.
func Not(a Value) Value {
	if !a.Valid() {
		panic(&MismatchError{Op: OpNot, Detail: "operand is the zero Value"})
	}
	if c, ok := a.Concrete(); ok {
		return Value{width: a.width, bits: ^c & mask(a.width)}
	}
	if a.node.op == OpNot {
		return a.node.args[0]
	}
	return defer1(OpNot, a.width, a)
}

// Neg returns the two's-complement negation of a.
func Neg(a Value) Value {
	if !a.Valid() {
		panic(&MismatchError{Op: OpNeg, Detail: "operand is the zero Value"})
	}
	if c, ok := a.Concrete(); ok {
		return Value{width: a.width, bits: (-c) & mask(a.width)}
	}
	if a.node.op == OpNeg {
		return a.node.args[0]
	}
	return defer1(OpNeg, a.width, a)
}

// And returns the bitwise conjunction of a and b.
func And(a, b Value) Value {
	checkBin(OpAnd, a, b)
	ca, oka := a.Concrete()
	cb, okb := b.Concrete()
	if oka && okb {
		return Value{width: a.width, bits: ca & cb}
	}
	// absorbing and identity elements
	if oka {
		a, b = b, a
		cb, okb = ca, true
	}
	if okb {
		if cb == 0 {
			return Zero(a.width)
		}
		if cb == mask(a.width) {
			return a
		}
	}
	if a.Identical(b) {
		return a
	}
	return defer2(OpAnd, a.width, a, b)
}

// Or returns the bitwise disjunction of a and b.
func Or(a, b Value) Value {
	checkBin(OpOr, a, b)
	ca, oka := a.Concrete()
	cb, okb := b.Concrete()
	if oka && okb {
		return Value{width: a.width, bits: ca | cb}
	}
	if oka {
		a, b = b, a
		cb, okb = ca, true
	}
	if okb {
		if cb == 0 {
			return a
		}
		if cb == mask(a.width) {
			return Must(mask(a.width), a.width)
		}
	}
	if a.Identical(b) {
		return a
	}
	return defer2(OpOr, a.width, a, b)
}

// Xor returns the bitwise exclusive or of a and b.
func Xor(a, b Value) Value {
	checkBin(OpXor, a, b)
	ca, oka := a.Concrete()
	cb, okb := b.Concrete()
	if oka && okb {
		return Value{width: a.width, bits: ca ^ cb}
	}
	if oka {
		a, b = b, a
		cb, okb = ca, true
	}
	if okb && cb == 0 {
		return a
	}
	if a.Identical(b) {
		return Zero(a.width)
	}
	return defer2(OpXor, a.width, a, b)
}

// Add returns a+b, wrapping modulo 2^width.
func Add(a, b Value) Value {
	checkBin(OpAdd, a, b)
	ca, oka := a.Concrete()
	cb, okb := b.Concrete()
	if oka && okb {
		return Value{width: a.width, bits: (ca + cb) & mask(a.width)}
	}
	if oka {
		a, b = b, a
		cb, okb = ca, true
	}
	if okb && cb == 0 {
		return a
	}
	return defer2(OpAdd, a.width, a, b)
}

// Sub returns a-b, wrapping modulo 2^width.
func Sub(a, b Value) Value {
	checkBin(OpSub, a, b)
	ca, oka := a.Concrete()
	cb, okb := b.Concrete()
	if oka && okb {
		return Value{width: a.width, bits: (ca - cb) & mask(a.width)}
	}
	if okb && cb == 0 {
		return a
	}
	if a.Identical(b) {
		return Zero(a.width)
	}
	return defer2(OpSub, a.width, a, b)
}

func cmpOp(op Op, a, b Value, f func(x, y uint64) bool) Value {
	checkBin(op, a, b)
	ca, oka := a.Concrete()
	cb, okb := b.Concrete()
	if oka && okb {
		if f(ca, cb) {
			return One(1)
		}
		return Zero(1)
	}
	return defer2(op, 1, a, b)
}

// Eq returns the 1-bit value a==b. With a symbolic operand the result is a
// deferred constraint, never an assumed boolean.
func Eq(a, b Value) Value {
	if a.Identical(b) {
		checkBin(OpEq, a, b)
		return One(1)
	}
	return cmpOp(OpEq, a, b, func(x, y uint64) bool { return x == y })
}

// Ne returns the 1-bit value a!=b.
func Ne(a, b Value) Value {
	if a.Identical(b) {
		checkBin(OpNe, a, b)
		return Zero(1)
	}
	return cmpOp(OpNe, a, b, func(x, y uint64) bool { return x != y })
}

// Ult returns the 1-bit unsigned comparison a<b.
func Ult(a, b Value) Value {
	return cmpOp(OpUlt, a, b, func(x, y uint64) bool { return x < y })
}

// Ule returns the 1-bit unsigned comparison a<=b.
func Ule(a, b Value) Value {
	return cmpOp(OpUle, a, b, func(x, y uint64) bool { return x <= y })
}

// Ugt returns the 1-bit unsigned comparison a>b.
func Ugt(a, b Value) Value {
	return cmpOp(OpUgt, a, b, func(x, y uint64) bool { return x > y })
}

// Uge returns the 1-bit unsigned comparison a>=b.
func Uge(a, b Value) Value {
	return cmpOp(OpUge, a, b, func(x, y uint64) bool { return x >= y })
}

// Mux returns t when sel is 1 and e when sel is 0. sel must be 1 bit wide;
// t and e must have equal widths.
func Mux(sel, t, e Value) Value {
	if !sel.Valid() || sel.width != 1 {
		panic(&MismatchError{Op: OpMux, Detail: fmt.Sprintf("selector width %d, want 1", sel.width)})
	}
	checkBin(OpMux, t, e)
	if c, ok := sel.Concrete(); ok {
		if c == 1 {
			return t
		}
		return e
	}
	if t.Identical(e) {
		return t
	}
	return Value{width: t.width, node: &node{op: OpMux, width: t.width, args: []Value{sel, t, e}}}
}

// Concat returns the concatenation hi:lo, with hi occupying the most
// significant bits. The result width is the sum of the operand widths and
// must not exceed 64.
func Concat(hi, lo Value) Value {
	if !hi.Valid() || !lo.Valid() {
		panic(&MismatchError{Op: OpConcat, Detail: "operand is the zero Value"})
	}
	w := hi.width + lo.width
	if w > 64 {
		panic(&MismatchError{Op: OpConcat, Detail: fmt.Sprintf("result width %d exceeds 64", w)})
	}
	ch, okh := hi.Concrete()
	cl, okl := lo.Concrete()
	if okh && okl {
		return Value{width: w, bits: ch<<uint(lo.width) | cl}
	}
	return Value{width: w, node: &node{op: OpConcat, width: w, args: []Value{hi, lo}}}
}

// Extract returns bits hi..lo of a (inclusive, 0-indexed from the least
// significant bit) as a Value of width hi-lo+1.
func Extract(a Value, hi, lo int) Value {
	if !a.Valid() {
		panic(&MismatchError{Op: OpExtract, Detail: "operand is the zero Value"})
	}
	if lo < 0 || hi < lo || hi >= a.width {
		panic(&MismatchError{Op: OpExtract, Detail: fmt.Sprintf("range [%d:%d] out of bounds for width %d", hi, lo, a.width)})
	}
	w := hi - lo + 1
	if c, ok := a.Concrete(); ok {
		return Value{width: w, bits: (c >> uint(lo)) & mask(w)}
	}
	if w == a.width {
		return a
	}
	return Value{width: w, node: &node{op: OpExtract, width: w, args: []Value{a}, hi: hi, lo: lo}}
}

// Eval resolves a possibly symbolic value under the given variable
// assignment. It fails if a variable in the DAG has no binding.
func (v Value) Eval(env map[Var]uint64) (uint64, error) {
	if c, ok := v.Concrete(); ok {
		return c, nil
	}
	memo := make(map[*node]uint64)
	return v.eval(env, memo)
}

func (v Value) eval(env map[Var]uint64, memo map[*node]uint64) (uint64, error) {
	if c, ok := v.Concrete(); ok {
		return c, nil
	}
	n := v.node
	if r, ok := memo[n]; ok {
		return r, nil
	}
	var r uint64
	switch n.op {
	case OpVar:
		b, ok := env[n.v]
		if !ok {
			return 0, fmt.Errorf("bv: no binding for %s", v)
		}
		r = b & mask(n.width)
	case OpExtract:
		a, err := n.args[0].eval(env, memo)
		if err != nil {
			return 0, err
		}
		r = (a >> uint(n.lo)) & mask(n.width)
	case OpMux:
		s, err := n.args[0].eval(env, memo)
		if err != nil {
			return 0, err
		}
		pick := n.args[2]
		if s == 1 {
			pick = n.args[1]
		}
		r, err = pick.eval(env, memo)
		if err != nil {
			return 0, err
		}
	case OpConcat:
		h, err := n.args[0].eval(env, memo)
		if err != nil {
			return 0, err
		}
		l, err := n.args[1].eval(env, memo)
		if err != nil {
			return 0, err
		}
		r = h<<uint(n.args[1].width) | l
	default:
		xs := make([]uint64, len(n.args))
		for i, a := range n.args {
			x, err := a.eval(env, memo)
			if err != nil {
				return 0, err
			}
			xs[i] = x
		}
		r = n.op.apply(xs) & mask(n.width)
	}
	memo[n] = r
	return r, nil
}
