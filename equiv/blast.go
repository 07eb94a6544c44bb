package equiv

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/go-eda/miter/bv"
	"github.com/go-eda/miter/circuit"
)

// blaster lowers deferred bv expressions into a gini and-inverter circuit,
// one literal per bit, least significant first. Lowered values are
// memoized on node identity so shared subgraphs translate once, and the
// Tseitin clauses stream to the solver incrementally between queries.
type blaster struct {
	ls   *logic.C
	memo map[bv.Value][]z.Lit
	vars map[bv.Var][]z.Lit
	mark []int8
}

func newBlaster() *blaster {
	return &blaster{
		ls:   logic.NewC(),
		memo: make(map[bv.Value][]z.Lit),
		vars: make(map[bv.Var][]z.Lit),
	}
}

// bit returns the literal of a 1-bit value.
func (bl *blaster) bit(v bv.Value) z.Lit {
	return bl.bits(v)[0]
}

// bits lowers v.
func (bl *blaster) bits(v bv.Value) []z.Lit {
	if ls, ok := bl.memo[v]; ok {
		return ls
	}
	var out []z.Lit
	if c, ok := v.Concrete(); ok {
		out = bl.constBits(c, v.Width())
		bl.memo[v] = out
		return out
	}
	args := v.Operands()
	switch op := v.Op(); op {
	case bv.OpVar:
		out = make([]z.Lit, v.Width())
		for i := range out {
			out[i] = bl.ls.Lit()
		}
		bl.vars[v.Var()] = out
	case bv.OpNot:
		out = bl.invert(bl.bits(args[0]))
	case bv.OpNeg:
		x := bl.bits(args[0])
		out = bl.add(bl.invert(x), bl.constBits(0, len(x)), bl.ls.T)
	case bv.OpAnd, bv.OpOr, bv.OpXor:
		x, y := bl.bits(args[0]), bl.bits(args[1])
		out = make([]z.Lit, len(x))
		for i := range x {
			switch op {
			case bv.OpAnd:
				out[i] = bl.ls.And(x[i], y[i])
			case bv.OpOr:
				out[i] = bl.ls.Or(x[i], y[i])
			default:
				out[i] = bl.ls.Xor(x[i], y[i])
			}
		}
	case bv.OpAdd:
		out = bl.add(bl.bits(args[0]), bl.bits(args[1]), bl.ls.F)
	case bv.OpSub:
		// a - b is a + ^b + 1
		out = bl.add(bl.bits(args[0]), bl.invert(bl.bits(args[1])), bl.ls.T)
	case bv.OpEq:
		out = []z.Lit{bl.eq(bl.bits(args[0]), bl.bits(args[1]))}
	case bv.OpNe:
		out = []z.Lit{bl.eq(bl.bits(args[0]), bl.bits(args[1])).Not()}
	case bv.OpUlt:
		out = []z.Lit{bl.less(bl.bits(args[0]), bl.bits(args[1]))}
	case bv.OpUle:
		out = []z.Lit{bl.less(bl.bits(args[1]), bl.bits(args[0])).Not()}
	case bv.OpUgt:
		out = []z.Lit{bl.less(bl.bits(args[1]), bl.bits(args[0]))}
	case bv.OpUge:
		out = []z.Lit{bl.less(bl.bits(args[0]), bl.bits(args[1])).Not()}
	case bv.OpMux:
		sel := bl.bit(args[0])
		t, e := bl.bits(args[1]), bl.bits(args[2])
		out = make([]z.Lit, len(t))
		for i := range t {
			out[i] = bl.ls.Choice(sel, t[i], e[i])
		}
	case bv.OpConcat:
		hi, lo := bl.bits(args[0]), bl.bits(args[1])
		out = append(append(make([]z.Lit, 0, len(hi)+len(lo)), lo...), hi...)
	case bv.OpExtract:
		x := bl.bits(args[0])
		hi, lo := v.ExtractBounds()
		out = append([]z.Lit(nil), x[lo:hi+1]...)
	default:
		panic(newInconsistency("lowering unsupported op %v", op))
	}
	bl.memo[v] = out
	return out
}

func (bl *blaster) constBits(x uint64, width int) []z.Lit {
	out := make([]z.Lit, width)
	for i := range out {
		if x>>uint(i)&1 == 1 {
			out[i] = bl.ls.T
		} else {
			out[i] = bl.ls.F
		}
	}
	return out
}

func (bl *blaster) invert(xs []z.Lit) []z.Lit {
	out := make([]z.Lit, len(xs))
	for i, m := range xs {
		out[i] = m.Not()
	}
	return out
}

// add is a ripple-carry adder; sub and neg reuse it with inverted operands
// and carry-in 1.
func (bl *blaster) add(x, y []z.Lit, carry z.Lit) []z.Lit {
	out := make([]z.Lit, len(x))
	for i := range x {
		half := bl.ls.Xor(x[i], y[i])
		out[i] = bl.ls.Xor(half, carry)
		carry = bl.ls.Or(bl.ls.And(x[i], y[i]), bl.ls.And(half, carry))
	}
	return out
}

func (bl *blaster) eq(x, y []z.Lit) z.Lit {
	same := make([]z.Lit, len(x))
	for i := range x {
		same[i] = bl.ls.Xor(x[i], y[i]).Not()
	}
	return bl.ls.Ands(same...)
}

// less is unsigned x < y. Scanning upward lets the most significant
// differing bit decide.
func (bl *blaster) less(x, y []z.Lit) z.Lit {
	lt := bl.ls.F
	for i := range x {
		lt = bl.ls.Choice(bl.ls.Xor(x[i], y[i]), y[i], lt)
	}
	return lt
}

// agreement is the conjunction of the product's eq outputs for one frame.
func (bl *blaster) agreement(out circuit.Outputs, eq []int) z.Lit {
	lits := make([]z.Lit, len(eq))
	for i, idx := range eq {
		lits[i] = bl.bit(out[idx])
	}
	return bl.ls.Ands(lits...)
}

// solve asks whether the assumed literals can hold at once, first
// streaming any clauses the solver has not seen yet. The constant
// literals fold away here: no clause ever pins their variable, so the
// solver must not see them as assumptions.
func (bl *blaster) solve(sat *gini.Gini, assume ...z.Lit) (bool, error) {
	roots := make([]z.Lit, 0, len(assume))
	for _, m := range assume {
		if m == bl.ls.T {
			continue
		}
		if m == bl.ls.F {
			return false, nil
		}
		roots = append(roots, m)
	}
	if len(roots) == 0 {
		return true, nil
	}
	bl.mark, _ = bl.ls.CnfSince(sat, bl.mark, roots...)
	sat.Assume(roots...)
	switch r := sat.Solve(); r {
	case satisfiable:
		return true, nil
	case unsatisfiable:
		return false, nil
	default:
		return false, newInconsistency("solver returned %d", r)
	}
}

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// model reads the assignment of every lowered variable back out of the
// solver. Variables outside the solved cone read as zero.
func (bl *blaster) model(sat *gini.Gini) map[bv.Var]uint64 {
	env := make(map[bv.Var]uint64, len(bl.vars))
	max := sat.MaxVar()
	for v, lits := range bl.vars {
		var x uint64
		for i, m := range lits {
			if m.Var() <= max && sat.Value(m) {
				x |= 1 << uint(i)
			}
		}
		env[v] = x
	}
	return env
}
