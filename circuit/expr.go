package circuit

import "github.com/go-eda/miter/bv"

// Expr is a node of a combinational expression tree. Leaves are constants
// and references to input or register signals by name; inner nodes apply
// bit-vector operations. Trees are immutable descriptions only: widths are
// resolved and checked when a Circuit is compiled and values are produced
// when it is evaluated.
//
// The concrete node types are exported so that front ends (the netlist
// parser, generated circuits) can construct trees directly and so that the
// artifact encoder can register them.
type Expr interface {
	isExpr()
}

// Const is a literal of explicit width.
type Const struct {
	Value uint64
	Width int
}

// Ref names an input or register signal. Output names are not referenceable.
type Ref struct {
	Name string
}

// Unary applies a one-operand operation, bv.OpNot or bv.OpNeg.
type Unary struct {
	Op bv.Op
	X  Expr
}

// Binary applies a two-operand operation. With bv.OpConcat, X supplies the
// most significant bits.
type Binary struct {
	Op   bv.Op
	X, Y Expr
}

// Mux selects T when the 1-bit Sel is 1 and E otherwise.
type Mux struct {
	Sel, T, E Expr
}

// Slice extracts bits Hi..Lo of X, inclusive, 0-indexed from the least
// significant bit.
type Slice struct {
	X      Expr
	Hi, Lo int
}

func (Const) isExpr()  {}
func (Ref) isExpr()    {}
func (Unary) isExpr()  {}
func (Binary) isExpr() {}
func (Mux) isExpr()    {}
func (Slice) isExpr()  {}

// Rename returns e with every reference name rewritten by f. Shared
// subtrees are not preserved; the result is a fresh tree.
func Rename(e Expr, f func(string) string) Expr {
	switch n := e.(type) {
	case Const:
		return n
	case Ref:
		return Ref{Name: f(n.Name)}
	case Unary:
		return Unary{Op: n.Op, X: Rename(n.X, f)}
	case Binary:
		return Binary{Op: n.Op, X: Rename(n.X, f), Y: Rename(n.Y, f)}
	case Mux:
		return Mux{Sel: Rename(n.Sel, f), T: Rename(n.T, f), E: Rename(n.E, f)}
	case Slice:
		return Slice{X: Rename(n.X, f), Hi: n.Hi, Lo: n.Lo}
	default:
		panic(errUnknownExpr(e))
	}
}

// walk visits e and every subexpression, leaves first.
func walk(e Expr, visit func(Expr)) {
	switch n := e.(type) {
	case Const, Ref:
	case Unary:
		walk(n.X, visit)
	case Binary:
		walk(n.X, visit)
		walk(n.Y, visit)
	case Mux:
		walk(n.Sel, visit)
		walk(n.T, visit)
		walk(n.E, visit)
	case Slice:
		walk(n.X, visit)
	default:
		panic(errUnknownExpr(e))
	}
	visit(e)
}

// evalExpr resolves e under env. Width violations surface as bv panics; the
// compile-time dry run turns them into errors, so evaluation of a compiled
// circuit cannot hit them.
func evalExpr(e Expr, env map[string]bv.Value) bv.Value {
	switch n := e.(type) {
	case Const:
		return bv.Must(n.Value, n.Width)
	case Ref:
		v, ok := env[n.Name]
		if !ok {
			panic(&UnknownRefError{Name: n.Name})
		}
		return v
	case Unary:
		x := evalExpr(n.X, env)
		switch n.Op {
		case bv.OpNot:
			return bv.Not(x)
		case bv.OpNeg:
			return bv.Neg(x)
		default:
			panic(errUnknownExpr(e))
		}
	case Binary:
		x := evalExpr(n.X, env)
		y := evalExpr(n.Y, env)
		switch n.Op {
		case bv.OpAnd:
			return bv.And(x, y)
		case bv.OpOr:
			return bv.Or(x, y)
		case bv.OpXor:
			return bv.Xor(x, y)
		case bv.OpAdd:
			return bv.Add(x, y)
		case bv.OpSub:
			return bv.Sub(x, y)
		case bv.OpEq:
			return bv.Eq(x, y)
		case bv.OpNe:
			return bv.Ne(x, y)
		case bv.OpUlt:
			return bv.Ult(x, y)
		case bv.OpUle:
			return bv.Ule(x, y)
		case bv.OpUgt:
			return bv.Ugt(x, y)
		case bv.OpUge:
			return bv.Uge(x, y)
		case bv.OpConcat:
			return bv.Concat(x, y)
		default:
			panic(errUnknownExpr(e))
		}
	case Mux:
		return bv.Mux(evalExpr(n.Sel, env), evalExpr(n.T, env), evalExpr(n.E, env))
	case Slice:
		return bv.Extract(evalExpr(n.X, env), n.Hi, n.Lo)
	default:
		panic(errUnknownExpr(e))
	}
}
