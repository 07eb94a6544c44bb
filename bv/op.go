package bv

// Op tags a Value with the operation that produced it. Concrete values are
// OpConst and symbolic leaves are OpVar; every other tag marks a deferred
// operation over the node's operands.
type Op uint8

const (
	OpConst Op = iota
	OpVar
	OpNot
	OpNeg
	OpAnd
	OpOr
	OpXor
	OpAdd
	OpSub
	OpEq
	OpNe
	OpUlt
	OpUle
	OpUgt
	OpUge
	OpMux
	OpConcat
	OpExtract
)

var opNames = [...]string{
	OpConst:   "const",
	OpVar:     "var",
	OpNot:     "not",
	OpNeg:     "neg",
	OpAnd:     "and",
	OpOr:      "or",
	OpXor:     "xor",
	OpAdd:     "add",
	OpSub:     "sub",
	OpEq:      "eq",
	OpNe:      "ne",
	OpUlt:     "lt",
	OpUle:     "le",
	OpUgt:     "gt",
	OpUge:     "ge",
	OpMux:     "mux",
	OpConcat:  "cat",
	OpExtract: "bits",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "op?"
}

// apply folds op over concrete operand bits. The caller masks the result to
// the node width.
func (op Op) apply(xs []uint64) uint64 {
	b2u := func(b bool) uint64 {
		if b {
			return 1
		}
		return 0
	}
	switch op {
	case OpNot:
		return ^xs[0]
	case OpNeg:
		return -xs[0]
	case OpAnd:
		return xs[0] & xs[1]
	case OpOr:
		return xs[0] | xs[1]
	case OpXor:
		return xs[0] ^ xs[1]
	case OpAdd:
		return xs[0] + xs[1]
	case OpSub:
		return xs[0] - xs[1]
	case OpEq:
		return b2u(xs[0] == xs[1])
	case OpNe:
		return b2u(xs[0] != xs[1])
	case OpUlt:
		return b2u(xs[0] < xs[1])
	case OpUle:
		return b2u(xs[0] <= xs[1])
	case OpUgt:
		return b2u(xs[0] > xs[1])
	case OpUge:
		return b2u(xs[0] >= xs[1])
	default:
		panic(&MismatchError{Op: op, Detail: "not a foldable operation"})
	}
}
