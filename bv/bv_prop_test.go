package bv

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestValueProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	const width = 7
	inRange := gen.UInt64Range(0, mask(width))

	properties.Property("addition wraps modulo 2^width", prop.ForAll(
		func(a, b uint64) bool {
			return Add(Must(a, width), Must(b, width)).Uint64() == (a+b)&mask(width)
		}, inRange, inRange,
	))

	properties.Property("subtraction is addition of the negation", prop.ForAll(
		func(a, b uint64) bool {
			x, y := Must(a, width), Must(b, width)
			return Sub(x, y).Uint64() == Add(x, Neg(y)).Uint64()
		}, inRange, inRange,
	))

	properties.Property("xor is an involution", prop.ForAll(
		func(a, b uint64) bool {
			x, y := Must(a, width), Must(b, width)
			return Xor(Xor(x, y), y).Uint64() == a
		}, inRange, inRange,
	))

	properties.Property("concat then extract is the identity", prop.ForAll(
		func(a, b uint64) bool {
			x, y := Must(a, width), Must(b, width)
			v := Concat(x, y)
			return Extract(v, 2*width-1, width).Uint64() == a &&
				Extract(v, width-1, 0).Uint64() == b
		}, inRange, inRange,
	))

	properties.Property("comparisons agree with uint64 order", prop.ForAll(
		func(a, b uint64) bool {
			x, y := Must(a, width), Must(b, width)
			lt := Ult(x, y).Uint64() == 1
			eq := Eq(x, y).Uint64() == 1
			gt := Ugt(x, y).Uint64() == 1
			return lt == (a < b) && eq == (a == b) && gt == (a > b) &&
				(Ule(x, y).Uint64() == 1) == (lt || eq) &&
				(Uge(x, y).Uint64() == 1) == (gt || eq)
		}, inRange, inRange,
	))

	properties.Property("symbolic evaluation matches the concrete fold", prop.ForAll(
		func(a, b, s uint64) bool {
			pool := NewPool()
			x := pool.Fresh(width, "x")
			y := pool.Fresh(width, "y")
			sel := pool.Fresh(1, "sel")

			expr := Mux(sel, Add(x, y), Xor(Not(x), Sub(y, x)))
			env := map[Var]uint64{x.Var(): a, y.Var(): b, sel.Var(): s}
			got, err := expr.Eval(env)
			if err != nil {
				return false
			}

			cx, cy, cs := Must(a, width), Must(b, width), Must(s, 1)
			want := Mux(cs, Add(cx, cy), Xor(Not(cx), Sub(cy, cx)))
			return got == want.Uint64()
		}, inRange, inRange, gen.UInt64Range(0, 1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
