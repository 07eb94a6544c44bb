package bv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert := require.New(t)

	v, err := New(5, 3)
	assert.NoError(err)
	assert.Equal(3, v.Width())
	assert.Equal(uint64(5), v.Uint64())
	assert.False(v.Symbolic())

	_, err = New(4, 2)
	var overflow *OverflowError
	assert.ErrorAs(err, &overflow)
	assert.Equal(uint64(4), overflow.Value)
	assert.Equal(2, overflow.Width)

	_, err = New(0, 0)
	var rangeErr *WidthRangeError
	assert.ErrorAs(err, &rangeErr)

	_, err = New(0, 65)
	assert.ErrorAs(err, &rangeErr)

	// 64-bit values must not shift out of range when checked
	v, err = New(^uint64(0), 64)
	assert.NoError(err)
	assert.Equal(^uint64(0), v.Uint64())
}

func TestWraparound(t *testing.T) {
	assert := require.New(t)

	// a 2-bit counter wraps from 3 to 0
	q := Must(3, 2)
	assert.Equal(uint64(0), Add(q, One(2)).Uint64())
	assert.Equal(uint64(3), Sub(Zero(2), One(2)).Uint64())
	assert.Equal(uint64(1), Neg(Must(3, 2)).Uint64())
	assert.Equal(uint64(0), Neg(Zero(2)).Uint64())
}

func TestConcreteOps(t *testing.T) {
	assert := require.New(t)

	a := Must(0b1100, 4)
	b := Must(0b1010, 4)

	assert.Equal(uint64(0b1000), And(a, b).Uint64())
	assert.Equal(uint64(0b1110), Or(a, b).Uint64())
	assert.Equal(uint64(0b0110), Xor(a, b).Uint64())
	assert.Equal(uint64(0b0011), Not(a).Uint64())
	assert.Equal(uint64(0b0110), Add(a, b).Uint64())
	assert.Equal(uint64(0b0010), Sub(a, b).Uint64())
}

func TestCompare(t *testing.T) {
	assert := require.New(t)

	a := Must(2, 3)
	b := Must(5, 3)

	for _, tc := range []struct {
		name string
		got  Value
		want uint64
	}{
		{"eq", Eq(a, b), 0},
		{"ne", Ne(a, b), 1},
		{"lt", Ult(a, b), 1},
		{"le", Ule(a, a), 1},
		{"gt", Ugt(a, b), 0},
		{"ge", Uge(b, a), 1},
	} {
		assert.Equal(1, tc.got.Width(), tc.name)
		assert.Equal(tc.want, tc.got.Uint64(), tc.name)
	}
}

func TestMux(t *testing.T) {
	assert := require.New(t)

	a := Must(6, 3)
	b := Must(1, 3)

	assert.Equal(uint64(6), Mux(One(1), a, b).Uint64())
	assert.Equal(uint64(1), Mux(Zero(1), a, b).Uint64())
}

func TestConcatExtract(t *testing.T) {
	assert := require.New(t)

	hi := Must(0b10, 2)
	lo := Must(0b011, 3)
	v := Concat(hi, lo)
	assert.Equal(5, v.Width())
	assert.Equal(uint64(0b10011), v.Uint64())

	assert.Equal(uint64(0b10), Extract(v, 4, 3).Uint64())
	assert.Equal(uint64(0b011), Extract(v, 2, 0).Uint64())
	assert.Equal(uint64(1), Extract(v, 0, 0).Uint64())
}

func TestMismatchPanics(t *testing.T) {
	assert := require.New(t)

	a := Must(1, 2)
	b := Must(1, 3)

	recovered := func(f func()) error {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = r.(error)
				}
			}()
			f()
		}()
		return err
	}

	var mismatch *MismatchError
	assert.ErrorAs(recovered(func() { And(a, b) }), &mismatch)
	assert.Equal(OpAnd, mismatch.Op)
	assert.ErrorAs(recovered(func() { Add(a, b) }), &mismatch)
	assert.ErrorAs(recovered(func() { Eq(a, b) }), &mismatch)
	assert.ErrorAs(recovered(func() { Mux(a, b, b) }), &mismatch)
	assert.ErrorAs(recovered(func() { Extract(a, 2, 0) }), &mismatch)
	assert.ErrorAs(recovered(func() { var zero Value; Not(zero) }), &mismatch)
}

func TestSymbolicDeferral(t *testing.T) {
	assert := require.New(t)

	pool := NewPool()
	x := pool.Fresh(4, "x")
	assert.True(x.Symbolic())
	assert.Equal(OpVar, x.Op())
	assert.Equal(4, x.Width())

	sum := Add(x, Must(3, 4))
	assert.True(sum.Symbolic())
	assert.Equal(OpAdd, sum.Op())
	assert.Len(sum.Operands(), 2)
	assert.True(sum.Operands()[0].Identical(x))

	_, ok := sum.Concrete()
	assert.False(ok)
}

func TestEqYieldsConstraint(t *testing.T) {
	assert := require.New(t)

	pool := NewPool()
	x := pool.Fresh(2, "x")

	// equality over a symbolic operand is a deferred 1-bit constraint,
	// not a guessed boolean
	c := Eq(x, Must(2, 2))
	assert.True(c.Symbolic())
	assert.Equal(OpEq, c.Op())
	assert.Equal(1, c.Width())
}

func TestSimplify(t *testing.T) {
	assert := require.New(t)

	pool := NewPool()
	x := pool.Fresh(4, "x")
	ones := Must(0xf, 4)

	assert.Equal(uint64(0), And(x, Zero(4)).Uint64())
	assert.True(And(x, ones).Identical(x))
	assert.True(And(ones, x).Identical(x))
	assert.True(Or(x, Zero(4)).Identical(x))
	assert.Equal(uint64(0xf), Or(x, ones).Uint64())
	assert.True(Xor(x, Zero(4)).Identical(x))
	assert.Equal(uint64(0), Xor(x, x).Uint64())
	assert.True(Add(x, Zero(4)).Identical(x))
	assert.True(Add(Zero(4), x).Identical(x))
	assert.True(Sub(x, Zero(4)).Identical(x))
	assert.Equal(uint64(0), Sub(x, x).Uint64())
	assert.True(Not(Not(x)).Identical(x))
	assert.True(Neg(Neg(x)).Identical(x))
	assert.True(Mux(pool.Fresh(1, "s"), x, x).Identical(x))
	assert.Equal(uint64(1), Eq(x, x).Uint64())
	assert.Equal(uint64(0), Ne(x, x).Uint64())
	assert.True(Extract(x, 3, 0).Identical(x))
}

func TestEval(t *testing.T) {
	assert := require.New(t)

	pool := NewPool()
	x := pool.Fresh(4, "x")
	y := pool.Fresh(4, "y")
	s := pool.Fresh(1, "s")

	expr := Mux(s, Add(x, y), Concat(Extract(x, 3, 2), Extract(y, 1, 0)))

	env := map[Var]uint64{x.Var(): 0b1101, y.Var(): 0b0110, s.Var(): 1}
	got, err := expr.Eval(env)
	assert.NoError(err)
	assert.Equal(uint64(0b0011), got) // 13+6 mod 16

	env[s.Var()] = 0
	got, err = expr.Eval(env)
	assert.NoError(err)
	assert.Equal(uint64(0b1110), got)

	_, err = expr.Eval(map[Var]uint64{x.Var(): 1})
	assert.Error(err)
}

func TestString(t *testing.T) {
	pool := NewPool()
	x := pool.Fresh(2, "en")

	assert.Equal(t, "2'd3", Must(3, 2).String())
	assert.Equal(t, "en", x.String())
	assert.Equal(t, "add(en, 2'd1)", Add(x, One(2)).String())
	assert.Equal(t, "bits(en, 1, 1)", Extract(x, 1, 1).String())
}

func TestPool(t *testing.T) {
	assert := require.New(t)

	pool := NewPool()
	a := pool.Fresh(3, "a")
	b := pool.Fresh(1, "b")

	assert.Equal(2, pool.Len())
	assert.Equal(3, pool.Width(a.Var()))
	assert.Equal(1, pool.Width(b.Var()))
	assert.Equal("a", pool.Label(a.Var()))
	assert.NotEqual(a.Var(), b.Var())

	// fresh variables are distinct even with identical labels
	c := pool.Fresh(3, "a")
	assert.False(a.Identical(c))
}
