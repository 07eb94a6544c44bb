package explore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-eda/miter/bv"
	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/explore"
)

func enabledCounter(t *testing.T) *circuit.Circuit {
	t.Helper()
	b := circuit.NewBuilder("counter")
	en := b.Input("en", 1)
	q := b.Register("q", 2)
	b.Next("q", b.Select(en, b.Add(q, b.Const(1, 2)), q))
	b.Output("count", q)
	c, err := b.Compile()
	require.NoError(t, err)
	return c
}

func freeCounter(t *testing.T, width int) *circuit.Circuit {
	t.Helper()
	b := circuit.NewBuilder("free")
	q := b.Register("q", width)
	b.Next("q", b.Add(q, b.Const(1, width)))
	b.Output("q", q)
	c, err := b.Compile()
	require.NoError(t, err)
	return c
}

func accept(*explore.Node, circuit.Inputs, circuit.Outputs) error { return nil }

func TestEnumeratedCounterCloses(t *testing.T) {
	assert := require.New(t)

	ex, err := explore.New(enabledCounter(t))
	assert.NoError(err)
	assert.Equal(explore.Enumerated, ex.Mode())

	checks := 0
	res, err := ex.Run(context.Background(), func(n *explore.Node, in circuit.Inputs, out circuit.Outputs) error {
		checks++
		// enumerated walks stay fully concrete
		require.True(t, n.State.Concrete())
		require.True(t, in.Concrete())
		require.False(t, out[0].Symbolic())
		return nil
	})
	assert.NoError(err)

	assert.True(res.Closed)
	assert.Nil(res.Exhausted)
	assert.Equal(4, res.Visited)
	assert.Equal(4, res.Depth)
	// 4 states, 2 input assignments each
	assert.Equal(8, checks)
}

func TestTraceReconstruction(t *testing.T) {
	assert := require.New(t)

	ex, err := explore.New(enabledCounter(t))
	assert.NoError(err)

	var trace []circuit.Inputs
	res, err := ex.Run(context.Background(), func(n *explore.Node, in circuit.Inputs, out circuit.Outputs) error {
		if trace == nil && n.State[0].Uint64() == 2 {
			trace = n.Trace()
		}
		return nil
	})
	assert.NoError(err)
	assert.True(res.Closed)

	// q reaches 2 after two enabled cycles
	assert.Len(trace, 2)
	assert.Equal(uint64(1), trace[0][0].Uint64())
	assert.Equal(uint64(1), trace[1][0].Uint64())
}

func TestCombinationalChecksAtDepthZero(t *testing.T) {
	assert := require.New(t)

	b := circuit.NewBuilder("passthrough")
	x := b.Input("x", 3)
	b.Output("y", x)
	c, err := b.Compile()
	assert.NoError(err)

	ex, err := explore.New(c)
	assert.NoError(err)

	checks := 0
	res, err := ex.Run(context.Background(), func(n *explore.Node, in circuit.Inputs, out circuit.Outputs) error {
		checks++
		require.Equal(t, 0, n.Depth)
		require.Equal(t, in[0].Uint64(), out[0].Uint64())
		return nil
	})
	assert.NoError(err)

	assert.True(res.Closed)
	assert.Equal(0, res.Depth)
	assert.Equal(1, res.Visited)
	assert.Equal(8, checks)
}

func TestCheckStopsTheWalk(t *testing.T) {
	assert := require.New(t)

	boom := errors.New("diverged")
	ex, err := explore.New(enabledCounter(t))
	assert.NoError(err)

	checks := 0
	_, err = ex.Run(context.Background(), func(n *explore.Node, in circuit.Inputs, out circuit.Outputs) error {
		checks++
		if n.Depth == 1 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(err, boom)
	// both root assignments checked, then the first depth-1 evaluation
	assert.Equal(3, checks)
}

func TestDepthBound(t *testing.T) {
	assert := require.New(t)

	ex, err := explore.New(freeCounter(t, 3), explore.WithMaxDepth(2))
	assert.NoError(err)

	res, err := ex.Run(context.Background(), accept)
	assert.NoError(err)

	assert.False(res.Closed)
	assert.NotNil(res.Exhausted)
	assert.Equal(explore.BoundDepth, res.Exhausted.Kind)
	assert.Equal(2, res.Exhausted.Limit)
	assert.Equal(2, res.Depth)
	assert.Equal(3, res.Visited)
}

func TestFreeCounterClosesUnbounded(t *testing.T) {
	assert := require.New(t)

	ex, err := explore.New(freeCounter(t, 3))
	assert.NoError(err)

	res, err := ex.Run(context.Background(), accept)
	assert.NoError(err)

	assert.True(res.Closed)
	assert.Equal(8, res.Visited)
	assert.Equal(8, res.Depth)
}

func TestStatesBound(t *testing.T) {
	assert := require.New(t)

	ex, err := explore.New(freeCounter(t, 3), explore.WithMaxStates(4))
	assert.NoError(err)

	res, err := ex.Run(context.Background(), accept)
	assert.NoError(err)

	assert.False(res.Closed)
	assert.NotNil(res.Exhausted)
	assert.Equal(explore.BoundStates, res.Exhausted.Kind)
}

func TestSparseStateStore(t *testing.T) {
	assert := require.New(t)

	// 30 state bits exceed the dense store, forcing the hashed path
	b := circuit.NewBuilder("wide")
	b.Register("q", 30, circuit.WithInit(5))
	b.Next("q", circuit.Const{Value: 0, Width: 30})
	b.Output("q", circuit.Ref{Name: "q"})
	c, err := b.Compile()
	assert.NoError(err)

	ex, err := explore.New(c)
	assert.NoError(err)

	res, err := ex.Run(context.Background(), accept)
	assert.NoError(err)
	assert.True(res.Closed)
	assert.Equal(2, res.Visited)
}

func TestSymbolicChain(t *testing.T) {
	assert := require.New(t)

	b := circuit.NewBuilder("accum")
	d := b.Input("d", 8)
	q := b.Register("q", 8)
	b.Next("q", b.Add(q, d))
	b.Output("sum", q)
	c, err := b.Compile()
	assert.NoError(err)

	ex, err := explore.New(c, explore.WithMaxDepth(3))
	assert.NoError(err)
	assert.Equal(explore.Symbolic, ex.Mode())

	var perDepth []int
	res, err := ex.Run(context.Background(), func(n *explore.Node, in circuit.Inputs, out circuit.Outputs) error {
		for len(perDepth) <= n.Depth {
			perDepth = append(perDepth, 0)
		}
		perDepth[n.Depth]++
		require.True(t, in[0].Symbolic())
		if n.Depth > 0 {
			require.True(t, n.State[0].Symbolic())
			require.True(t, out[0].Symbolic())
		}
		return nil
	})
	assert.NoError(err)

	assert.False(res.Closed)
	assert.Equal(explore.BoundDepth, res.Exhausted.Kind)
	assert.Equal(3, res.Depth)
	// one node per level in a symbolic walk
	assert.Equal([]int{1, 1, 1, 1}, perDepth)
}

func TestEnumerationWidthRejected(t *testing.T) {
	b := circuit.NewBuilder("wide_in")
	x := b.Input("x", 8)
	b.Output("y", x)
	c, err := b.Compile()
	require.NoError(t, err)

	_, err = explore.New(c, explore.WithMode(explore.Enumerated))
	var werr *explore.EnumerationWidthError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, 8, werr.Bits)
	require.Equal(t, 4, werr.Limit)

	// a raised limit admits it
	_, err = explore.New(c, explore.WithMode(explore.Enumerated), explore.WithEnumerationLimit(8))
	require.NoError(t, err)
}

func TestOptionValidation(t *testing.T) {
	c := enabledCounter(t)

	_, err := explore.New(c, explore.WithMaxDepth(0))
	require.Error(t, err)
	_, err = explore.New(c, explore.WithMaxStates(-1))
	require.Error(t, err)
	_, err = explore.New(c, explore.WithEnumerationLimit(99))
	require.Error(t, err)
}

func TestContextCancellation(t *testing.T) {
	ex, err := explore.New(enabledCounter(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ex.Run(ctx, accept)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSymbolicTraceCarriesCycleVariables(t *testing.T) {
	assert := require.New(t)

	b := circuit.NewBuilder("accum")
	d := b.Input("d", 4)
	q := b.Register("q", 4)
	b.Next("q", b.Add(q, d))
	b.Output("sum", q)
	c, err := b.Compile()
	assert.NoError(err)

	ex, err := explore.New(c, explore.WithMode(explore.Symbolic), explore.WithMaxDepth(2))
	assert.NoError(err)

	var deepest *explore.Node
	_, err = ex.Run(context.Background(), func(n *explore.Node, in circuit.Inputs, out circuit.Outputs) error {
		if deepest == nil || n.Depth > deepest.Depth {
			deepest = n
		}
		return nil
	})
	assert.NoError(err)
	assert.Equal(2, deepest.Depth)

	trace := deepest.Trace()
	assert.Len(trace, 2)
	assert.Equal("d@0", trace[0][0].String())
	assert.Equal("d@1", trace[1][0].String())

	// resolving the trace variables resolves the state
	env := map[bv.Var]uint64{
		trace[0][0].Var(): 3,
		trace[1][0].Var(): 5,
	}
	got, err := deepest.State[0].Eval(env)
	assert.NoError(err)
	assert.Equal(uint64(8), got)
}
