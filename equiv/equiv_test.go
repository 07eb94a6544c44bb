package equiv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-eda/miter/bv"
	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/explore"
	"github.com/go-eda/miter/internal/testcircuits"
)

func TestCounterPairPasses(t *testing.T) {
	assert := require.New(t)

	gate := testcircuits.CounterGate()
	gold := testcircuits.CounterGold()

	res, err := Check(context.Background(), gate, gold)
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(Explicit, res.Strategy)
	assert.Equal(4, res.Depth)
	assert.Equal(4, res.States)
	assert.Nil(res.Bound)
	assert.Nil(res.Counterexample)
	assert.Equal("counter_gate", res.A)
	assert.Equal("counter_gold", res.B)

	// swapping the arguments swaps labels and nothing else
	swapped, err := Check(context.Background(), gold, gate)
	assert.NoError(err)
	assert.Equal(Pass, swapped.Verdict)
	assert.Equal(res.Depth, swapped.Depth)
	assert.Equal(res.States, swapped.States)
	assert.Equal("counter_gold", swapped.A)
	assert.Equal("counter_gate", swapped.B)
}

func TestCounterPairInduction(t *testing.T) {
	assert := require.New(t)

	res, err := Check(context.Background(),
		testcircuits.CounterGate(), testcircuits.CounterGold(),
		WithStrategy(Induction), WithMaxDepth(8))
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(Induction, res.Strategy)
	assert.Equal(1, res.Depth)
	assert.Nil(res.Bound)
}

func TestIdenticalPairPasses(t *testing.T) {
	assert := require.New(t)

	gate := testcircuits.CounterGate()

	res, err := Check(context.Background(), gate, gate)
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(Explicit, res.Strategy)
	assert.Equal(4, res.Depth)
	assert.Equal(4, res.States)
	assert.Nil(res.Bound)

	res, err = Check(context.Background(), gate, gate,
		WithStrategy(Induction), WithMaxDepth(8))
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(Induction, res.Strategy)
	assert.Equal(1, res.Depth)
}

func TestDriftFails(t *testing.T) {
	assert := require.New(t)

	gate := testcircuits.CounterGate()
	drift := testcircuits.CounterDrift()

	res, err := Check(context.Background(), gate, drift)
	assert.NoError(err)
	assert.Equal(Fail, res.Verdict)
	assert.Equal(Explicit, res.Strategy)
	assert.Equal(1, res.Depth)

	cex := res.Counterexample
	assert.NotNil(cex)
	assert.Equal(1, cex.Cycle())
	assert.Len(cex.Inputs, 2)
	// the drift is first visible by holding the enable low
	assert.Equal(uint64(0), cex.Inputs[0][0].Uint64())
	assert.Equal(uint64(0), cex.Inputs[1][0].Uint64())
	assert.Len(cex.Divergences, 1)
	assert.Equal("count", cex.Divergences[0].Output)
	assert.Equal(uint64(0), cex.Divergences[0].A.Uint64())
	assert.Equal(uint64(1), cex.Divergences[0].B.Uint64())

	// the same divergence reads mirrored with the arguments swapped
	swapped, err := Check(context.Background(), drift, gate)
	assert.NoError(err)
	assert.Equal(Fail, swapped.Verdict)
	assert.Equal(uint64(1), swapped.Counterexample.Divergences[0].A.Uint64())
	assert.Equal(uint64(0), swapped.Counterexample.Divergences[0].B.Uint64())
}

func TestInterfaceMismatch(t *testing.T) {
	assert := require.New(t)

	res, err := Check(context.Background(),
		testcircuits.CounterGate(), testcircuits.CounterWideEn())
	assert.Error(err)

	var mismatch *InterfaceMismatchError
	assert.ErrorAs(err, &mismatch)
	assert.Equal("counter_gate", mismatch.A)
	assert.Equal("counter_wide_en", mismatch.B)
	assert.Len(mismatch.Diffs, 1)
	assert.Equal("input", mismatch.Diffs[0].Kind)
	assert.Equal("en", mismatch.Diffs[0].Name)
	assert.Equal(1, mismatch.Diffs[0].WidthA)
	assert.Equal(2, mismatch.Diffs[0].WidthB)

	// rejected before any exploration
	assert.Equal(0, res.States)
	assert.Equal(0, res.Queries)
}

func TestInterfaceMismatchMissingPorts(t *testing.T) {
	assert := require.New(t)

	_, err := Check(context.Background(),
		testcircuits.Passthrough(1), testcircuits.OrLatch())
	var mismatch *InterfaceMismatchError
	assert.ErrorAs(err, &mismatch)
	assert.Len(mismatch.Diffs, 2)
	assert.Equal("d", mismatch.Diffs[0].Name)
	assert.Equal(0, mismatch.Diffs[0].WidthA)
	assert.Equal(1, mismatch.Diffs[0].WidthB)
	assert.Equal("x", mismatch.Diffs[1].Name)
	assert.Equal(1, mismatch.Diffs[1].WidthA)
	assert.Equal(0, mismatch.Diffs[1].WidthB)
}

func TestCombinationalDepthZero(t *testing.T) {
	assert := require.New(t)

	res, err := Check(context.Background(),
		testcircuits.Passthrough(4), testcircuits.PassthroughDN(4))
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(Explicit, res.Strategy)
	assert.Equal(0, res.Depth)
	assert.Equal(1, res.States)
}

func TestCombinationalSolverDepthZero(t *testing.T) {
	assert := require.New(t)

	// 8-bit interface forces the solver path; a combinational product
	// still closes at depth zero
	res, err := Check(context.Background(),
		testcircuits.ShiftAdd(), testcircuits.ShiftCat())
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(BMC, res.Strategy)
	assert.Equal(0, res.Depth)
	assert.Equal(1, res.Queries)
}

func TestAccumulatorInduction(t *testing.T) {
	assert := require.New(t)

	res, err := Check(context.Background(),
		testcircuits.AccumGate(), testcircuits.AccumGold(),
		WithMaxDepth(8))
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(Induction, res.Strategy)
	assert.Equal(1, res.Depth)
	assert.Positive(res.Queries)
	assert.Nil(res.Bound)
}

func TestAccumulatorBugFails(t *testing.T) {
	assert := require.New(t)

	res, err := Check(context.Background(),
		testcircuits.AccumGold(), testcircuits.AccumBug(),
		WithMaxDepth(8))
	assert.NoError(err)
	assert.Equal(Fail, res.Verdict)
	assert.Equal(BMC, res.Strategy)
	assert.Equal(1, res.Depth)

	cex := res.Counterexample
	assert.NotNil(cex)
	assert.Len(cex.Inputs, 2)
	// only an odd addend separates the two
	assert.EqualValues(1, cex.Inputs[0][0].Uint64()&1)
	assert.Len(cex.Divergences, 1)
	div := cex.Divergences[0]
	assert.Equal("sum", div.Output)
	assert.Equal(uint64(1), div.A.Uint64()-div.B.Uint64())
}

func TestDelayPairNeedsDeeperInduction(t *testing.T) {
	assert := require.New(t)

	a := testcircuits.DelayTwo("delay_a")
	b := testcircuits.DelayTwo("delay_b")

	res, err := Check(context.Background(), a, b,
		WithStrategy(Induction), WithMaxDepth(8))
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(Induction, res.Strategy)
	// one cycle of agreement says nothing about the hidden first stage;
	// two pin both pipelines
	assert.Equal(2, res.Depth)

	// capping k below that leaves the question open
	capped, err := Check(context.Background(), a, b,
		WithStrategy(Induction), WithMaxDepth(8), WithInductionLimit(1))
	assert.NoError(err)
	assert.Equal(Unknown, capped.Verdict)
	assert.NotNil(capped.Bound)
	assert.Equal(8, capped.Depth)
}

func TestLatchPairInduction(t *testing.T) {
	assert := require.New(t)

	res, err := Check(context.Background(),
		testcircuits.OrLatch(), testcircuits.MuxLatch(),
		WithStrategy(Induction), WithMaxDepth(8))
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(Induction, res.Strategy)
	assert.Equal(1, res.Depth)
}

func TestBoundedOnlyReportsUnknown(t *testing.T) {
	assert := require.New(t)

	res, err := Check(context.Background(),
		testcircuits.CounterGate(), testcircuits.CounterGold(),
		WithStrategy(BMC), WithMaxDepth(3))
	assert.NoError(err)
	assert.Equal(Unknown, res.Verdict)
	assert.Equal(BMC, res.Strategy)
	assert.Equal(3, res.Depth)
	assert.NotNil(res.Bound)
	assert.Equal(explore.BoundDepth, res.Bound.Kind)
}

func TestExplicitDepthBoundReportsUnknown(t *testing.T) {
	assert := require.New(t)

	res, err := Check(context.Background(),
		testcircuits.CounterGate(), testcircuits.CounterGold(),
		WithMaxDepth(2))
	assert.NoError(err)
	assert.Equal(Unknown, res.Verdict)
	assert.Equal(2, res.Depth)
	assert.NotNil(res.Bound)
}

func TestForcedExplicitRejectsWideInputs(t *testing.T) {
	assert := require.New(t)

	_, err := Check(context.Background(),
		testcircuits.AccumGate(), testcircuits.AccumGold(),
		WithStrategy(Explicit))
	var wide *explore.EnumerationWidthError
	assert.ErrorAs(err, &wide)
}

func TestResetStylesAgree(t *testing.T) {
	assert := require.New(t)

	decl := func() *circuit.Circuit {
		b := circuit.NewBuilder("counter_rst_decl")
		b.Input("rst", 1)
		q := b.Register("q", 2, circuit.WithReset("rst", circuit.ActiveHigh))
		b.Next("q", b.Add(q, b.Const(1, 2)))
		b.Output("count", q)
		c, err := b.Compile()
		assert.NoError(err)
		return c
	}()
	mux := func() *circuit.Circuit {
		b := circuit.NewBuilder("counter_rst_mux")
		rst := b.Input("rst", 1)
		q := b.Register("q", 2)
		b.Next("q", b.Select(rst, b.Const(0, 2), b.Add(q, b.Const(1, 2))))
		b.Output("count", q)
		c, err := b.Compile()
		assert.NoError(err)
		return c
	}()

	res, err := Check(context.Background(), decl, mux)
	assert.NoError(err)
	assert.Equal(Pass, res.Verdict)
	assert.Equal(4, res.States)
}

func TestReplayValidatesClaims(t *testing.T) {
	assert := require.New(t)

	gate := testcircuits.CounterGate()
	gold := testcircuits.CounterGold()
	drift := testcircuits.CounterDrift()

	en0 := circuit.Inputs{bv.Must(0, 1)}
	en1 := circuit.Inputs{bv.Must(1, 1)}

	// a genuine divergence replays cleanly
	cex, err := replay(gate, drift, []circuit.Inputs{en0, en0})
	assert.NoError(err)
	assert.Equal(1, cex.Cycle())
	assert.Equal("count", cex.Divergences[0].Output)

	// a trace that never separates the outputs is an engine defect
	var inconsistent *InternalInconsistencyError
	_, err = replay(gate, gold, []circuit.Inputs{en1, en1})
	assert.ErrorAs(err, &inconsistent)
	assert.NotEmpty(inconsistent.Stack)

	// so is one that separates them before the claimed cycle
	_, err = replay(gate, drift, []circuit.Inputs{en0, en0, en1})
	assert.ErrorAs(err, &inconsistent)
}

func TestOptionValidation(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()
	gate := testcircuits.CounterGate()
	gold := testcircuits.CounterGold()

	_, err := Check(ctx, gate, gold, WithMaxDepth(0))
	assert.ErrorContains(err, "max depth")
	_, err = Check(ctx, gate, gold, WithMaxStates(0))
	assert.ErrorContains(err, "max states")
	_, err = Check(ctx, gate, gold, WithStrategy(Strategy(42)))
	assert.ErrorContains(err, "unknown strategy")
	_, err = Check(ctx, gate, gold, WithInductionLimit(0))
	assert.ErrorContains(err, "induction limit")
	_, err = Check(ctx, gate, gold, WithEnumerationLimit(-1))
	assert.ErrorContains(err, "enumeration limit")
}

func TestContextCancellation(t *testing.T) {
	assert := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, testcircuits.CounterGate(), testcircuits.CounterGold())
	assert.True(errors.Is(err, context.Canceled))
}

func TestProductShape(t *testing.T) {
	assert := require.New(t)

	p, err := buildProduct(testcircuits.CounterGate(), testcircuits.CounterGold())
	assert.NoError(err)

	var regs []string
	for _, r := range p.c.Registers() {
		regs = append(regs, r.Name)
	}
	assert.Equal([]string{"a.q0", "a.q1", "b.q"}, regs)

	var outs []string
	for _, o := range p.c.Outputs() {
		outs = append(outs, o.Name)
	}
	assert.Equal([]string{"a.count", "b.count", "eq.count"}, outs)

	assert.Equal([]circuit.Port{{Name: "en", Width: 1}}, p.c.Inputs())
	assert.Equal("eq.count", p.c.Outputs()[p.eq[0]].Name)
	assert.Equal(1, p.c.Outputs()[p.eq[0]].Width)
	assert.True(p.c.Reset().Concrete())
}
