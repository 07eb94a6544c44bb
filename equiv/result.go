package equiv

import (
	"fmt"

	"github.com/go-eda/miter/bv"
	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/explore"
)

// Verdict is the outcome of a check.
type Verdict uint8

const (
	// Unknown means a bound ran out before a proof or a counterexample was
	// found. It is never coerced into Pass.
	Unknown Verdict = iota

	// Pass means every reachable (state, input) pair drives both circuits
	// to identical outputs, proven by state-space closure or by induction.
	Pass

	// Fail means a concrete input sequence separates the outputs.
	Fail
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Divergence is one output disagreeing at the final cycle of a
// counterexample. A and B are the concrete values observed on each side,
// in Check argument order.
type Divergence struct {
	Output string
	A, B   bv.Value
}

func (d Divergence) String() string {
	return fmt.Sprintf("%s: %s != %s", d.Output, d.A, d.B)
}

// Counterexample is a minimal-length input sequence after which at least
// one output disagrees. Inputs hold one concrete assignment per cycle,
// aligned with Ports; the divergence is observed at the last cycle, before
// the final state update.
type Counterexample struct {
	Ports       []circuit.Port
	Inputs      []circuit.Inputs
	Divergences []Divergence
}

// Cycle returns the cycle at which the outputs disagree.
func (cex *Counterexample) Cycle() int { return len(cex.Inputs) - 1 }

// Result is the outcome of Check.
type Result struct {
	// A and B are the circuit names, in argument order. Swapping the
	// arguments swaps every A/B pair in the result and changes nothing
	// else.
	A, B string

	Verdict Verdict

	// Strategy is the strategy that settled the verdict, never Auto.
	Strategy Strategy

	// Depth is the bounded proof depth for Pass, the divergence cycle for
	// Fail, and the deepest fully checked cycle for Unknown.
	Depth int

	// States counts visited product states; Queries counts solver calls.
	States  int
	Queries int

	// Bound is the exhausted bound when the verdict is Unknown.
	Bound *explore.BoundError

	// Counterexample is set when the verdict is Fail.
	Counterexample *Counterexample
}

// replay runs both circuits from reset under a concrete input sequence and
// rebuilds the divergence the engine claims, independently of the product
// circuit. The claim must reproduce exactly: diverging earlier, later or
// not at all means the engine itself is broken, not the circuits.
func replay(a, b *circuit.Circuit, trace []circuit.Inputs) (*Counterexample, error) {
	sa, sb := a.Reset(), b.Reset()
	ports := a.OutputPorts()
	for cycle, in := range trace {
		outA, nextA, err := a.Step(sa, in)
		if err != nil {
			return nil, newInconsistency("replaying %s at cycle %d: %v", a.Name(), cycle, err)
		}
		outB, nextB, err := b.Step(sb, in)
		if err != nil {
			return nil, newInconsistency("replaying %s at cycle %d: %v", b.Name(), cycle, err)
		}
		var divs []Divergence
		for i, p := range ports {
			va, okA := outA[i].Concrete()
			vb, okB := outB[i].Concrete()
			if !okA || !okB {
				return nil, newInconsistency("replayed output %s is symbolic at cycle %d", p.Name, cycle)
			}
			if va != vb {
				divs = append(divs, Divergence{Output: p.Name, A: outA[i], B: outB[i]})
			}
		}
		if len(divs) > 0 {
			if cycle != len(trace)-1 {
				return nil, newInconsistency("outputs diverge at cycle %d, before the claimed cycle %d",
					cycle, len(trace)-1)
			}
			return &Counterexample{Ports: a.Inputs(), Inputs: trace, Divergences: divs}, nil
		}
		sa, sb = nextA, nextB
	}
	return nil, newInconsistency("claimed counterexample of %d cycles does not separate the outputs", len(trace))
}

// concretize resolves a symbolic input trace under a solver model,
// zero-filling variables the queried cone never mentioned.
func concretize(trace []circuit.Inputs, env map[bv.Var]uint64) ([]circuit.Inputs, error) {
	if env == nil {
		env = make(map[bv.Var]uint64)
	}
	out := make([]circuit.Inputs, len(trace))
	for i, in := range trace {
		cin := make(circuit.Inputs, len(in))
		for j, v := range in {
			if c, ok := v.Concrete(); ok {
				cin[j] = bv.Must(c, v.Width())
				continue
			}
			fillVars(v, env)
			x, err := v.Eval(env)
			if err != nil {
				return nil, newInconsistency("resolving the cycle %d trace: %v", i, err)
			}
			cin[j] = bv.Must(x, v.Width())
		}
		out[i] = cin
	}
	return out, nil
}

// fillVars defaults every variable in v's cone that env does not bind.
func fillVars(v bv.Value, env map[bv.Var]uint64) {
	if !v.Symbolic() {
		return
	}
	if v.Op() == bv.OpVar {
		if _, ok := env[v.Var()]; !ok {
			env[v.Var()] = 0
		}
		return
	}
	for _, arg := range v.Operands() {
		fillVars(arg, env)
	}
}
