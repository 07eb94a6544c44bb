// Package equiv decides whether two compiled circuits are sequentially
// equivalent: starting from their reset states, no input sequence may ever
// drive a shared output to different values.
//
// The check builds a product of the two circuits (a miter) and walks its
// reachable states. Narrow interfaces are enumerated outright; wider ones
// are unrolled symbolically and handed to a SAT solver depth by depth,
// with a k-induction step to close the unbounded horizon. Neither circuit
// is privileged: swapping the arguments swaps the labels in the result and
// nothing else.
package equiv

import (
	"context"
	"errors"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/explore"
	"github.com/go-eda/miter/logger"
)

// errDiverged stops an exploration once a counterexample is in hand.
var errDiverged = errors.New("equiv: outputs diverged")

// Check decides sequential equivalence of a and b. The circuits must
// expose identical input and output interfaces; anything else is an
// *InterfaceMismatchError before any state is explored. The verdict is
// Pass only on a complete proof, Fail only with a replayed counterexample,
// and Unknown when a bound ran out first.
func Check(ctx context.Context, a, b *circuit.Circuit, opts ...Option) (Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return Result{}, err
		}
	}
	res := Result{A: a.Name(), B: b.Name()}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := compareInterfaces(a, b); err != nil {
		return res, err
	}
	p, err := buildProduct(a, b)
	if err != nil {
		return res, err
	}

	e := &engine{cfg: cfg, p: p, a: a, b: b}
	strat := cfg.Strategy
	if strat == Auto {
		if p.c.InputBits() <= cfg.EnumLimit {
			strat = Explicit
		} else {
			strat = Induction
		}
	}
	switch strat {
	case Explicit:
		return e.explicit(ctx, res)
	case BMC:
		return e.bounded(ctx, res, false)
	default:
		return e.bounded(ctx, res, true)
	}
}

type engine struct {
	cfg  Config
	p    *product
	a, b *circuit.Circuit
}

// explicit enumerates the product's reachable states. Every output is
// concrete at every step, so agreement is a value comparison, and closing
// the visited set is an exhaustive proof.
func (e *engine) explicit(ctx context.Context, res Result) (Result, error) {
	res.Strategy = Explicit
	ex, err := explore.New(e.p.c,
		explore.WithMode(explore.Enumerated),
		explore.WithMaxDepth(e.cfg.MaxDepth),
		explore.WithMaxStates(e.cfg.MaxStates),
		explore.WithEnumerationLimit(e.cfg.EnumLimit),
	)
	if err != nil {
		return res, err
	}

	var trace []circuit.Inputs
	check := func(n *explore.Node, in circuit.Inputs, out circuit.Outputs) error {
		for _, idx := range e.p.eq {
			v, ok := out[idx].Concrete()
			if !ok {
				return newInconsistency("enumerated step of %s produced a symbolic output", e.p.c.Name())
			}
			if v == 0 {
				trace = append(n.Trace(), in)
				return errDiverged
			}
		}
		return nil
	}

	er, err := ex.Run(ctx, check)
	res.States = er.Visited
	switch {
	case errors.Is(err, errDiverged):
		return e.fail(res, trace)
	case err != nil:
		return res, err
	case er.Closed:
		res.Verdict = Pass
		res.Depth = er.Depth
		return res, nil
	default:
		res.Verdict = Unknown
		res.Depth = er.Depth
		res.Bound = er.Exhausted
		return res, nil
	}
}

// bounded unrolls the product symbolically from reset, asking the solver
// at each depth for an input sequence that clears some eq output. A
// divergence found this way is minimal-length: depth d is only queried
// after every depth below it came back unsatisfiable. When the bound runs
// out clean and induct is set, a k-induction step tries to finish the
// proof.
func (e *engine) bounded(ctx context.Context, res Result, induct bool) (Result, error) {
	res.Strategy = BMC
	log := logger.Logger().With().Str("product", e.p.c.Name()).Logger()

	ex, err := explore.New(e.p.c,
		explore.WithMode(explore.Symbolic),
		explore.WithMaxDepth(e.cfg.MaxDepth),
	)
	if err != nil {
		return res, err
	}

	bl := newBlaster()
	sat := gini.New()
	var trace []circuit.Inputs
	check := func(n *explore.Node, in circuit.Inputs, out circuit.Outputs) error {
		bad := make([]z.Lit, 0, len(e.p.eq))
		for _, idx := range e.p.eq {
			v := out[idx]
			if c, ok := v.Concrete(); ok {
				if c == 0 {
					// constantly unequal at this depth, no model needed
					var cerr error
					trace, cerr = concretize(append(n.Trace(), in), nil)
					if cerr != nil {
						return cerr
					}
					return errDiverged
				}
				continue
			}
			bad = append(bad, bl.bit(v).Not())
		}
		if len(bad) == 0 {
			return nil
		}
		res.Queries++
		sep, serr := bl.solve(sat, bl.ls.Ors(bad...))
		if serr != nil {
			return serr
		}
		if sep {
			var cerr error
			trace, cerr = concretize(append(n.Trace(), in), bl.model(sat))
			if cerr != nil {
				return cerr
			}
			return errDiverged
		}
		log.Debug().Int("depth", n.Depth).Int("queries", res.Queries).Msg("depth holds")
		return nil
	}

	er, err := ex.Run(ctx, check)
	res.States = er.Visited
	switch {
	case errors.Is(err, errDiverged):
		return e.fail(res, trace)
	case err != nil:
		return res, err
	case er.Closed:
		// combinational products close at depth zero
		res.Verdict = Pass
		res.Depth = er.Depth
		return res, nil
	}

	res.Depth = er.Depth
	res.Bound = er.Exhausted
	if induct {
		k, queries, ierr := e.induct(ctx)
		res.Queries += queries
		if ierr != nil {
			return res, ierr
		}
		if k > 0 {
			res.Verdict = Pass
			res.Strategy = Induction
			res.Depth = k
			res.Bound = nil
			return res, nil
		}
	}
	res.Verdict = Unknown
	return res, nil
}

// fail replays the trace on the original circuits, independently of the
// product, and fills in the validated counterexample.
func (e *engine) fail(res Result, trace []circuit.Inputs) (Result, error) {
	cex, err := replay(e.a, e.b, trace)
	if err != nil {
		return res, err
	}
	res.Verdict = Fail
	res.Depth = cex.Cycle()
	res.Counterexample = cex
	return res, nil
}
