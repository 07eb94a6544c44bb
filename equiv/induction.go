package equiv

import (
	"context"
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/go-eda/miter/bv"
	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/logger"
)

// induct runs k-induction step queries on the product: assuming the
// outputs agree for k consecutive cycles from an arbitrary, possibly
// unreachable state, can they disagree on cycle k? An unsatisfiable step,
// on top of the clean bounded run that precedes it, closes the unbounded
// horizon. It returns the k that proved the step, or 0 when none did
// within the configured limit.
func (e *engine) induct(ctx context.Context) (int, int, error) {
	log := logger.Logger().With().Str("product", e.p.c.Name()).Logger()

	limit := e.cfg.InductionLimit
	if limit > e.cfg.MaxDepth {
		// the bounded run is the base case; the step may not outrun it
		limit = e.cfg.MaxDepth
	}

	pool := bv.NewPool()
	bl := newBlaster()
	sat := gini.New()
	queries := 0

	regs := e.p.c.Registers()
	st := make(circuit.State, len(regs))
	for i, r := range regs {
		st[i] = pool.Fresh(r.Width, r.Name+"#0")
	}

	// Unroll frame by frame, growing the agreement chain as we go. The
	// solver keeps its learned clauses across the k queries.
	var frames []z.Lit
	for j := 0; j <= limit; j++ {
		if err := ctx.Err(); err != nil {
			return 0, queries, err
		}
		in := make(circuit.Inputs, len(e.p.c.Inputs()))
		for i, p := range e.p.c.Inputs() {
			in[i] = pool.Fresh(p.Width, fmt.Sprintf("%s#%d", p.Name, j))
		}
		out, next, err := e.p.c.Step(st, in)
		if err != nil {
			return 0, queries, newInconsistency("stepping induction frame %d: %v", j, err)
		}
		agree := bl.agreement(out, e.p.eq)
		if agree == bl.ls.F {
			// would make every later step query vacuously unsatisfiable,
			// yet the clean bounded run already covered this frame
			return 0, queries, newInconsistency("induction frame %d disagrees constantly after a clean bounded run", j)
		}
		frames = append(frames, agree)
		st = next

		k := j
		if k == 0 {
			// at least one assumed frame
			continue
		}
		step := make([]z.Lit, k, k+1)
		copy(step, frames[:k])
		step = append(step, frames[k].Not())
		queries++
		sep, serr := bl.solve(sat, step...)
		if serr != nil {
			return 0, queries, serr
		}
		if !sep {
			log.Debug().Int("k", k).Int("queries", queries).Msg("induction step closed")
			return k, queries, nil
		}
	}
	return 0, queries, nil
}
