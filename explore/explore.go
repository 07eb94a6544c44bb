// Package explore walks the reachable state space of a compiled circuit.
//
// Exploration is a breadth-first traversal from the reset state. At every
// visited state the circuit is stepped once per input assignment; a caller
// supplied check sees each (state, input, output) triple before the
// successor state joins the frontier, and every visited state knows the
// input sequence that reached it.
//
// Inputs are driven in one of two ways. Enumerated mode steps each state
// under every concrete input combination, which is only permitted while the
// total input width is small. Symbolic mode drives one assignment of fresh
// symbolic variables per cycle, so states and outputs become deferred
// expressions for a solver to decide; the frontier then carries a single
// node per depth. Concrete states deduplicate against the visited set,
// symbolic states never do.
package explore

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/go-eda/miter/bv"
	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/logger"
)

// Node is a visited state together with how the walk got there.
type Node struct {
	State circuit.State
	Depth int
	// Via holds the input assignment whose step produced this state; it is
	// nil on the reset node. Pred is the state that assignment was applied
	// to.
	Via  circuit.Inputs
	Pred *Node
}

// Trace returns the input assignments leading from reset to this node, one
// per cycle. The reset node yields an empty trace.
func (n *Node) Trace() []circuit.Inputs {
	if n.Pred == nil {
		return nil
	}
	return append(n.Pred.Trace(), n.Via)
}

// Check inspects one evaluation of the circuit: the outputs observed at
// n.State under the assignment in. Returning a non-nil error stops the
// exploration immediately and surfaces the error from Run unchanged.
type Check func(n *Node, in circuit.Inputs, out circuit.Outputs) error

// Result summarizes a finished or stopped exploration.
type Result struct {
	// Visited counts the states that were checked.
	Visited int
	// Depth is the deepest cycle the walk reached. When the walk closed,
	// every behavior of every length has been covered by depth Depth; when
	// a bound stopped it, cycles 0 through Depth were covered.
	Depth int
	// Closed reports that the frontier emptied: the reachable state space
	// under the chosen input mode was exhausted.
	Closed bool
	// Exhausted names the bound that stopped an unclosed walk.
	Exhausted *BoundError
}

// Explorer walks one circuit. It is cheap to construct and single-use per
// Run; concurrent Runs need separate Explorers.
type Explorer struct {
	c    *circuit.Circuit
	cfg  Config
	mode Mode
}

// New prepares an exploration of c. The mode defaults to Auto, which
// enumerates when the circuit's total input width is within the enumeration
// limit and goes symbolic otherwise.
func New(c *circuit.Circuit, opts ...Option) (*Explorer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	mode := cfg.Mode
	if mode == Auto {
		if c.InputBits() <= cfg.EnumLimit {
			mode = Enumerated
		} else {
			mode = Symbolic
		}
	}
	if mode == Enumerated && c.InputBits() > cfg.EnumLimit {
		return nil, &EnumerationWidthError{Bits: c.InputBits(), Limit: cfg.EnumLimit}
	}
	return &Explorer{c: c, cfg: cfg, mode: mode}, nil
}

// Mode returns the resolved input mode.
func (ex *Explorer) Mode() Mode { return ex.mode }

type stepOut struct {
	in   circuit.Inputs
	out  circuit.Outputs
	next circuit.State
}

// Run performs the walk. It returns early with the check's error if the
// check rejects an evaluation; bounds are not errors and are reported in
// the Result.
func (ex *Explorer) Run(ctx context.Context, check Check) (Result, error) {
	log := logger.Logger().With().Str("circuit", ex.c.Name()).Logger()

	var res Result
	pool := bv.NewPool()

	var enumerated []circuit.Inputs
	if ex.mode == Enumerated {
		enumerated = enumerate(ex.c.Inputs())
	}

	root := &Node{State: ex.c.Reset()}
	level := []*Node{root}
	visited := newStore(ex.c.StateBits())
	visited.add(root.State)

	for depth := 0; len(level) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		log.Debug().Int("depth", depth).Int("frontier", len(level)).Int("visited", res.Visited).Msg("expanding level")

		// assignments for this level; symbolic mode mints fresh variables
		// for the cycle
		perNode := enumerated
		if ex.mode == Symbolic {
			perNode = []circuit.Inputs{symbolicAssignment(pool, ex.c.Inputs(), depth)}
		}

		// step the whole level in parallel, then check serially so traces
		// stay deterministic
		steps := make([][]stepOut, len(level))
		var g errgroup.Group
		g.SetLimit(runtime.NumCPU())
		for i := range level {
			i := i
			g.Go(func() error {
				outs := make([]stepOut, len(perNode))
				for j, in := range perNode {
					out, next, err := ex.c.Step(level[i].State, in)
					if err != nil {
						return fmt.Errorf("stepping depth %d: %w", depth, err)
					}
					outs[j] = stepOut{in: in, out: out, next: next}
				}
				steps[i] = outs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return res, err
		}

		var nextLevel []*Node
		for i, n := range level {
			res.Visited++
			for _, st := range steps[i] {
				if err := check(n, st.in, st.out); err != nil {
					return res, err
				}
				if ex.c.Combinational() {
					// a circuit with no registers has a single state and
					// nothing to evolve
					continue
				}
				if n.Depth >= ex.cfg.MaxDepth {
					res.Exhausted = &BoundError{Kind: BoundDepth, Limit: ex.cfg.MaxDepth}
					continue
				}
				if depth+1 > res.Depth {
					res.Depth = depth + 1
				}
				if !visited.add(st.next) {
					continue
				}
				if visited.len() > ex.cfg.MaxStates {
					res.Exhausted = &BoundError{Kind: BoundStates, Limit: ex.cfg.MaxStates}
					continue
				}
				nextLevel = append(nextLevel, &Node{
					State: st.next,
					Depth: depth + 1,
					Via:   st.in,
					Pred:  n,
				})
			}
		}
		level = nextLevel
	}

	res.Closed = res.Exhausted == nil
	log.Debug().Int("visited", res.Visited).Int("depth", res.Depth).Bool("closed", res.Closed).Msg("exploration finished")
	return res, nil
}

// enumerate lists every concrete assignment of the inputs, low counts
// first. Packing follows port order, each input taking its width of bits
// from the least significant end.
func enumerate(inputs []circuit.Port) []circuit.Inputs {
	total := 0
	for _, p := range inputs {
		total += p.Width
	}
	all := make([]circuit.Inputs, 0, 1<<uint(total))
	for m := uint64(0); m < uint64(1)<<uint(total); m++ {
		in := make(circuit.Inputs, len(inputs))
		shift := 0
		for i, p := range inputs {
			in[i] = bv.Must(m>>uint(shift)&(1<<uint(p.Width)-1), p.Width)
			shift += p.Width
		}
		all = append(all, in)
	}
	return all
}

// symbolicAssignment mints one fresh variable per input, labeled with the
// cycle it drives.
func symbolicAssignment(pool *bv.Pool, inputs []circuit.Port, depth int) circuit.Inputs {
	in := make(circuit.Inputs, len(inputs))
	for i, p := range inputs {
		in[i] = pool.Fresh(p.Width, fmt.Sprintf("%s@%d", p.Name, depth))
	}
	return in
}
