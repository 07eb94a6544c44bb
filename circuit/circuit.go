// Package circuit models small synchronous digital circuits as data:
// inputs, registers and named outputs, with combinational logic held as
// expression trees over the bv value algebra.
//
// A circuit description is assembled through a Builder (or parsed from a
// netlist file) and then compiled. Compiling resolves names, checks every
// width once and for all and synthesizes the synchronous reset muxes, so
// that stepping a compiled circuit can no longer fail on malformed logic.
// Compiled circuits are immutable and safe for concurrent use.
package circuit

import (
	"sort"

	"github.com/go-eda/miter/bv"
)

// Port is a named signal of fixed width.
type Port struct {
	Name  string
	Width int
}

// Polarity is the active level of a reset signal.
type Polarity uint8

const (
	// ActiveHigh resets while the signal is 1.
	ActiveHigh Polarity = iota
	// ActiveLow resets while the signal is 0.
	ActiveLow
)

func (p Polarity) String() string {
	if p == ActiveLow {
		return "low"
	}
	return "high"
}

// Register is a state element. Next holds the compiled next-state
// expression; when the register declares a reset signal, the synchronous
// reset mux is already synthesized into Next, so two circuits written in
// declared-reset and explicit-mux style compile to the same step behavior.
type Register struct {
	Name          string
	Width         int
	Init          uint64
	ResetSignal   string // empty when the register declares no reset signal
	ResetPolarity Polarity
	Next          Expr
}

// Output is a named observable signal.
type Output struct {
	Name  string
	Width int
	Expr  Expr
}

// Circuit is a compiled synchronous circuit. Inputs, registers and outputs
// are held sorted by name; all valuation slices of this package align to
// those orders.
type Circuit struct {
	name   string
	inputs []Port
	regs   []Register
	outs   []Output

	inIdx  map[string]int
	regIdx map[string]int
}

// Name returns the circuit name.
func (c *Circuit) Name() string { return c.name }

// Inputs returns the input ports sorted by name. The slice is shared and
// must not be modified.
func (c *Circuit) Inputs() []Port { return c.inputs }

// Registers returns the registers sorted by name. The slice is shared and
// must not be modified.
func (c *Circuit) Registers() []Register { return c.regs }

// Outputs returns the outputs sorted by name. The slice is shared and must
// not be modified.
func (c *Circuit) Outputs() []Output { return c.outs }

// OutputPorts returns the output names and widths sorted by name.
func (c *Circuit) OutputPorts() []Port {
	ports := make([]Port, len(c.outs))
	for i, o := range c.outs {
		ports[i] = Port{Name: o.Name, Width: o.Width}
	}
	return ports
}

// InputBits returns the total width of all inputs.
func (c *Circuit) InputBits() int {
	n := 0
	for _, p := range c.inputs {
		n += p.Width
	}
	return n
}

// StateBits returns the total width of all registers.
func (c *Circuit) StateBits() int {
	n := 0
	for _, r := range c.regs {
		n += r.Width
	}
	return n
}

// Combinational reports whether the circuit has no registers.
func (c *Circuit) Combinational() bool { return len(c.regs) == 0 }

// Reset returns the state every register assumes under reset: its declared
// reset value. The result is independent of how often or when reset is
// applied.
func (c *Circuit) Reset() State {
	s := make(State, len(c.regs))
	for i, r := range c.regs {
		s[i] = bv.Must(r.Init, r.Width)
	}
	return s
}

// Step evaluates one clock cycle: given the current state and an input
// valuation it returns the output valuation observed during the cycle and
// the successor state latched at its end. Symbolic values flow through and
// yield symbolic results. Step never mutates its arguments.
func (c *Circuit) Step(s State, in Inputs) (out Outputs, next State, err error) {
	if len(s) != len(c.regs) {
		return nil, nil, &ValuationError{Circuit: c.name, Detail: valShape("state", len(s), len(c.regs))}
	}
	if len(in) != len(c.inputs) {
		return nil, nil, &ValuationError{Circuit: c.name, Detail: valShape("input", len(in), len(c.inputs))}
	}

	env := make(map[string]bv.Value, len(c.regs)+len(c.inputs))
	for i, r := range c.regs {
		if s[i].Width() != r.Width {
			return nil, nil, &ValuationError{Circuit: c.name, Detail: valWidth("state", r.Name, s[i].Width(), r.Width)}
		}
		env[r.Name] = s[i]
	}
	for i, p := range c.inputs {
		if in[i].Width() != p.Width {
			return nil, nil, &ValuationError{Circuit: c.name, Detail: valWidth("input", p.Name, in[i].Width(), p.Width)}
		}
		env[p.Name] = in[i]
	}

	// compiled circuits cannot width-fail here; the recover guards against
	// internal corruption and is reported, not masked
	defer func() {
		if r := recover(); r != nil {
			out, next = nil, nil
			err = &ValuationError{Circuit: c.name, Detail: "internal evaluation failure: " + panicMsg(r)}
		}
	}()

	out = make(Outputs, len(c.outs))
	for i, o := range c.outs {
		out[i] = evalExpr(o.Expr, env)
	}
	next = make(State, len(c.regs))
	for i, r := range c.regs {
		next[i] = evalExpr(r.Next, env)
	}
	return out, next, nil
}

// compile validates a description and produces the immutable Circuit.
// synthesizeResets is false only when reloading an artifact whose next-state
// trees already carry their reset muxes.
func compile(name string, inputs []Port, regs []Register, outs []Output, synthesizeResets bool) (*Circuit, error) {
	c := &Circuit{
		name:   name,
		inputs: append([]Port(nil), inputs...),
		regs:   append([]Register(nil), regs...),
		outs:   append([]Output(nil), outs...),
		inIdx:  make(map[string]int),
		regIdx: make(map[string]int),
	}
	sort.Slice(c.inputs, func(i, j int) bool { return c.inputs[i].Name < c.inputs[j].Name })
	sort.Slice(c.regs, func(i, j int) bool { return c.regs[i].Name < c.regs[j].Name })
	sort.Slice(c.outs, func(i, j int) bool { return c.outs[i].Name < c.outs[j].Name })

	// declaration checks: widths in range, names unique
	seen := make(map[string]bool)
	for i, p := range c.inputs {
		if p.Width < 1 || p.Width > 64 {
			return nil, &WidthError{Circuit: name, Context: "input " + p.Name, Err: &bv.WidthRangeError{Width: p.Width}}
		}
		if seen[p.Name] {
			return nil, &DuplicateNameError{Circuit: name, Name: p.Name}
		}
		seen[p.Name] = true
		c.inIdx[p.Name] = i
	}
	for i, r := range c.regs {
		if r.Width < 1 || r.Width > 64 {
			return nil, &WidthError{Circuit: name, Context: "register " + r.Name, Err: &bv.WidthRangeError{Width: r.Width}}
		}
		if seen[r.Name] {
			return nil, &DuplicateNameError{Circuit: name, Name: r.Name}
		}
		seen[r.Name] = true
		c.regIdx[r.Name] = i
	}
	seenOut := make(map[string]bool)
	for _, o := range c.outs {
		if seenOut[o.Name] {
			return nil, &DuplicateNameError{Circuit: name, Name: o.Name}
		}
		seenOut[o.Name] = true
	}

	// register plumbing: a next for every register, reset values in range,
	// reset signals resolving to 1-bit inputs
	for i := range c.regs {
		r := &c.regs[i]
		if r.Next == nil {
			return nil, &DanglingError{Circuit: name, Name: r.Name, Reason: "has no next-state expression"}
		}
		if _, err := bv.New(r.Init, r.Width); err != nil {
			return nil, &WidthError{Circuit: name, Context: "reset value of " + r.Name, Err: err}
		}
		if r.ResetSignal != "" {
			j, ok := c.inIdx[r.ResetSignal]
			if !ok {
				return nil, &DanglingError{Circuit: name, Name: r.Name, Reason: "reset signal " + r.ResetSignal + " is not an input"}
			}
			if c.inputs[j].Width != 1 {
				return nil, &WidthError{Circuit: name, Context: "reset of " + r.Name,
					Err: &bv.MismatchError{Op: bv.OpMux, Detail: valWidth("reset signal", r.ResetSignal, c.inputs[j].Width, 1)}}
			}
		}
	}

	// name resolution over every expression, then a symbolic dry run that
	// settles all widths
	pool := bv.NewPool()
	env := make(map[string]bv.Value, len(c.inputs)+len(c.regs))
	for _, p := range c.inputs {
		env[p.Name] = pool.Fresh(p.Width, p.Name)
	}
	for _, r := range c.regs {
		env[r.Name] = pool.Fresh(r.Width, r.Name)
	}

	check := func(context string, e Expr, want int) (int, error) {
		var unknown *UnknownRefError
		walk(e, func(sub Expr) {
			if unknown != nil {
				return
			}
			if ref, ok := sub.(Ref); ok {
				if _, bound := env[ref.Name]; !bound {
					unknown = &UnknownRefError{Circuit: name, Context: context, Name: ref.Name}
				}
			}
		})
		if unknown != nil {
			return 0, unknown
		}
		w, err := widthOf(name, context, func() bv.Value { return evalExpr(e, env) })
		if err != nil {
			return 0, err
		}
		if want != 0 && w != want {
			return 0, &WidthError{Circuit: name, Context: context,
				Err: &bv.MismatchError{Op: bv.OpEq, Detail: valWidth("expression", context, w, want)}}
		}
		return w, nil
	}

	for i := range c.regs {
		r := &c.regs[i]
		if _, err := check("next "+r.Name, r.Next, r.Width); err != nil {
			return nil, err
		}
	}
	for i := range c.outs {
		o := &c.outs[i]
		w, err := check("output "+o.Name, o.Expr, o.Width)
		if err != nil {
			return nil, err
		}
		o.Width = w
	}

	// synthesize declared resets into the next-state trees
	if synthesizeResets {
		for i := range c.regs {
			r := &c.regs[i]
			if r.ResetSignal == "" {
				continue
			}
			hold, load := r.Next, Expr(Const{Value: r.Init, Width: r.Width})
			if r.ResetPolarity == ActiveLow {
				r.Next = Mux{Sel: Ref{Name: r.ResetSignal}, T: hold, E: load}
			} else {
				r.Next = Mux{Sel: Ref{Name: r.ResetSignal}, T: load, E: hold}
			}
		}
	}
	return c, nil
}
