package circuit

import (
	"github.com/go-eda/miter/bv"
	"github.com/go-eda/miter/profile"
)

// Builder assembles a circuit description programmatically. Declarations
// and wiring may arrive in any order; nothing is validated until Compile,
// which reports the first problem found. The zero Builder is not usable;
// start with NewBuilder.
type Builder struct {
	name   string
	inputs []Port
	regs   []Register
	outs   []Output
	nexts  map[string]Expr
	order  []string // next bindings in arrival order, for deterministic errors
}

// NewBuilder returns a Builder for a circuit with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, nexts: make(map[string]Expr)}
}

// Input declares an input port and returns a reference to it.
func (b *Builder) Input(name string, width int) Expr {
	b.inputs = append(b.inputs, Port{Name: name, Width: width})
	return Ref{Name: name}
}

// RegisterOption configures a register declaration.
type RegisterOption func(*Register)

// WithInit sets the reset value of a register. The default is 0.
func WithInit(v uint64) RegisterOption {
	return func(r *Register) { r.Init = v }
}

// WithReset ties the register to a 1-bit reset input. While the signal is
// at its active level the register loads its reset value instead of its
// next-state expression; Compile synthesizes the corresponding mux.
func WithReset(signal string, polarity Polarity) RegisterOption {
	return func(r *Register) {
		r.ResetSignal = signal
		r.ResetPolarity = polarity
	}
}

// Register declares a register and returns a reference to its current
// value. Its next-state expression is supplied separately with Next.
func (b *Builder) Register(name string, width int, opts ...RegisterOption) Expr {
	r := Register{Name: name, Width: width}
	for _, opt := range opts {
		opt(&r)
	}
	b.regs = append(b.regs, r)
	return Ref{Name: name}
}

// Next binds the next-state expression of the named register. Binding the
// same register twice keeps the last expression.
func (b *Builder) Next(register string, e Expr) {
	if _, ok := b.nexts[register]; !ok {
		b.order = append(b.order, register)
	}
	b.nexts[register] = e
}

// Output declares a named output fed by e. The width is inferred when the
// circuit is compiled.
func (b *Builder) Output(name string, e Expr) {
	b.outs = append(b.outs, Output{Name: name, Expr: e})
}

// Compile validates the description and returns the immutable circuit.
func (b *Builder) Compile() (*Circuit, error) {
	regs := append([]Register(nil), b.regs...)
	bound := make(map[string]bool, len(regs))
	for i := range regs {
		if e, ok := b.nexts[regs[i].Name]; ok {
			regs[i].Next = e
			bound[regs[i].Name] = true
		}
	}
	for _, name := range b.order {
		if !bound[name] {
			return nil, &DanglingError{Circuit: b.name, Name: name, Reason: "bound by Next but never declared"}
		}
	}
	return compile(b.name, b.inputs, regs, b.outs, true)
}

// emit hands each freshly built node to the active profiling sessions.
func (b *Builder) emit(e Expr) Expr {
	profile.RecordNode()
	return e
}

// Const returns a literal expression.
func (b *Builder) Const(v uint64, width int) Expr { return b.emit(Const{Value: v, Width: width}) }

// Not returns the bitwise complement of x.
func (b *Builder) Not(x Expr) Expr { return b.emit(Unary{Op: bv.OpNot, X: x}) }

// Neg returns the two's-complement negation of x.
func (b *Builder) Neg(x Expr) Expr { return b.emit(Unary{Op: bv.OpNeg, X: x}) }

// And returns the bitwise conjunction of x and y.
func (b *Builder) And(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpAnd, X: x, Y: y}) }

// Or returns the bitwise disjunction of x and y.
func (b *Builder) Or(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpOr, X: x, Y: y}) }

// Xor returns the bitwise exclusive or of x and y.
func (b *Builder) Xor(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpXor, X: x, Y: y}) }

// Add returns x+y, wrapping modulo 2^width.
func (b *Builder) Add(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpAdd, X: x, Y: y}) }

// Sub returns x-y, wrapping modulo 2^width.
func (b *Builder) Sub(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpSub, X: x, Y: y}) }

// IsEq returns the 1-bit comparison x==y.
func (b *Builder) IsEq(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpEq, X: x, Y: y}) }

// IsNeq returns the 1-bit comparison x!=y.
func (b *Builder) IsNeq(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpNe, X: x, Y: y}) }

// IsLess returns the 1-bit unsigned comparison x<y.
func (b *Builder) IsLess(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpUlt, X: x, Y: y}) }

// IsLessOrEq returns the 1-bit unsigned comparison x<=y.
func (b *Builder) IsLessOrEq(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpUle, X: x, Y: y}) }

// IsGreater returns the 1-bit unsigned comparison x>y.
func (b *Builder) IsGreater(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpUgt, X: x, Y: y}) }

// IsGreaterOrEq returns the 1-bit unsigned comparison x>=y.
func (b *Builder) IsGreaterOrEq(x, y Expr) Expr { return b.emit(Binary{Op: bv.OpUge, X: x, Y: y}) }

// Select returns t when the 1-bit sel is 1 and e otherwise.
func (b *Builder) Select(sel, t, e Expr) Expr { return b.emit(Mux{Sel: sel, T: t, E: e}) }

// Concat concatenates hi over lo, hi occupying the most significant bits.
func (b *Builder) Concat(hi, lo Expr) Expr { return b.emit(Binary{Op: bv.OpConcat, X: hi, Y: lo}) }

// Slice extracts bits hi..lo of x.
func (b *Builder) Slice(x Expr, hi, lo int) Expr { return b.emit(Slice{X: x, Hi: hi, Lo: lo}) }

// Bit extracts the single bit i of x.
func (b *Builder) Bit(x Expr, i int) Expr { return b.emit(Slice{X: x, Hi: i, Lo: i}) }
