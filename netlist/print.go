package netlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-eda/miter/circuit"
)

// Fprint writes c to w in canonical netlist form. The output parses back
// into a circuit that steps identically to c.
func Fprint(w io.Writer, c *circuit.Circuit) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s\n", c.Name())
	for _, p := range c.Inputs() {
		fmt.Fprintf(&sb, "input %s %d\n", p.Name, p.Width)
	}
	for _, r := range c.Registers() {
		fmt.Fprintf(&sb, "reg %s %d", r.Name, r.Width)
		if r.Init != 0 {
			fmt.Fprintf(&sb, " init=%d'd%d", r.Width, r.Init)
		}
		if r.ResetSignal != "" {
			fmt.Fprintf(&sb, " reset=%s %s", r.ResetSignal, r.ResetPolarity)
		}
		sb.WriteByte('\n')
	}
	for _, r := range c.Registers() {
		fmt.Fprintf(&sb, "next %s = %s\n", r.Name, exprString(sourceNext(r)))
	}
	for _, o := range c.Outputs() {
		fmt.Fprintf(&sb, "output %s = %s\n", o.Name, exprString(o.Expr))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Sprint renders c in canonical netlist form.
func Sprint(c *circuit.Circuit) string {
	var sb strings.Builder
	Fprint(&sb, c)
	return sb.String()
}

// sourceNext undoes the reset mux the compiler synthesized around the
// next-state tree of a declared-reset register, so that reprinting and
// reparsing does not stack a second mux.
func sourceNext(r circuit.Register) circuit.Expr {
	if r.ResetSignal == "" {
		return r.Next
	}
	m, ok := r.Next.(circuit.Mux)
	if !ok {
		return r.Next
	}
	if r.ResetPolarity == circuit.ActiveLow {
		return m.T
	}
	return m.E
}

func exprString(e circuit.Expr) string {
	switch n := e.(type) {
	case circuit.Const:
		return fmt.Sprintf("%d'd%d", n.Width, n.Value)
	case circuit.Ref:
		return n.Name
	case circuit.Unary:
		return fmt.Sprintf("%s(%s)", n.Op, exprString(n.X))
	case circuit.Binary:
		return fmt.Sprintf("%s(%s, %s)", n.Op, exprString(n.X), exprString(n.Y))
	case circuit.Mux:
		return fmt.Sprintf("mux(%s, %s, %s)", exprString(n.Sel), exprString(n.T), exprString(n.E))
	case circuit.Slice:
		if n.Hi == n.Lo {
			return fmt.Sprintf("bit(%s, %d)", exprString(n.X), n.Hi)
		}
		return fmt.Sprintf("bits(%s, %d, %d)", exprString(n.X), n.Hi, n.Lo)
	default:
		return fmt.Sprintf("?%T", e)
	}
}
