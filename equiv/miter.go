package equiv

import (
	"fmt"

	"github.com/go-eda/miter/circuit"
)

// Side prefixes keep the two register files apart inside the product.
// Netlist identifiers cannot contain a dot, so prefixed register names
// cannot collide with the shared inputs.
const (
	prefixA = "a."
	prefixB = "b."
)

// product is the miter: both circuits side by side under the shared
// inputs, with one 1-bit agreement output per shared output and the two
// observed values passed through for reporting. The construction is the
// same for both sides; argument order decides labels only.
type product struct {
	c    *circuit.Circuit
	outs []circuit.Port // shared output ports, sorted by name
	eq   []int          // index of "eq.<name>" in c.Outputs()
	a    []int          // index of "a.<name>"
	b    []int          // index of "b.<name>"
}

// compareInterfaces merges the sorted port lists of both circuits and
// collects every disagreement.
func compareInterfaces(a, b *circuit.Circuit) *InterfaceMismatchError {
	diffs := diffPorts("input", a.Inputs(), b.Inputs())
	diffs = append(diffs, diffPorts("output", a.OutputPorts(), b.OutputPorts())...)
	if len(diffs) == 0 {
		return nil
	}
	return &InterfaceMismatchError{A: a.Name(), B: b.Name(), Diffs: diffs}
}

func diffPorts(kind string, as, bs []circuit.Port) []InterfaceDiff {
	var diffs []InterfaceDiff
	i, j := 0, 0
	for i < len(as) || j < len(bs) {
		switch {
		case j == len(bs) || (i < len(as) && as[i].Name < bs[j].Name):
			diffs = append(diffs, InterfaceDiff{Kind: kind, Name: as[i].Name, WidthA: as[i].Width})
			i++
		case i == len(as) || bs[j].Name < as[i].Name:
			diffs = append(diffs, InterfaceDiff{Kind: kind, Name: bs[j].Name, WidthB: bs[j].Width})
			j++
		default:
			if as[i].Width != bs[j].Width {
				diffs = append(diffs, InterfaceDiff{
					Kind: kind, Name: as[i].Name,
					WidthA: as[i].Width, WidthB: bs[j].Width,
				})
			}
			i++
			j++
		}
	}
	return diffs
}

// buildProduct assembles the miter. The interfaces must already have been
// checked for equality.
func buildProduct(a, b *circuit.Circuit) (*product, error) {
	bld := circuit.NewBuilder(fmt.Sprintf("miter(%s,%s)", a.Name(), b.Name()))

	shared := make(map[string]bool, len(a.Inputs()))
	for _, p := range a.Inputs() {
		bld.Input(p.Name, p.Width)
		shared[p.Name] = true
	}
	addSide(bld, a, prefixA, shared)
	addSide(bld, b, prefixB, shared)

	outs := a.OutputPorts()
	for i, p := range outs {
		ea := circuit.Rename(a.Outputs()[i].Expr, renamer(prefixA, shared))
		eb := circuit.Rename(b.Outputs()[i].Expr, renamer(prefixB, shared))
		bld.Output("eq."+p.Name, bld.IsEq(ea, eb))
		bld.Output(prefixA+p.Name, ea)
		bld.Output(prefixB+p.Name, eb)
	}

	c, err := bld.Compile()
	if err != nil {
		return nil, fmt.Errorf("equiv: building the product of %s and %s: %w", a.Name(), b.Name(), err)
	}

	p := &product{
		c:    c,
		outs: outs,
		eq:   make([]int, len(outs)),
		a:    make([]int, len(outs)),
		b:    make([]int, len(outs)),
	}
	byName := make(map[string]int, len(c.Outputs()))
	for i, o := range c.Outputs() {
		byName[o.Name] = i
	}
	for i, o := range outs {
		p.eq[i] = byName["eq."+o.Name]
		p.a[i] = byName[prefixA+o.Name]
		p.b[i] = byName[prefixB+o.Name]
	}
	return p, nil
}

// addSide re-declares one circuit's registers under a side prefix.
// Compiled next-state expressions already carry any synthesized reset mux,
// so only the width and the reset value are kept.
func addSide(bld *circuit.Builder, c *circuit.Circuit, prefix string, shared map[string]bool) {
	f := renamer(prefix, shared)
	for _, r := range c.Registers() {
		bld.Register(prefix+r.Name, r.Width, circuit.WithInit(r.Init))
		bld.Next(prefix+r.Name, circuit.Rename(r.Next, f))
	}
}

// renamer prefixes every non-input name, leaving the shared inputs alone.
func renamer(prefix string, shared map[string]bool) func(string) string {
	return func(name string) string {
		if shared[name] {
			return name
		}
		return prefix + name
	}
}
