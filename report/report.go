// Package report renders equivalence results, as text for people and as
// JSON for tooling. Rendering is pure: nothing here runs a check or
// touches anything but the writer it is handed.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/go-eda/miter/equiv"
)

var (
	passStyle    = color.New(color.FgGreen, color.Bold)
	failStyle    = color.New(color.FgRed, color.Bold)
	unknownStyle = color.New(color.FgHiYellow, color.Bold)
	nameStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue)
)

// Render writes the human-readable form of r to w.
func Render(w io.Writer, r equiv.Result) error {
	_, err := io.WriteString(w, Text(r))
	return err
}

// Text returns the human-readable form of r. Color is applied through
// fatih/color and follows color.NoColor.
func Text(r equiv.Result) string {
	var b strings.Builder
	b.WriteString(header(r))
	switch r.Verdict {
	case equiv.Fail:
		if cex := r.Counterexample; cex != nil {
			b.WriteString("\n")
			b.WriteString(fmt.Sprintf("counterexample (%s):\n", cycles(len(cex.Inputs))))
			b.WriteString(inputTable(cex))
			b.WriteString("\n")
			b.WriteString(divergences(r))
		}
	case equiv.Unknown:
		if r.Bound != nil {
			b.WriteString(fmt.Sprintf("  %s bound of %d exhausted without a verdict\n",
				r.Bound.Kind, r.Bound.Limit))
		}
	}
	return b.String()
}

func header(r equiv.Result) string {
	var verdict string
	var relation string
	switch r.Verdict {
	case equiv.Pass:
		verdict = passStyle.Sprint("PASS")
		relation = "=="
	case equiv.Fail:
		verdict = failStyle.Sprint("FAIL")
		relation = "!="
	default:
		verdict = unknownStyle.Sprint("UNKNOWN")
		relation = "vs"
	}
	return fmt.Sprintf("%s: %s %s %s %s\n",
		verdict, nameStyle.Sprint(r.A), relation, nameStyle.Sprint(r.B), stats(r))
}

func stats(r equiv.Result) string {
	parts := []string{fmt.Sprintf("depth %d", r.Depth)}
	if r.States > 0 {
		parts = append(parts, fmt.Sprintf("states %d", r.States))
	}
	if r.Queries > 0 {
		parts = append(parts, fmt.Sprintf("queries %d", r.Queries))
	}
	return fmt.Sprintf("(%s: %s)", r.Strategy, strings.Join(parts, ", "))
}

// inputTable lays out one row per cycle with one column per input port,
// values right-aligned under the port names.
func inputTable(cex *equiv.Counterexample) string {
	cycleW := len("cycle")
	widths := make([]int, len(cex.Ports))
	for i, p := range cex.Ports {
		widths[i] = len(p.Name)
	}
	rows := make([][]string, len(cex.Inputs))
	for c, in := range cex.Inputs {
		row := make([]string, len(in))
		for i, v := range in {
			row[i] = v.String()
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
		rows[c] = row
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %*s", cycleW, "cycle"))
	for i, p := range cex.Ports {
		b.WriteString(lineStyle.Sprint(" | "))
		b.WriteString(fmt.Sprintf("%*s", widths[i], p.Name))
	}
	b.WriteString("\n")

	b.WriteString("  " + strings.Repeat("-", cycleW))
	for _, w := range widths {
		b.WriteString(lineStyle.Sprint("-+-"))
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteString("\n")

	for c, row := range rows {
		b.WriteString(fmt.Sprintf("  %*d", cycleW, c))
		for i, cell := range row {
			b.WriteString(lineStyle.Sprint(" | "))
			b.WriteString(fmt.Sprintf("%*s", widths[i], cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func divergences(r equiv.Result) string {
	cex := r.Counterexample
	var b strings.Builder
	b.WriteString(fmt.Sprintf("diverging outputs at cycle %d:\n", cex.Cycle()))
	for _, d := range cex.Divergences {
		b.WriteString(fmt.Sprintf("  %s: %s = %s, %s = %s\n",
			d.Output, nameStyle.Sprint(r.A), d.A, nameStyle.Sprint(r.B), d.B))
	}
	return b.String()
}

func cycles(n int) string {
	if n == 1 {
		return "1 cycle"
	}
	return fmt.Sprintf("%d cycles", n)
}

// payload is the JSON shape of a result. Counterexample values are plain
// numbers; the port list carries the widths.
type payload struct {
	A              string      `json:"a"`
	B              string      `json:"b"`
	Verdict        string      `json:"verdict"`
	Strategy       string      `json:"strategy"`
	Depth          int         `json:"depth"`
	States         int         `json:"states"`
	Queries        int         `json:"queries"`
	Bound          *bound      `json:"bound,omitempty"`
	Counterexample *cexPayload `json:"counterexample,omitempty"`
}

type bound struct {
	Kind  string `json:"kind"`
	Limit int    `json:"limit"`
}

type cexPayload struct {
	Ports     []port      `json:"ports"`
	Cycles    [][]uint64  `json:"cycles"`
	Diverging []diverging `json:"diverging"`
}

type port struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
}

type diverging struct {
	Output string `json:"output"`
	A      uint64 `json:"a"`
	B      uint64 `json:"b"`
}

// RenderJSON writes the JSON form of r to w, terminated by a newline.
func RenderJSON(w io.Writer, r equiv.Result) error {
	p := payload{
		A:        r.A,
		B:        r.B,
		Verdict:  r.Verdict.String(),
		Strategy: r.Strategy.String(),
		Depth:    r.Depth,
		States:   r.States,
		Queries:  r.Queries,
	}
	if r.Bound != nil {
		p.Bound = &bound{Kind: r.Bound.Kind, Limit: r.Bound.Limit}
	}
	if cex := r.Counterexample; cex != nil {
		cp := &cexPayload{Ports: make([]port, len(cex.Ports))}
		for i, pt := range cex.Ports {
			cp.Ports[i] = port{Name: pt.Name, Width: pt.Width}
		}
		cp.Cycles = make([][]uint64, len(cex.Inputs))
		for c, in := range cex.Inputs {
			row := make([]uint64, len(in))
			for i, v := range in {
				// replay hands out concrete values only
				row[i], _ = v.Concrete()
			}
			cp.Cycles[c] = row
		}
		for _, d := range cex.Divergences {
			a, _ := d.A.Concrete()
			b, _ := d.B.Concrete()
			cp.Diverging = append(cp.Diverging, diverging{Output: d.Output, A: a, B: b})
		}
		p.Counterexample = cp
	}
	return json.NewEncoder(w).Encode(p)
}
