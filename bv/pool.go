package bv

import "fmt"

// Var identifies a symbolic variable within the Pool that allocated it.
type Var uint32

// A Pool allocates symbolic variables. Each exploration or solver run owns
// its own Pool, so variable identities never leak between runs. The zero
// Pool is ready to use. A Pool is not safe for concurrent use.
type Pool struct {
	widths []int
	labels []string
}

// NewPool returns an empty Pool.
func NewPool() *Pool { return &Pool{} }

// Fresh allocates a new variable of the given width and returns the
// symbolic Value bound to it. The label is carried for diagnostics only and
// need not be unique.
func (p *Pool) Fresh(width int, label string) Value {
	if width < 1 || width > 64 {
		panic(&WidthRangeError{Width: width})
	}
	v := Var(len(p.widths))
	p.widths = append(p.widths, width)
	p.labels = append(p.labels, label)
	return Value{width: width, node: &node{op: OpVar, width: width, v: v, label: label}}
}

// Len returns the number of variables allocated so far.
func (p *Pool) Len() int { return len(p.widths) }

// Width returns the width of v.
func (p *Pool) Width(v Var) int {
	if int(v) >= len(p.widths) {
		panic(fmt.Sprintf("bv: variable $%d not allocated from this pool", v))
	}
	return p.widths[v]
}

// Label returns the diagnostic label v was allocated with.
func (p *Pool) Label(v Var) string {
	if int(v) >= len(p.labels) {
		panic(fmt.Sprintf("bv: variable $%d not allocated from this pool", v))
	}
	return p.labels[v]
}
