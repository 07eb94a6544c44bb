package equiv

import (
	"fmt"
	"strings"

	"github.com/go-eda/miter/debug"
)

// InterfaceDiff is one disagreement between the interfaces of the two
// circuits under check.
type InterfaceDiff struct {
	Kind string // "input" or "output"
	Name string
	// Widths on each side; 0 means the port is missing there.
	WidthA, WidthB int
}

func (d InterfaceDiff) String() string {
	switch {
	case d.WidthA == 0:
		return fmt.Sprintf("%s %s missing in the first circuit", d.Kind, d.Name)
	case d.WidthB == 0:
		return fmt.Sprintf("%s %s missing in the second circuit", d.Kind, d.Name)
	default:
		return fmt.Sprintf("%s %s is %d bits wide vs %d", d.Kind, d.Name, d.WidthA, d.WidthB)
	}
}

// InterfaceMismatchError reports that the two circuits do not expose the
// same input and output ports. It is returned before any state is
// explored.
type InterfaceMismatchError struct {
	A, B  string // circuit names, in argument order
	Diffs []InterfaceDiff
}

func (e *InterfaceMismatchError) Error() string {
	parts := make([]string, len(e.Diffs))
	for i, d := range e.Diffs {
		parts[i] = d.String()
	}
	return fmt.Sprintf("equiv: %s and %s have different interfaces: %s",
		e.A, e.B, strings.Join(parts, "; "))
}

// InternalInconsistencyError reports a checker defect: an invariant that
// holds for every validated circuit was broken anyway. It is never a
// verdict about the circuits under check.
type InternalInconsistencyError struct {
	Detail string
	Stack  string
}

func newInconsistency(format string, args ...interface{}) *InternalInconsistencyError {
	return &InternalInconsistencyError{
		Detail: fmt.Sprintf(format, args...),
		Stack:  debug.Stack(),
	}
}

func (e *InternalInconsistencyError) Error() string {
	return "equiv: internal inconsistency: " + e.Detail
}
