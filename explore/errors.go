package explore

import "fmt"

// Bound kinds reported by BoundError.
const (
	BoundDepth  = "depth"
	BoundStates = "states"
)

// BoundError reports that a walk stopped because it exhausted a configured
// bound rather than the reachable state space.
type BoundError struct {
	Kind  string
	Limit int
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("explore: %s bound of %d exhausted", e.Kind, e.Limit)
}

// EnumerationWidthError reports a request to enumerate inputs wider than
// the enumeration limit.
type EnumerationWidthError struct {
	Bits  int
	Limit int
}

func (e *EnumerationWidthError) Error() string {
	return fmt.Sprintf("explore: %d input bits exceed the %d-bit enumeration limit", e.Bits, e.Limit)
}
