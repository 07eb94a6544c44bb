package bv

import "fmt"

// WidthRangeError reports a requested width outside the supported 1..64
// range.
type WidthRangeError struct {
	Width int
}

func (e *WidthRangeError) Error() string {
	return fmt.Sprintf("bv: width %d out of range 1..64", e.Width)
}

// OverflowError reports a literal that does not fit in its declared width.
// Construction rejects oversized literals instead of silently truncating;
// in-range arithmetic wraps modulo 2^width and never produces this error.
type OverflowError struct {
	Value uint64
	Width int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("bv: value %d does not fit in %d bits", e.Value, e.Width)
}

// MismatchError reports misuse of the value algebra, such as operands of
// unequal widths or a multi-bit mux selector. Operations panic with a
// *MismatchError since mixed widths are a bug in the caller; boundaries that
// assemble expressions from external input recover it into an ordinary
// error.
type MismatchError struct {
	Op     Op
	Detail string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("bv: %s: %s", e.Op, e.Detail)
}
