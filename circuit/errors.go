package circuit

import (
	"fmt"

	"github.com/go-eda/miter/bv"
)

// UnknownRefError reports an expression referencing a name that is neither
// an input nor a register of the circuit.
type UnknownRefError struct {
	Circuit string
	Context string // "next q", "output count"
	Name    string
}

func (e *UnknownRefError) Error() string {
	if e.Circuit == "" && e.Context == "" {
		return fmt.Sprintf("circuit: reference to unknown signal %q", e.Name)
	}
	return fmt.Sprintf("circuit %s: %s: reference to unknown signal %q", e.Circuit, e.Context, e.Name)
}

// DuplicateNameError reports two declarations claiming the same name.
// Inputs and registers share one namespace; outputs have their own.
type DuplicateNameError struct {
	Circuit string
	Name    string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("circuit %s: duplicate declaration of %q", e.Circuit, e.Name)
}

// WidthError reports a width violation found while compiling: an operator
// over mismatched operand widths, an oversized literal or reset value, or a
// next-state expression whose width differs from its register.
type WidthError struct {
	Circuit string
	Context string
	Err     error
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("circuit %s: %s: %v", e.Circuit, e.Context, e.Err)
}

func (e *WidthError) Unwrap() error { return e.Err }

// DanglingError reports a register with no next-state expression or a next
// bound to a name that is not a register.
type DanglingError struct {
	Circuit string
	Name    string
	Reason  string
}

func (e *DanglingError) Error() string {
	return fmt.Sprintf("circuit %s: register %q %s", e.Circuit, e.Name, e.Reason)
}

// ValuationError reports a state or input valuation whose shape does not
// match the circuit it is applied to.
type ValuationError struct {
	Circuit string
	Detail  string
}

func (e *ValuationError) Error() string {
	return fmt.Sprintf("circuit %s: %s", e.Circuit, e.Detail)
}

func errUnknownExpr(e Expr) error {
	return fmt.Errorf("circuit: unknown expression node %T", e)
}

func valShape(kind string, got, want int) string {
	return fmt.Sprintf("%s valuation has %d entries, want %d", kind, got, want)
}

func valWidth(kind, name string, got, want int) string {
	return fmt.Sprintf("%s %s has width %d, want %d", kind, name, got, want)
}

func panicMsg(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}

// widthOf recovers bv usage panics raised while resolving an expression and
// rephrases them as a *WidthError.
func widthOf(circuit, context string, f func() bv.Value) (w int, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch p := r.(type) {
		case *bv.MismatchError, *bv.WidthRangeError, *bv.OverflowError:
			err = &WidthError{Circuit: circuit, Context: context, Err: p.(error)}
		case *UnknownRefError:
			err = &UnknownRefError{Circuit: circuit, Context: context, Name: p.Name}
		default:
			panic(r)
		}
	}()
	return f().Width(), nil
}
