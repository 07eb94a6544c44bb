package equiv

import (
	"fmt"

	"github.com/go-eda/miter/explore"
)

// Strategy selects how the product circuit is checked.
type Strategy uint8

const (
	// Auto picks Explicit when the shared inputs are narrow enough to
	// enumerate, and BMC with an induction attempt otherwise.
	Auto Strategy = iota

	// Explicit enumerates every input assignment over the reachable
	// product states and compares outputs by value. Closing the state
	// space is an exhaustive proof.
	Explicit

	// BMC unrolls the product symbolically from reset and asks the solver,
	// one depth at a time, for an input sequence that separates the
	// outputs. Without a divergence it can only report Unknown.
	BMC

	// Induction is BMC plus a k-induction step query; an unsatisfiable
	// step closes the unbounded horizon.
	Induction
)

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Explicit:
		return "explicit"
	case BMC:
		return "bmc"
	case Induction:
		return "induction"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// DefaultInductionLimit bounds the k tried by the induction step.
const DefaultInductionLimit = 16

// Config carries the tunables of a check.
type Config struct {
	Strategy       Strategy
	MaxDepth       int
	MaxStates      int
	EnumLimit      int
	InductionLimit int
}

func defaultConfig() Config {
	return Config{
		Strategy:       Auto,
		MaxDepth:       explore.DefaultMaxDepth,
		MaxStates:      explore.DefaultMaxStates,
		EnumLimit:      explore.DefaultEnumerationLimit,
		InductionLimit: DefaultInductionLimit,
	}
}

// Option configures a Check call.
type Option func(*Config) error

// WithStrategy forces a strategy instead of letting Auto decide.
func WithStrategy(s Strategy) Option {
	return func(c *Config) error {
		if s > Induction {
			return fmt.Errorf("equiv: unknown strategy %d", uint8(s))
		}
		c.Strategy = s
		return nil
	}
}

// WithMaxDepth bounds how many cycles from reset are checked.
func WithMaxDepth(depth int) Option {
	return func(c *Config) error {
		if depth < 1 {
			return fmt.Errorf("equiv: max depth must be at least 1, got %d", depth)
		}
		c.MaxDepth = depth
		return nil
	}
}

// WithMaxStates bounds the visited product-state set of the explicit
// strategy.
func WithMaxStates(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("equiv: max states must be at least 1, got %d", n)
		}
		c.MaxStates = n
		return nil
	}
}

// WithEnumerationLimit sets the total input width, in bits, up to which
// Auto enumerates assignments instead of going symbolic.
func WithEnumerationLimit(bits int) Option {
	return func(c *Config) error {
		if bits < 0 {
			return fmt.Errorf("equiv: enumeration limit must not be negative, got %d", bits)
		}
		c.EnumLimit = bits
		return nil
	}
}

// WithInductionLimit bounds the k tried by the induction step query.
func WithInductionLimit(k int) Option {
	return func(c *Config) error {
		if k < 1 {
			return fmt.Errorf("equiv: induction limit must be at least 1, got %d", k)
		}
		c.InductionLimit = k
		return nil
	}
}
