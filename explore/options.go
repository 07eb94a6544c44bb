package explore

import "fmt"

// Mode selects how inputs are driven during exploration.
type Mode uint8

const (
	// Auto enumerates when the total input width allows it and goes
	// symbolic otherwise.
	Auto Mode = iota
	// Enumerated steps every state under every concrete input combination.
	Enumerated
	// Symbolic drives fresh symbolic variables each cycle.
	Symbolic
)

func (m Mode) String() string {
	switch m {
	case Enumerated:
		return "enumerated"
	case Symbolic:
		return "symbolic"
	default:
		return "auto"
	}
}

// DefaultEnumerationLimit is the widest combined input, in bits, that Auto
// and Enumerated will expand into concrete assignments. 2^4 assignments per
// state keeps enumerated walks small.
const DefaultEnumerationLimit = 4

// DefaultMaxDepth bounds how many cycles an unclosed walk runs.
const DefaultMaxDepth = 256

// DefaultMaxStates bounds the visited set.
const DefaultMaxStates = 1 << 20

// Config collects the exploration knobs. Zero values are replaced by the
// defaults above.
type Config struct {
	Mode      Mode
	MaxDepth  int
	MaxStates int
	EnumLimit int
}

func defaultConfig() Config {
	return Config{
		Mode:      Auto,
		MaxDepth:  DefaultMaxDepth,
		MaxStates: DefaultMaxStates,
		EnumLimit: DefaultEnumerationLimit,
	}
}

// Option configures an Explorer.
type Option func(*Config) error

// WithMode fixes the input mode instead of resolving it from the circuit.
func WithMode(m Mode) Option {
	return func(cfg *Config) error {
		if m > Symbolic {
			return fmt.Errorf("explore: unknown mode %d", m)
		}
		cfg.Mode = m
		return nil
	}
}

// WithMaxDepth bounds the walk to the given number of cycles from reset.
func WithMaxDepth(depth int) Option {
	return func(cfg *Config) error {
		if depth < 1 {
			return fmt.Errorf("explore: max depth must be positive, got %d", depth)
		}
		cfg.MaxDepth = depth
		return nil
	}
}

// WithMaxStates bounds the visited set.
func WithMaxStates(n int) Option {
	return func(cfg *Config) error {
		if n < 1 {
			return fmt.Errorf("explore: max states must be positive, got %d", n)
		}
		cfg.MaxStates = n
		return nil
	}
}

// WithEnumerationLimit overrides the input width admitted to enumeration.
func WithEnumerationLimit(bits int) Option {
	return func(cfg *Config) error {
		if bits < 0 || bits > 24 {
			return fmt.Errorf("explore: enumeration limit %d out of range 0..24", bits)
		}
		cfg.EnumLimit = bits
		return nil
	}
}
