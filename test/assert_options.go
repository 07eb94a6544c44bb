package test

import (
	"github.com/go-eda/miter/equiv"
)

// TestingOption defines option for altering the behavior of Assert
// methods. See the descriptions of functions returning instances of this
// type for particular options.
type TestingOption func(*testingConfig) error

type testingConfig struct {
	strategies         []equiv.Strategy
	checkOpts          []equiv.Option
	checkSerialization bool
}

// default options
func (assert *Assert) options(opts ...TestingOption) testingConfig {
	opt := testingConfig{checkSerialization: true}
	for _, option := range opts {
		err := option(&opt)
		assert.NoError(err, "parsing TestingOption")
	}
	return opt
}

// proving returns the strategies a passing pair must pass under. Plain
// bounded checking is excluded: it can refute but only proves when the
// state space happens to close.
func (opt *testingConfig) proving() []equiv.Strategy {
	if len(opt.strategies) > 0 {
		return opt.strategies
	}
	return []equiv.Strategy{equiv.Explicit, equiv.Induction}
}

// refuting returns the strategies a failing pair must fail under.
func (opt *testingConfig) refuting() []equiv.Strategy {
	if len(opt.strategies) > 0 {
		return opt.strategies
	}
	return []equiv.Strategy{equiv.Explicit, equiv.BMC}
}

// WithStrategies is a testing option which restricts the strategies the
// assertions are run under. When not given, assertions run under every
// strategy applicable to the verdict.
func WithStrategies(s equiv.Strategy, strategies ...equiv.Strategy) TestingOption {
	return func(opt *testingConfig) error {
		opt.strategies = []equiv.Strategy{s}
		opt.strategies = append(opt.strategies, strategies...)
		return nil
	}
}

// WithCheckOpts is a testing option which passes the given options to
// every equivalence check the assertion runs.
func WithCheckOpts(opts ...equiv.Option) TestingOption {
	return func(opt *testingConfig) error {
		opt.checkOpts = append(opt.checkOpts, opts...)
		return nil
	}
}

// NoSerializationChecks is a testing option which disables the artifact
// round trip before checking.
func NoSerializationChecks() TestingOption {
	return func(opt *testingConfig) error {
		opt.checkSerialization = false
		return nil
	}
}
