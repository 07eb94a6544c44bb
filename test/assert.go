// Package test provides helpers to assert sequential equivalence in unit
// tests. Assertions run under every applicable checking strategy and
// cross-check that the strategies agree, so a bug in one strategy shows up
// as a disagreement rather than a silently weaker test.
package test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/equiv"
	"github.com/go-eda/miter/explore"
	"github.com/go-eda/miter/report"
)

// Assert is a helper to test pairs of circuits.
type Assert struct {
	t *testing.T
	*require.Assertions
}

// NewAssert returns an Assert helper embedding a testify/require object
// for convenience.
func NewAssert(t *testing.T) *Assert {
	return &Assert{t: t, Assertions: require.New(t)}
}

// Run runs the test function fn as a subtest. The subtest is parametrized
// by the description strings descs.
func (a *Assert) Run(fn func(assert *Assert), descs ...string) {
	desc := strings.Join(descs, "/")
	a.t.Run(desc, func(t *testing.T) {
		assert := &Assert{t, require.New(t)}
		fn(assert)
	})
}

// Log logs using the test instance logger.
func (assert *Assert) Log(v ...interface{}) {
	assert.t.Log(v...)
}

// Equivalent fails the test unless a and b are proven equivalent under
// every proving strategy: explicit enumeration where the inputs are narrow
// enough to enumerate, and induction.
//
// Unless disabled, both circuits are first round-tripped through their
// binary artifact form and the checks run on the decoded copies.
func (assert *Assert) Equivalent(a, b *circuit.Circuit, opts ...TestingOption) {
	opt := assert.options(opts...)
	if opt.checkSerialization {
		a, b = assert.roundTrip(a), assert.roundTrip(b)
	}
	for _, s := range opt.proving() {
		s := s
		assert.Run(func(assert *Assert) {
			r := assert.check(a, b, s, &opt)
			assert.pass(r)
		}, s.String())
	}
}

// NotEquivalent fails the test unless every refuting strategy finds a
// counterexample, and all strategies agree on the divergence cycle: the
// minimal separating sequence has one length, whichever strategy finds it.
func (assert *Assert) NotEquivalent(a, b *circuit.Circuit, opts ...TestingOption) {
	opt := assert.options(opts...)
	if opt.checkSerialization {
		a, b = assert.roundTrip(a), assert.roundTrip(b)
	}

	// subtests run synchronously, the map needs no lock
	depths := make(map[equiv.Strategy]int)
	for _, s := range opt.refuting() {
		s := s
		assert.Run(func(assert *Assert) {
			r := assert.check(a, b, s, &opt)
			assert.fail(r)
			depths[s] = r.Depth
		}, s.String())
	}

	var ref equiv.Strategy
	refDepth, seen := 0, false
	for s, d := range depths {
		if !seen {
			ref, refDepth, seen = s, d, true
			continue
		}
		assert.Equalf(refDepth, d, "%s and %s disagree on the divergence cycle", ref, s)
	}
}

// check runs one strategy, skipping the subtest when the strategy cannot
// apply to these circuits.
func (assert *Assert) check(a, b *circuit.Circuit, s equiv.Strategy, opt *testingConfig) equiv.Result {
	copts := make([]equiv.Option, 0, len(opt.checkOpts)+1)
	copts = append(copts, opt.checkOpts...)
	copts = append(copts, equiv.WithStrategy(s))

	r, err := equiv.Check(context.Background(), a, b, copts...)
	var wide *explore.EnumerationWidthError
	if errors.As(err, &wide) {
		assert.t.Skip(err)
	}
	assert.NoError(err)
	return r
}

func (assert *Assert) pass(r equiv.Result) {
	if r.Verdict != equiv.Pass {
		assert.FailNow("expected equivalence", report.Text(r))
	}
	assert.Nil(r.Counterexample)
}

func (assert *Assert) fail(r equiv.Result) {
	if r.Verdict != equiv.Fail {
		assert.FailNow("expected a counterexample", report.Text(r))
	}
	assert.NotNil(r.Counterexample)
	assert.NotEmpty(r.Counterexample.Inputs)
}

// roundTrip serializes c, decodes it back and checks the artifact is
// stable, returning the decoded circuit so the equivalence checks run on
// what a reader of the artifact would see.
func (assert *Assert) roundTrip(c *circuit.Circuit) *circuit.Circuit {
	data, err := c.ToBytes()
	assert.NoError(err)

	var got circuit.Circuit
	n, err := got.FromBytes(data)
	assert.NoError(err)
	assert.Equal(len(data), n, "artifact length does not match bytes read")

	again, err := got.ToBytes()
	assert.NoError(err)
	assert.True(bytes.Equal(data, again), "artifact round trip is not stable")
	return &got
}
