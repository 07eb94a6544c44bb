package test

import (
	"testing"

	"github.com/go-eda/miter/equiv"
	"github.com/go-eda/miter/internal/testcircuits"
)

func TestEquivalentCounterPair(t *testing.T) {
	assert := NewAssert(t)
	assert.Equivalent(testcircuits.CounterGate(), testcircuits.CounterGold())
}

func TestNotEquivalentCounterDrift(t *testing.T) {
	assert := NewAssert(t)
	assert.NotEquivalent(testcircuits.CounterGate(), testcircuits.CounterDrift())
}

func TestEquivalentAccumulators(t *testing.T) {
	// 8-bit input, so the explicit strategy skips itself and induction
	// carries the proof
	assert := NewAssert(t)
	assert.Equivalent(testcircuits.AccumGate(), testcircuits.AccumGold())
}

func TestNotEquivalentAccumulatorBug(t *testing.T) {
	assert := NewAssert(t)
	assert.NotEquivalent(testcircuits.AccumBug(), testcircuits.AccumGold(), NoSerializationChecks())
}

func TestEquivalentRestrictedStrategy(t *testing.T) {
	assert := NewAssert(t)
	assert.Equivalent(testcircuits.CounterGate(), testcircuits.CounterGold(),
		WithStrategies(equiv.Induction),
		WithCheckOpts(equiv.WithMaxDepth(8)))
}

func TestEquivalentCombinational(t *testing.T) {
	assert := NewAssert(t)
	assert.Equivalent(testcircuits.Passthrough(4), testcircuits.PassthroughDN(4))
}
