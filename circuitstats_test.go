package miter_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/explore"
	"github.com/go-eda/miter/netlist"
)

func noCheck(*explore.Node, circuit.Inputs, circuit.Outputs) error { return nil }

type circuitStats struct {
	inputBits, stateBits int
	mode                 explore.Mode
	visited, depth       int
	closed               bool
}

// reference numbers for the testdata fixtures, explored alone with the
// depth bound pinned to 16
var mStats = map[string]circuitStats{
	"counter_gate.mnl":         {1, 2, explore.Enumerated, 4, 4, true},
	"counter_gold.mnl":         {1, 2, explore.Enumerated, 4, 4, true},
	"counter_gold_drift.mnl":   {1, 2, explore.Enumerated, 4, 4, true},
	"counter_gate_wide_en.mnl": {2, 2, explore.Enumerated, 4, 4, true},
	"counter_rst_decl.mnl":     {2, 2, explore.Enumerated, 4, 4, true},
	"counter_rst_mux.mnl":      {2, 2, explore.Enumerated, 4, 4, true},
	"accum_gate.mnl":           {8, 8, explore.Symbolic, 17, 16, false},
	"accum_gold.mnl":           {8, 8, explore.Symbolic, 17, 16, false},
	"accum_bug.mnl":            {8, 8, explore.Symbolic, 17, 16, false},
	"passthrough.mnl":          {4, 0, explore.Enumerated, 1, 0, true},
	"passthrough_dn.mnl":       {4, 0, explore.Enumerated, 1, 0, true},
}

// TestCircuitStats pins down the shape of every fixture and what exploring
// it covers, so an accidental change to a fixture or to the walk shows up
// as a stats diff.
func TestCircuitStats(t *testing.T) {
	names := make([]string, 0, len(mStats))
	for name := range mStats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		name := name
		t.Run(name, func(t *testing.T) {
			assert := require.New(t)
			want := mStats[name]

			c, err := netlist.ParseFile(filepath.Join("testdata", name))
			assert.NoError(err)
			assert.Equal(want.inputBits, c.InputBits())
			assert.Equal(want.stateBits, c.StateBits())

			ex, err := explore.New(c, explore.WithMaxDepth(16))
			assert.NoError(err)
			assert.Equal(want.mode, ex.Mode())

			res, err := ex.Run(context.Background(), noCheck)
			assert.NoError(err)
			assert.Equal(want.visited, res.Visited)
			assert.Equal(want.depth, res.Depth)
			assert.Equal(want.closed, res.Closed)
		})
	}
}
