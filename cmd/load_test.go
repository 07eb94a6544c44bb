package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCircuitNetlist(t *testing.T) {
	assert := require.New(t)

	c, err := loadCircuit(filepath.Join("..", "testdata", "counter_gate.mnl"))
	assert.NoError(err)
	assert.Equal("counter_gate", c.Name())
	assert.Len(c.Registers(), 2)
}

func TestLoadCircuitArtifact(t *testing.T) {
	assert := require.New(t)

	c, err := loadCircuit(filepath.Join("..", "testdata", "counter_gold.mnl"))
	assert.NoError(err)

	data, err := c.ToBytes()
	assert.NoError(err)
	path := filepath.Join(t.TempDir(), "counter_gold.mtc")
	assert.NoError(os.WriteFile(path, data, 0o644))

	got, err := loadCircuit(path)
	assert.NoError(err)
	assert.Equal(c.Name(), got.Name())
	assert.Equal(c.Inputs(), got.Inputs())
	assert.Equal(c.OutputPorts(), got.OutputPorts())
}

func TestLoadCircuitMissingFile(t *testing.T) {
	assert := require.New(t)

	_, err := loadCircuit(filepath.Join(t.TempDir(), "nope.mnl"))
	assert.Error(err)
}

func TestCheckOptionsStrategy(t *testing.T) {
	assert := require.New(t)

	defer func(s string) { fStrategy = s }(fStrategy)

	for _, s := range []string{"auto", "explicit", "bmc", "induction"} {
		fStrategy = s
		_, err := checkOptions()
		assert.NoError(err, s)
	}

	fStrategy = "sim"
	_, err := checkOptions()
	assert.ErrorContains(err, "unknown strategy")
}
