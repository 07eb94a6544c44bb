package cmd

import (
	"os"

	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/netlist"
)

// loadCircuit reads either a netlist source or a compiled artifact, told
// apart by the artifact header.
func loadCircuit(path string) (*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if circuit.IsArtifact(data) {
		var c circuit.Circuit
		if _, err := c.FromBytes(data); err != nil {
			return nil, err
		}
		return &c, nil
	}
	return netlist.Parse(data, path)
}
