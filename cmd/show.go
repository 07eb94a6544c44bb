package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-eda/miter/netlist"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [circuit]",
	Short: "prints a circuit in canonical netlist form",
	Long: `show loads a netlist source or a compiled artifact and prints the
circuit back as a netlist, with names sorted and reset muxes resolved.
The output parses back to the same circuit.`,
	Args: cobra.ExactArgs(1),
	Run:  cmdShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func cmdShow(cmd *cobra.Command, args []string) {
	c, err := loadCircuit(args[0])
	if err != nil {
		fatal(err)
	}
	if err := netlist.Fprint(os.Stdout, c); err != nil {
		fatal(err)
	}
}
