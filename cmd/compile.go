package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// compileCmd represents the compile command
var compileCmd = &cobra.Command{
	Use:   "compile [netlist]",
	Short: "compiles a netlist into a binary circuit artifact",
	Args:  cobra.ExactArgs(1),
	Run:   cmdCompile,
}

var fOutPath string

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&fOutPath, "output", "o", "", "artifact path -- default is the input with a .mtc extension")
}

func cmdCompile(cmd *cobra.Command, args []string) {
	in := filepath.Clean(args[0])
	c, err := loadCircuit(in)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%-30s %-30s %d inputs, %d registers, %d outputs\n",
		"compiled circuit", c.Name(), len(c.Inputs()), len(c.Registers()), len(c.Outputs()))

	data, err := c.ToBytes()
	if err != nil {
		fatal(err)
	}

	out := fOutPath
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".mtc"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatal(err)
	}
	fmt.Printf("%-30s %-30s %d bytes\n", "wrote artifact", out, len(data))
}
