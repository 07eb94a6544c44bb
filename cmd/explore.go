package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/explore"
)

// exploreCmd represents the explore command
var exploreCmd = &cobra.Command{
	Use:   "explore [circuit]",
	Short: "walks the reachable state space of one circuit",
	Args:  cobra.ExactArgs(1),
	Run:   cmdExplore,
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().IntVar(&fDepth, "depth", 0, "bound on walked cycles from reset -- 0 keeps the default")
	exploreCmd.Flags().IntVar(&fMaxStates, "max-states", 0, "bound on visited states -- 0 keeps the default")
}

func cmdExplore(cmd *cobra.Command, args []string) {
	c, err := loadCircuit(args[0])
	if err != nil {
		fatal(err)
	}

	var opts []explore.Option
	if fDepth > 0 {
		opts = append(opts, explore.WithMaxDepth(fDepth))
	}
	if fMaxStates > 0 {
		opts = append(opts, explore.WithMaxStates(fMaxStates))
	}
	ex, err := explore.New(c, opts...)
	if err != nil {
		fatal(err)
	}

	res, err := ex.Run(context.Background(),
		func(*explore.Node, circuit.Inputs, circuit.Outputs) error { return nil })
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%-20s %s\n", "circuit", c.Name())
	fmt.Printf("%-20s %s\n", "mode", ex.Mode())
	fmt.Printf("%-20s %d\n", "visited states", res.Visited)
	fmt.Printf("%-20s %d\n", "depth", res.Depth)
	fmt.Printf("%-20s %t\n", "closed", res.Closed)
	if res.Exhausted != nil {
		fmt.Printf("%-20s %s bound of %d\n", "exhausted", res.Exhausted.Kind, res.Exhausted.Limit)
	}
}
