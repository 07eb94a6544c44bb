// Package cmd implements the miter command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// exit codes of the miter command
const (
	exitPass    = 0
	exitFail    = 1
	exitError   = 2
	exitUnknown = 3
)

var (
	fNoColor bool
	fVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "miter",
	Short: "miter decides sequential equivalence of synchronous circuits",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if fNoColor {
			color.NoColor = true
		}
		if fVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&fNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&fVerbose, "verbose", "v", false, "enable debug logging")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(exitError)
}
