package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	miter "github.com/go-eda/miter"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints the miter version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("miter v" + miter.Version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
