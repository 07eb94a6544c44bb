// The miter command decides sequential equivalence of synchronous circuit
// descriptions. See miter -h for usage.
package main

import (
	"fmt"
	"os"

	"github.com/go-eda/miter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
