// Package benchmark internal benchmarks
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/trace"
	"time"

	"github.com/go-eda/miter/circuit"
	"github.com/go-eda/miter/equiv"
)

const benchCount = 1

var widths = []int{8, 16, 32, 64}

// /!\ internal use /!\
// running it with "trace" will output a trace.out file
// else will output average check times, in csv format
func main() {
	mode := "time"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	if mode == "trace" {
		f, err := os.Create("trace.out")
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			panic(err)
		}
		defer trace.Stop()
	}

	ctx := context.Background()
	for _, w := range widths {
		gate, gold := generatePair(w)
		runtime.GC()
		start := time.Now()
		var res equiv.Result
		for i := uint(0); i < benchCount; i++ {
			var err error
			res, err = equiv.Check(ctx, gate, gold,
				equiv.WithStrategy(equiv.Induction),
				equiv.WithMaxDepth(8),
			)
			if err != nil {
				panic(err)
			}
		}
		duration := time.Since(start)
		duration = time.Duration(int64(duration) / int64(benchCount))
		if mode != "trace" {
			fmt.Printf("%s,%d,%s,%d,%d\n", res.Strategy, w, res.Verdict, res.Queries, duration.Microseconds())
		}
	}
}

// generatePair returns two accumulators of the given width that agree on
// every input sequence but compute their sum differently: one adds, the
// other subtracts the two's-complement negation.
func generatePair(width int) (*circuit.Circuit, *circuit.Circuit) {
	gate := circuit.NewBuilder("adder")
	in := gate.Input("in", width)
	sum := gate.Register("sum", width)
	gate.Next("sum", gate.Add(sum, in))
	gate.Output("sum", sum)

	gold := circuit.NewBuilder("subtractor")
	in = gold.Input("in", width)
	sum = gold.Register("sum", width)
	gold.Next("sum", gold.Sub(sum, gold.Neg(in)))
	gold.Output("sum", sum)

	a, err := gate.Compile()
	if err != nil {
		panic(err)
	}
	b, err := gold.Compile()
	if err != nil {
		panic(err)
	}
	return a, b
}
