package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-eda/miter/equiv"
	"github.com/go-eda/miter/report"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [gate] [gold]",
	Short: "decides whether two circuits are sequentially equivalent",
	Long: `check compares the observable outputs of two circuits over every input
sequence from reset. It exits 0 when the circuits are proven equivalent,
1 when a counterexample separates them, 3 when a bound ran out first and
2 on any other error.`,
	Args: cobra.ExactArgs(2),
	Run:  cmdCheck,
}

var (
	fStrategy  string
	fDepth     int
	fMaxStates int
	fEnumLimit int
	fInduction int
	fJSON      bool
	fTimeout   time.Duration
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&fStrategy, "strategy", "auto", "checking strategy: auto, explicit, bmc or induction")
	checkCmd.Flags().IntVar(&fDepth, "depth", 0, "bound on checked cycles from reset -- 0 keeps the default")
	checkCmd.Flags().IntVar(&fMaxStates, "max-states", 0, "bound on visited product states -- 0 keeps the default")
	checkCmd.Flags().IntVar(&fEnumLimit, "enum-limit", -1, "input width admitted to enumeration, in bits -- negative keeps the default")
	checkCmd.Flags().IntVar(&fInduction, "induction", 0, "bound on the induction step k -- 0 keeps the default")
	checkCmd.Flags().BoolVar(&fJSON, "json", false, "render the verdict as JSON")
	checkCmd.Flags().DurationVar(&fTimeout, "timeout", 0, "abort the check after this duration")
}

func cmdCheck(cmd *cobra.Command, args []string) {
	a, err := loadCircuit(args[0])
	if err != nil {
		fatal(err)
	}
	b, err := loadCircuit(args[1])
	if err != nil {
		fatal(err)
	}

	opts, err := checkOptions()
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	if fTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fTimeout)
		defer cancel()
	}

	r, err := equiv.Check(ctx, a, b, opts...)
	if err != nil {
		fatal(err)
	}

	if fJSON {
		err = report.RenderJSON(os.Stdout, r)
	} else {
		err = report.Render(os.Stdout, r)
	}
	if err != nil {
		fatal(err)
	}

	switch r.Verdict {
	case equiv.Fail:
		os.Exit(exitFail)
	case equiv.Unknown:
		os.Exit(exitUnknown)
	}
}

func checkOptions() ([]equiv.Option, error) {
	var opts []equiv.Option
	switch fStrategy {
	case "auto":
	case "explicit":
		opts = append(opts, equiv.WithStrategy(equiv.Explicit))
	case "bmc":
		opts = append(opts, equiv.WithStrategy(equiv.BMC))
	case "induction":
		opts = append(opts, equiv.WithStrategy(equiv.Induction))
	default:
		return nil, fmt.Errorf("unknown strategy %q -- want auto, explicit, bmc or induction", fStrategy)
	}
	if fDepth > 0 {
		opts = append(opts, equiv.WithMaxDepth(fDepth))
	}
	if fMaxStates > 0 {
		opts = append(opts, equiv.WithMaxStates(fMaxStates))
	}
	if fEnumLimit >= 0 {
		opts = append(opts, equiv.WithEnumerationLimit(fEnumLimit))
	}
	if fInduction > 0 {
		opts = append(opts, equiv.WithInductionLimit(fInduction))
	}
	return opts, nil
}
