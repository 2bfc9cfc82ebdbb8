package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"medeval/internal/analysis"
	"medeval/internal/report"
)

// runCompare builds the handler for the compare command.
func runCompare(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		basePath := flags.String("base", "", "Baseline evaluation summary")
		otherPath := flags.String("other", "", "Evaluation summary to compare against the baseline")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if *basePath == "" || *otherPath == "" {
			fmt.Fprintln(stderr, "--base and --other are required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		base, err := analysis.LoadEvaluation(*basePath)
		if err != nil {
			fmt.Fprintf(stderr, "Comparison failed: %v\n", err)
			return ExitError
		}
		other, err := analysis.LoadEvaluation(*otherPath)
		if err != nil {
			fmt.Fprintf(stderr, "Comparison failed: %v\n", err)
			return ExitError
		}

		comparison := analysis.Compare(base, other)
		fmt.Fprint(stdout, report.RenderComparison(comparison))
		return ExitOK
	}
}
