package cli

import (
	"flag"
	"fmt"
	"io"

	"medeval/internal/analysis"
	"medeval/internal/report"
)

// runAnalyze builds the handler for the analyze command.
func runAnalyze(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		attributeName := flags.String("attribute", "", "Perturbation attribute: contrast, crop, or zoom")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() == 0 {
			fmt.Fprintln(stderr, "at least one evaluation summary is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		attribute, err := analysis.ParseAttribute(*attributeName)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		evals := make([]analysis.Evaluation, 0, flags.NArg())
		for _, path := range flags.Args() {
			eval, err := analysis.LoadEvaluation(path)
			if err != nil {
				fmt.Fprintf(stderr, "Analysis failed: %v\n", err)
				return ExitError
			}
			evals = append(evals, eval)
		}

		result := analysis.AnalyzeAttribute(attribute, evals...)
		fmt.Fprint(stdout, report.RenderAttributeAnalysis(result))
		return ExitOK
	}
}
