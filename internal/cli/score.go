package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"medeval/internal/answer"
)

// runScore builds the handler for the score command.
func runScore(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		answersPath := flags.String("answers", "", "Answers JSONL file to score")
		outputPath := flags.String("output", "", "Write the evaluation summary to this file")
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
		if *answersPath == "" {
			fmt.Fprintln(stderr, "--answers is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		predictions, err := answer.ReadPredictions(*answersPath)
		if err != nil {
			fmt.Fprintf(stderr, "Scoring failed: %v\n", err)
			return ExitError
		}
		eval := answer.Score(predictions)
		fmt.Fprintf(stdout, "Accuracy: %.4f (%d/%d)\n", eval.Accuracy, eval.Correct, eval.Total)

		if *outputPath != "" {
			if err := answer.WriteEvaluation(*outputPath, eval); err != nil {
				fmt.Fprintf(stderr, "Scoring failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Summary: %s\n", *outputPath)
		}
		return ExitOK
	}
}
