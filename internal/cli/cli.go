package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  medeval <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"medeval <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .medeval/config.yml", []string{
		"medeval init",
	}, runInit),
	command("validate", "Validate the evaluation config", []string{
		"medeval validate [--config <path>]",
	}, runValidate),
	command("run", "Run an evaluation across GPU workers", []string{
		"medeval run --model <id> --dataset <id> [--config <path>] [--sample-ratio <r>] [--workers <n>] [--output-dir <dir>] [--ui auto|live|plain]",
	}, runRun),
	command("score", "Re-score an answers JSONL file", []string{
		"medeval score --answers <file> [--output <file>]",
	}, runScore),
	command("compare", "Compare two evaluation summaries", []string{
		"medeval compare --base <file> --other <file>",
	}, runCompare),
	command("analyze", "Analyze accuracy by perturbation level", []string{
		"medeval analyze --attribute contrast|crop|zoom <summary>...",
	}, runAnalyze),
	command("ingest", "Ingest a merged summary into the results database", []string{
		"medeval ingest --db <file> <summary>...",
	}, runIngest),
}
