package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"medeval/internal/config"
	"medeval/internal/merge"
	"medeval/internal/runner"
	"medeval/internal/ui/live"
	"medeval/internal/worker"
)

var runEvaluation = runner.Run

func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .medeval/config.yml)")
		modelID := flags.String("model", "", "Model id to evaluate")
		datasetID := flags.String("dataset", "", "Dataset id to evaluate against")
		sampleRatio := flags.Float64("sample-ratio", 0, "Override the configured sample ratio")
		workers := flags.Int("workers", 0, "Override the configured worker count")
		outputDir := flags.String("output-dir", "", "Override the configured output directory")
		uiMode := flags.String("ui", "auto", "UI mode: auto, live, or plain")
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
		if *modelID == "" || *datasetID == "" {
			fmt.Fprintln(stderr, "--model and --dataset are required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		resolved, err := resolveConfigPath(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to locate config: %v\n", err)
			return ExitError
		}
		cfg, err := config.Load(resolved)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		decision, err := resolveUIMode(*uiMode, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		params := runner.RunParams{
			RepoRoot:    config.RepoRootFromConfigPath(resolved),
			ModelID:     *modelID,
			DatasetID:   *datasetID,
			SampleRatio: *sampleRatio,
			OutputDir:   *outputDir,
			Workers:     *workers,
			Diag:        stderr,
		}

		var controller *live.Controller
		if decision.useLive {
			controller = live.Start(stdout, live.Options{})
			params.Observer = controller
		} else {
			params.Observer = plainObserver{out: stdout}
		}

		results, err := runEvaluation(context.Background(), cfg, params)
		if controller != nil {
			controller.Close()
			controller.Wait()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Run failed: %v\n", err)
			return ExitError
		}

		fmt.Fprintf(stdout, "Run %s completed\n", results.RunID)
		fmt.Fprintf(stdout, "Accuracy: %.4f (%d/%d)\n", results.Merged.Accuracy, results.Merged.Correct, results.Merged.Total)
		fmt.Fprintf(stdout, "Answers: %s\n", results.AnswersPath)
		fmt.Fprintf(stdout, "Summary: %s\n", results.SummaryPath)
		return ExitOK
	}
}

// plainObserver writes progress lines to stdout when the live UI is off.
type plainObserver struct {
	out io.Writer
}

func (o plainObserver) OnRunStart(runID, model, dataset string) {
	fmt.Fprintf(o.out, "Run %s: %s on %s\n", runID, model, dataset)
}

func (o plainObserver) OnSplit(totalQuestions, sampleSize int, specs []worker.Spec) {
	fmt.Fprintf(o.out, "Sampled %d of %d questions across %d workers\n", sampleSize, totalQuestions, len(specs))
	for _, spec := range specs {
		fmt.Fprintf(o.out, "  %s: device %s, questions [%d, %d)\n", spec.Tag, spec.Device, spec.Range.Start, spec.Range.End)
	}
}

func (o plainObserver) OnWorkerEvent(event worker.Event) {
	switch event.Type {
	case worker.EventLaunched:
		fmt.Fprintf(o.out, "%s launched on device %s\n", event.Spec.Tag, event.Spec.Device)
	case worker.EventFinished:
		fmt.Fprintf(o.out, "%s finished in %s\n", event.Spec.Tag, event.Elapsed.Round(time.Second))
	case worker.EventFailed:
		fmt.Fprintf(o.out, "%s failed with exit code %d\n", event.Spec.Tag, event.ExitCode)
	}
}

func (o plainObserver) OnMerge(merged merge.Merged) {
	fmt.Fprintf(o.out, "Merged %d workers: %d/%d correct\n", len(merged.Workers), merged.Correct, merged.Total)
}

func (o plainObserver) OnCleanup(removed []string) {
	fmt.Fprintf(o.out, "Removed %d intermediate files\n", len(removed))
}

func (o plainObserver) OnRunEnd(results runner.Results) {}
