package cucumber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"medeval/internal/config"
	"medeval/internal/dataset"
	"medeval/internal/merge"
	"medeval/internal/runner"
	"medeval/internal/worker"
)

// scenarioState carries everything a scenario builds up across steps. A
// fresh value is installed before each scenario.
type scenarioState struct {
	// splitting
	questionCount int
	sampleSize    int
	ranges        []dataset.Range

	// merging
	summaries []merge.WorkerResult
	merged    merge.Merged

	// run lifecycle
	root     string
	cfg      config.Config
	failTags map[string]bool
	results  runner.Results
	runErr   error
}

func InitializeScenario(sc *godog.ScenarioContext) {
	state := &scenarioState{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*state = scenarioState{failTags: map[string]bool{}}
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if state.root != "" {
			os.RemoveAll(state.root)
		}
		return ctx, nil
	})

	sc.Step(`^a question set of (\d+) questions$`, state.aQuestionSet)
	sc.Step(`^I sample with ratio ([0-9.]+) across (\d+) workers$`, state.sampleAndSplit)
	sc.Step(`^worker (\d+) covers questions (\d+) to (\d+)$`, state.workerCovers)
	sc.Step(`^the sample size is (\d+)$`, state.sampleSizeIs)
	sc.Step(`^the ranges cover every question exactly once$`, state.rangesCoverExactly)

	sc.Step(`^a worker summary with (\d+) correct of (\d+)$`, state.aWorkerSummary)
	sc.Step(`^the summaries are merged$`, state.mergeSummaries)
	sc.Step(`^the merged summary reports (\d+) correct of (\d+)$`, state.mergedReports)
	sc.Step(`^the merged accuracy is ([0-9.]+)$`, state.mergedAccuracyIs)

	sc.Step(`^an evaluation fixture with (\d+) questions and (\d+) devices$`, state.anEvaluationFixture)
	sc.Step(`^worker (\S+) fails$`, state.workerFails)
	sc.Step(`^the evaluation runs$`, state.runEvaluation)
	sc.Step(`^the run succeeds$`, state.runSucceeds)
	sc.Step(`^the run fails naming worker (\S+)$`, state.runFailsNaming)
	sc.Step(`^the merged answers file contains (\d+) lines$`, state.mergedAnswersContains)
	sc.Step(`^the merged summary exists$`, state.mergedSummaryExists)
	sc.Step(`^the merged summary does not exist$`, state.mergedSummaryMissing)
	sc.Step(`^the intermediate worker files are removed$`, state.intermediatesRemoved)
}

func (s *scenarioState) aQuestionSet(count int) error {
	s.questionCount = count
	return nil
}

func (s *scenarioState) sampleAndSplit(ratio float64, workers int) error {
	size, err := dataset.SampleSize(s.questionCount, ratio)
	if err != nil {
		return err
	}
	ranges, err := dataset.Partition(size, workers)
	if err != nil {
		return err
	}
	s.sampleSize = size
	s.ranges = ranges
	return nil
}

func (s *scenarioState) workerCovers(index, start, end int) error {
	if index >= len(s.ranges) {
		return fmt.Errorf("worker %d out of range, have %d workers", index, len(s.ranges))
	}
	got := s.ranges[index]
	if got.Start != start || got.End != end {
		return fmt.Errorf("worker %d covers [%d, %d), want [%d, %d)", index, got.Start, got.End, start, end)
	}
	return nil
}

func (s *scenarioState) sampleSizeIs(size int) error {
	if s.sampleSize != size {
		return fmt.Errorf("sample size %d, want %d", s.sampleSize, size)
	}
	return nil
}

func (s *scenarioState) rangesCoverExactly() error {
	next := 0
	for i, r := range s.ranges {
		if r.Start != next {
			return fmt.Errorf("worker %d starts at %d, want %d", i, r.Start, next)
		}
		if r.End < r.Start {
			return fmt.Errorf("worker %d has inverted range [%d, %d)", i, r.Start, r.End)
		}
		next = r.End
	}
	if next != s.sampleSize {
		return fmt.Errorf("ranges end at %d, want %d", next, s.sampleSize)
	}
	return nil
}

func (s *scenarioState) aWorkerSummary(correct, total int) error {
	tag := fmt.Sprintf("gpu%d", len(s.summaries))
	raw := fmt.Sprintf(`{"accuracy": 0, "correct": %d, "total": %d}`, correct, total)
	s.summaries = append(s.summaries, merge.WorkerResult{
		Tag:     tag,
		Summary: merge.Summary{Correct: correct, Total: total},
		Raw:     json.RawMessage(raw),
	})
	return nil
}

func (s *scenarioState) mergeSummaries() error {
	s.merged = merge.Reduce(s.summaries)
	return nil
}

func (s *scenarioState) mergedReports(correct, total int) error {
	if s.merged.Correct != correct || s.merged.Total != total {
		return fmt.Errorf("merged counts %d/%d, want %d/%d", s.merged.Correct, s.merged.Total, correct, total)
	}
	return nil
}

func (s *scenarioState) mergedAccuracyIs(want float64) error {
	if math.Abs(s.merged.Accuracy-want) > 0.0001 {
		return fmt.Errorf("merged accuracy %.6f, want %.4f", s.merged.Accuracy, want)
	}
	return nil
}

func (s *scenarioState) anEvaluationFixture(questions, devices int) error {
	root, err := os.MkdirTemp("", "medeval-cucumber-")
	if err != nil {
		return err
	}
	s.root = root

	records := make([]string, 0, questions)
	for i := 0; i < questions; i++ {
		records = append(records, fmt.Sprintf(`{"question_id": "q%d", "dataset": "Chest CT Scan"}`, i))
	}
	questionsFile := filepath.Join(root, "questions.json")
	if err := os.WriteFile(questionsFile, []byte("["+strings.Join(records, ",")+"]"), 0o644); err != nil {
		return err
	}

	deviceIDs := make([]string, 0, devices)
	for i := 0; i < devices; i++ {
		deviceIDs = append(deviceIDs, fmt.Sprintf("%d", i))
	}
	s.cfg = config.Config{
		Version:   1,
		OutputDir: "eval_results",
		Models: []config.ModelConfig{{
			ID:        "medllava",
			Family:    config.FamilyLLaVA,
			Python:    "env/bin/python",
			Script:    "eval.py",
			ModelPath: "models/llava-med",
			ConvMode:  "vicuna_v1",
		}},
		Datasets: []config.DatasetConfig{{
			ID:            "chest_ct",
			QuestionsFile: "questions.json",
			ImageDir:      "images",
		}},
		Eval: config.EvalConfig{
			SampleRatio: 1.0,
			Devices:     deviceIDs,
			Workers:     devices,
		},
	}
	return nil
}

func (s *scenarioState) workerFails(tag string) error {
	s.failTags[tag] = true
	return nil
}

func (s *scenarioState) runEvaluation() error {
	params := runner.RunParams{
		RepoRoot:  s.root,
		ModelID:   "medllava",
		DatasetID: "chest_ct",
		Deps: runner.RunDeps{
			Launcher: scriptedLauncher{failTags: s.failTags},
			RunID:    func() (string, error) { return "20240501T120000Z-abcdef", nil },
			Now:      func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		},
	}
	s.results, s.runErr = runner.Run(context.Background(), s.cfg, params)
	return nil
}

func (s *scenarioState) runSucceeds() error {
	if s.runErr != nil {
		return fmt.Errorf("run failed: %v", s.runErr)
	}
	return nil
}

func (s *scenarioState) runFailsNaming(tag string) error {
	if s.runErr == nil {
		return errors.New("run succeeded, expected a worker failure")
	}
	if !strings.Contains(s.runErr.Error(), tag) {
		return fmt.Errorf("run error %q does not name %s", s.runErr, tag)
	}
	return nil
}

func (s *scenarioState) mergedAnswersContains(lines int) error {
	data, err := os.ReadFile(s.results.AnswersPath)
	if err != nil {
		return err
	}
	got := len(strings.Split(strings.TrimSpace(string(data)), "\n"))
	if got != lines {
		return fmt.Errorf("merged answers has %d lines, want %d", got, lines)
	}
	return nil
}

func (s *scenarioState) mergedSummaryExists() error {
	if _, err := os.Stat(s.results.SummaryPath); err != nil {
		return fmt.Errorf("merged summary: %w", err)
	}
	return nil
}

func (s *scenarioState) mergedSummaryMissing() error {
	stem := filepath.Join(s.root, "eval_results", "chest_ct", "medllava_chest_ct")
	path := worker.MergedSummaryPath(stem)
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("merged summary unexpectedly present at %s", path)
	}
	return nil
}

func (s *scenarioState) intermediatesRemoved() error {
	for _, outcome := range s.results.Workers {
		for _, path := range []string{outcome.AnswersPath, outcome.SummaryPath} {
			if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("intermediate %s still present", path)
			}
		}
	}
	return nil
}

// scriptedLauncher plays the part of an evaluator subprocess, writing the
// answers and summary files a worker would leave behind.
type scriptedLauncher struct {
	failTags map[string]bool
}

func (l scriptedLauncher) Launch(_ context.Context, cmd worker.Command) error {
	tag := argValue(cmd.Args, "--worker-tag")
	if l.failTags[tag] {
		return fmt.Errorf("exit status 1")
	}
	start, err := argInt(cmd.Args, "--start-index")
	if err != nil {
		return err
	}
	end, err := argInt(cmd.Args, "--end-index")
	if err != nil {
		return err
	}
	total := end - start
	correct := total / 2

	answersPath := argValue(cmd.Args, "--answers-file")
	lines := make([]string, 0, total)
	for i := start; i < end; i++ {
		lines = append(lines, fmt.Sprintf(`{"question_id": "q%d", "text": "A"}`, i))
	}
	if err := os.WriteFile(answersPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return err
	}
	stem := strings.TrimSuffix(answersPath, "_"+tag+".jsonl")
	summary := fmt.Sprintf(`{"accuracy": 0.5, "correct": %d, "total": %d, "detailed_results": []}`, correct, total)
	return os.WriteFile(worker.SummaryPath(stem, tag), []byte(summary), 0o644)
}

func argValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func argInt(args []string, flag string) (int, error) {
	value := argValue(args, flag)
	if value == "" {
		return 0, fmt.Errorf("missing %s argument", flag)
	}
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return 0, fmt.Errorf("parse %s: %w", flag, err)
	}
	return n, nil
}
