package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"medeval/internal/config"
	"medeval/internal/merge"
	"medeval/internal/worker"
)

// fakeLauncher simulates evaluator workers by writing the answers and
// summary files a real worker would produce.
type fakeLauncher struct {
	failTags map[string]bool
	counts   map[string]merge.Summary
}

func argValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func (l fakeLauncher) Launch(_ context.Context, cmd worker.Command) error {
	tag := argValue(cmd.Args, "--worker-tag")
	if l.failTags[tag] {
		return fmt.Errorf("exit status 1")
	}
	answersPath := argValue(cmd.Args, "--answers-file")
	counts := l.counts[tag]
	lines := make([]string, 0, counts.Total)
	for i := 0; i < counts.Total; i++ {
		lines = append(lines, fmt.Sprintf(`{"question_id":"%s-q%d","text":"A"}`, tag, i))
	}
	if err := os.WriteFile(answersPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return err
	}
	summaryPath := strings.TrimSuffix(answersPath, "_"+tag+".jsonl") + "_evaluation_" + tag + ".json"
	summary := fmt.Sprintf(`{"accuracy": 0.5, "correct": %d, "total": %d, "detailed_results": []}`, counts.Correct, counts.Total)
	return os.WriteFile(summaryPath, []byte(summary), 0o644)
}

// recordingObserver captures the order of lifecycle events.
type recordingObserver struct {
	events []string
}

func (o *recordingObserver) OnRunStart(runID, model, dataset string) {
	o.events = append(o.events, "start")
}

func (o *recordingObserver) OnSplit(total, sample int, specs []worker.Spec) {
	o.events = append(o.events, fmt.Sprintf("split:%d/%d/%d", total, sample, len(specs)))
}

func (o *recordingObserver) OnWorkerEvent(event worker.Event) {
	o.events = append(o.events, string(event.Type)+":"+event.Spec.Tag)
}

func (o *recordingObserver) OnMerge(merged merge.Merged) {
	o.events = append(o.events, fmt.Sprintf("merge:%d/%d", merged.Correct, merged.Total))
}

func (o *recordingObserver) OnCleanup(removed []string) {
	o.events = append(o.events, fmt.Sprintf("cleanup:%d", len(removed)))
}

func (o *recordingObserver) OnRunEnd(Results) {
	o.events = append(o.events, "end")
}

func testConfig(t *testing.T, questions int) (config.Config, string) {
	t.Helper()
	root := t.TempDir()
	records := make([]string, 0, questions)
	for i := 0; i < questions; i++ {
		records = append(records, fmt.Sprintf(`{"question_id": "q%d", "dataset": "Chest CT Scan"}`, i))
	}
	questionsFile := filepath.Join(root, "questions.json")
	if err := os.WriteFile(questionsFile, []byte("["+strings.Join(records, ",")+"]"), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	cfg := config.Config{
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
			Devices:     []string{"0", "1"},
			Workers:     2,
		},
	}
	return cfg, root
}

func testParams(root string, launcher worker.Launcher, observer RunObserver) RunParams {
	return RunParams{
		RepoRoot:  root,
		ModelID:   "medllava",
		DatasetID: "chest_ct",
		Observer:  observer,
		Deps: RunDeps{
			Launcher: launcher,
			RunID:    func() (string, error) { return "20240501T120000Z-abcdef", nil },
			Now:      func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		},
	}
}

// TestRunMergesWorkerOutputs verifies the full split-dispatch-merge-cleanup
// pipeline against a fake evaluator.
func TestRunMergesWorkerOutputs(t *testing.T) {
	cfg, root := testConfig(t, 5)
	launcher := fakeLauncher{counts: map[string]merge.Summary{
		"gpu0": {Correct: 1, Total: 2},
		"gpu1": {Correct: 2, Total: 3},
	}}
	observer := &recordingObserver{}

	results, err := Run(context.Background(), cfg, testParams(root, launcher, observer))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results.RunID != "20240501T120000Z-abcdef" {
		t.Fatalf("unexpected run id: %s", results.RunID)
	}
	if results.SampleSize != 5 || results.TotalQuestions != 5 {
		t.Fatalf("unexpected sizes: %d/%d", results.SampleSize, results.TotalQuestions)
	}
	if results.Merged.Correct != 3 || results.Merged.Total != 5 {
		t.Fatalf("unexpected merged counts: %d/%d", results.Merged.Correct, results.Merged.Total)
	}

	data, err := os.ReadFile(results.AnswersPath)
	if err != nil {
		t.Fatalf("read merged answers: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d merged answers, want 5", len(lines))
	}
	if !strings.Contains(lines[0], "gpu0") || !strings.Contains(lines[4], "gpu1") {
		t.Fatalf("merged answers out of worker order:\n%s", data)
	}

	summaryData, err := os.ReadFile(results.SummaryPath)
	if err != nil {
		t.Fatalf("read merged summary: %v", err)
	}
	var summary map[string]json.RawMessage
	if err := json.Unmarshal(summaryData, &summary); err != nil {
		t.Fatalf("parse merged summary: %v", err)
	}
	for _, key := range []string{"run_id", "accuracy", "correct", "total", "gpu0_results", "gpu1_results"} {
		if _, ok := summary[key]; !ok {
			t.Errorf("merged summary missing %q", key)
		}
	}

	for _, outcome := range results.Workers {
		if _, err := os.Stat(outcome.AnswersPath); !os.IsNotExist(err) {
			t.Errorf("intermediate %s not cleaned up", outcome.AnswersPath)
		}
		if _, err := os.Stat(outcome.SummaryPath); !os.IsNotExist(err) {
			t.Errorf("intermediate %s not cleaned up", outcome.SummaryPath)
		}
	}
	if len(results.Removed) != 4 {
		t.Fatalf("got %d removed files, want 4", len(results.Removed))
	}
}

// TestRunObserverEventOrder verifies lifecycle events arrive in pipeline
// order.
func TestRunObserverEventOrder(t *testing.T) {
	cfg, root := testConfig(t, 4)
	launcher := fakeLauncher{counts: map[string]merge.Summary{
		"gpu0": {Correct: 2, Total: 2},
		"gpu1": {Correct: 1, Total: 2},
	}}
	observer := &recordingObserver{}

	if _, err := Run(context.Background(), cfg, testParams(root, launcher, observer)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(observer.events) == 0 || observer.events[0] != "start" {
		t.Fatalf("expected run start first, got %v", observer.events)
	}
	if observer.events[1] != "split:4/4/2" {
		t.Fatalf("unexpected split event: %v", observer.events)
	}
	if observer.events[len(observer.events)-1] != "end" {
		t.Fatalf("expected run end last, got %v", observer.events)
	}
	var sawMerge, sawCleanup bool
	for _, event := range observer.events {
		if event == "merge:3/4" {
			sawMerge = true
		}
		if event == "cleanup:4" {
			sawCleanup = true
		}
	}
	if !sawMerge || !sawCleanup {
		t.Fatalf("missing merge or cleanup event: %v", observer.events)
	}
}

// TestRunKeepsIntermediates verifies KeepIntermediate skips cleanup.
func TestRunKeepsIntermediates(t *testing.T) {
	cfg, root := testConfig(t, 4)
	cfg.Eval.KeepIntermediate = true
	launcher := fakeLauncher{counts: map[string]merge.Summary{
		"gpu0": {Correct: 1, Total: 2},
		"gpu1": {Correct: 1, Total: 2},
	}}

	results, err := Run(context.Background(), cfg, testParams(root, launcher, nil))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results.Removed) != 0 {
		t.Fatalf("expected no files removed, got %v", results.Removed)
	}
	for _, outcome := range results.Workers {
		if _, err := os.Stat(outcome.AnswersPath); err != nil {
			t.Errorf("intermediate %s missing: %v", outcome.AnswersPath, err)
		}
	}
}

// TestRunWorkerFailureSkipsMerge verifies a failed worker aborts the run
// before any merged output is written.
func TestRunWorkerFailureSkipsMerge(t *testing.T) {
	cfg, root := testConfig(t, 4)
	launcher := fakeLauncher{
		failTags: map[string]bool{"gpu1": true},
		counts: map[string]merge.Summary{
			"gpu0": {Correct: 1, Total: 2},
			"gpu1": {Correct: 1, Total: 2},
		},
	}

	_, err := Run(context.Background(), cfg, testParams(root, launcher, nil))
	if err == nil {
		t.Fatal("expected run failure")
	}
	if !strings.Contains(err.Error(), "gpu1") {
		t.Fatalf("expected failure naming gpu1, got: %v", err)
	}

	paths, err2 := NewOutputPaths(filepath.Join(root, "eval_results"), "chest_ct", "medllava")
	if err2 != nil {
		t.Fatalf("output paths: %v", err2)
	}
	if _, err := os.Stat(paths.SummaryPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("merged summary should not exist after failure")
	}
}

// TestRunUnknownModel verifies pre-flight selection errors.
func TestRunUnknownModel(t *testing.T) {
	cfg, root := testConfig(t, 4)
	params := testParams(root, fakeLauncher{}, nil)
	params.ModelID = "missing"
	if _, err := Run(context.Background(), cfg, params); err == nil {
		t.Fatal("expected unknown model error")
	}
}

// TestRunMissingQuestionsFile verifies the pre-flight load aborts before
// any worker is launched.
func TestRunMissingQuestionsFile(t *testing.T) {
	cfg, root := testConfig(t, 4)
	cfg.Datasets[0].QuestionsFile = "absent.json"
	observer := &recordingObserver{}

	_, err := Run(context.Background(), cfg, testParams(root, fakeLauncher{}, observer))
	if err == nil {
		t.Fatal("expected missing questions file error")
	}
	for _, event := range observer.events {
		if strings.HasPrefix(event, "launched") {
			t.Fatalf("worker launched despite failed pre-flight: %v", observer.events)
		}
	}
}
