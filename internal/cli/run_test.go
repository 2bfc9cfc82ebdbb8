package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medeval/internal/config"
	"medeval/internal/merge"
	"medeval/internal/runner"
)

const runTestConfig = `version: 1
output_dir: "eval_results"

models:
  - id: medllava
    family: llava
    python: "env/bin/python"
    script: "scripts/eval_llava.py"
    model_path: "models/llava-med"
    temperature: 0.0

datasets:
  - id: chest_ct
    questions_file: "questions.json"
    image_dir: "images"

eval:
  sample_ratio: 1.0
  devices: ["0", "1"]
`

func writeRunFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "env", "bin"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "env", "bin", "python"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write interpreter: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "questions.json"), []byte(`[{"question_id": "q1"}]`), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, config.ConfigDirName), 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(config.ConfigPath(root), []byte(runTestConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return root
}

func stubRunEvaluation(t *testing.T, fn func(ctx context.Context, cfg config.Config, params runner.RunParams) (runner.Results, error)) {
	t.Helper()
	original := runEvaluation
	runEvaluation = fn
	t.Cleanup(func() { runEvaluation = original })
}

// TestRunCommandPlainOutput verifies the run command wiring end to end
// with a stubbed pipeline.
func TestRunCommandPlainOutput(t *testing.T) {
	root := writeRunFixture(t)
	var captured runner.RunParams
	stubRunEvaluation(t, func(_ context.Context, cfg config.Config, params runner.RunParams) (runner.Results, error) {
		captured = params
		return runner.Results{
			RunID: "20240501T120000Z-abcdef",
			Merged: merge.Merged{
				Accuracy: 513.0 / 871.0,
				Correct:  513,
				Total:    871,
			},
			AnswersPath: "answers.jsonl",
			SummaryPath: "summary.json",
		}, nil
	})

	var out, errBuf bytes.Buffer
	code := Run([]string{
		"run",
		"--config", config.ConfigPath(root),
		"--model", "medllava",
		"--dataset", "chest_ct",
		"--ui", "plain",
	}, &out, &errBuf)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (stderr: %s)", ExitOK, code, errBuf.String())
	}
	if captured.ModelID != "medllava" || captured.DatasetID != "chest_ct" {
		t.Fatalf("unexpected params: %+v", captured)
	}
	if captured.RepoRoot != root {
		t.Fatalf("expected repo root %s, got %s", root, captured.RepoRoot)
	}
	if captured.Observer == nil {
		t.Fatal("expected an observer to be wired")
	}
	output := out.String()
	if !strings.Contains(output, "Run 20240501T120000Z-abcdef completed") {
		t.Fatalf("expected completion line, got:\n%s", output)
	}
	if !strings.Contains(output, "513/871") {
		t.Fatalf("expected accuracy line, got:\n%s", output)
	}
}

// TestRunCommandFailure verifies a pipeline error maps to ExitError.
func TestRunCommandFailure(t *testing.T) {
	root := writeRunFixture(t)
	stubRunEvaluation(t, func(context.Context, config.Config, runner.RunParams) (runner.Results, error) {
		return runner.Results{}, errors.New("worker gpu1 (device 1) failed: exit status 1")
	})

	var out, errBuf bytes.Buffer
	code := Run([]string{
		"run",
		"--config", config.ConfigPath(root),
		"--model", "medllava",
		"--dataset", "chest_ct",
		"--ui", "plain",
	}, &out, &errBuf)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(errBuf.String(), "gpu1") {
		t.Fatalf("expected failure diagnostic, got %q", errBuf.String())
	}
}

// TestRunCommandRequiresSelection verifies model and dataset are required.
func TestRunCommandRequiresSelection(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := Run([]string{"run"}, &out, &errBuf)
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(errBuf.String(), "--model and --dataset are required") {
		t.Fatalf("expected selection error, got %q", errBuf.String())
	}
}

// TestRunCommandRejectsBadUIMode verifies ui mode validation.
func TestRunCommandRejectsBadUIMode(t *testing.T) {
	root := writeRunFixture(t)
	var out, errBuf bytes.Buffer
	code := Run([]string{
		"run",
		"--config", config.ConfigPath(root),
		"--model", "medllava",
		"--dataset", "chest_ct",
		"--ui", "fancy",
	}, &out, &errBuf)
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(errBuf.String(), "invalid ui mode") {
		t.Fatalf("expected ui mode error, got %q", errBuf.String())
	}
}
