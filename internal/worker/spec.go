package worker

import (
	"fmt"
	"path/filepath"
	"strconv"

	"medeval/internal/config"
	"medeval/internal/dataset"
)

// Spec binds one worker to a device and an index sub-range of the sampled
// question set. Tags namespace the worker's output files so concurrent
// workers never collide on paths.
type Spec struct {
	Index  int
	Device string
	Range  dataset.Range
	Tag    string
}

// Command is the fully resolved invocation of the external evaluator for
// one worker. Env holds additions over the parent environment; device
// visibility and offline toggles are per-worker configuration, never
// process-wide state.
type Command struct {
	Path string
	Args []string
	Env  []string
	Dir  string
}

// Worker couples a spec with its evaluator command.
type Worker struct {
	Spec    Spec
	Command Command
}

// Params carries the run-level inputs shared by all workers.
type Params struct {
	QuestionsFile string
	ImageDir      string
	Stem          string
	SampleRatio   float64
	RepoRoot      string
	Offline       bool
}

// AnswersPath returns the per-worker JSONL output path for a tag.
func AnswersPath(stem, tag string) string {
	return fmt.Sprintf("%s_%s.jsonl", stem, tag)
}

// SummaryPath returns the per-worker evaluation summary path for a tag.
func SummaryPath(stem, tag string) string {
	return fmt.Sprintf("%s_evaluation_%s.json", stem, tag)
}

// MergedAnswersPath returns the merged JSONL path for a stem.
func MergedAnswersPath(stem string) string {
	return stem + ".jsonl"
}

// MergedSummaryPath returns the merged evaluation summary path for a stem.
func MergedSummaryPath(stem string) string {
	return stem + "_evaluation.json"
}

// Plan builds one worker per device, pairing devices with index ranges in
// order. The two slices must have equal length.
func Plan(model config.ModelConfig, params Params, devices []string, ranges []dataset.Range) ([]Worker, error) {
	if len(devices) != len(ranges) {
		return nil, fmt.Errorf("%d devices for %d index ranges", len(devices), len(ranges))
	}
	workers := make([]Worker, 0, len(devices))
	for i, device := range devices {
		spec := Spec{
			Index:  i,
			Device: device,
			Range:  ranges[i],
			Tag:    "gpu" + strconv.Itoa(i),
		}
		workers = append(workers, Worker{
			Spec:    spec,
			Command: buildCommand(model, params, spec),
		})
	}
	return workers, nil
}

// buildCommand assembles the evaluator command line and environment for
// one worker.
func buildCommand(model config.ModelConfig, params Params, spec Spec) Command {
	args := []string{
		model.Script,
		"--question-file", params.QuestionsFile,
		"--image-folder", params.ImageDir,
		"--model-path", model.ModelPath,
	}
	if model.ModelBase != "" {
		args = append(args, "--model-base", model.ModelBase)
	}
	args = append(args,
		"--answers-file", AnswersPath(params.Stem, spec.Tag),
		"--sample-ratio", strconv.FormatFloat(params.SampleRatio, 'g', -1, 64),
		"--start-index", strconv.Itoa(spec.Range.Start),
		"--end-index", strconv.Itoa(spec.Range.End),
		"--worker-tag", spec.Tag,
		"--temperature", strconv.FormatFloat(model.Temperature, 'g', -1, 64),
	)
	if model.ConvMode != "" {
		args = append(args, "--conv-mode", model.ConvMode)
	}

	env := []string{"CUDA_VISIBLE_DEVICES=" + spec.Device}
	if params.RepoRoot != "" {
		env = append(env, "PYTHONPATH="+params.RepoRoot)
	}
	if params.Offline {
		env = append(env, "HF_HUB_OFFLINE=1", "TRANSFORMERS_OFFLINE=1")
	}

	python := model.Python
	if params.RepoRoot != "" && !filepath.IsAbs(python) {
		python = filepath.Join(params.RepoRoot, python)
	}
	return Command{
		Path: python,
		Args: args,
		Env:  env,
		Dir:  params.RepoRoot,
	}
}
