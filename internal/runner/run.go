package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"medeval/internal/config"
	"medeval/internal/dataset"
	"medeval/internal/merge"
	"medeval/internal/worker"
)

// RunDeps holds injectable collaborators; zero values get production
// defaults.
type RunDeps struct {
	Launcher worker.Launcher
	RunID    func() (string, error)
	Now      func() time.Time
}

// RunParams selects what to evaluate and where outputs go. RepoRoot is
// the directory relative config paths resolve against.
type RunParams struct {
	RepoRoot    string
	ModelID     string
	DatasetID   string
	SampleRatio float64
	OutputDir   string
	Workers     int
	Observer    RunObserver
	Diag        io.Writer
	Deps        RunDeps
}

// Run executes one evaluation: pre-flight, split, dispatch, join, merge,
// cleanup. Any worker failure aborts before the merge; partial results
// are never presented as complete.
func Run(ctx context.Context, cfg config.Config, params RunParams) (Results, error) {
	model, ok := cfg.ModelByID(params.ModelID)
	if !ok {
		return Results{}, fmt.Errorf("unknown model %q", params.ModelID)
	}
	ds, ok := cfg.DatasetByID(params.DatasetID)
	if !ok {
		return Results{}, fmt.Errorf("unknown dataset %q", params.DatasetID)
	}

	observer := params.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	diag := params.Diag
	if diag == nil {
		diag = io.Discard
	}
	newRunID := params.Deps.RunID
	if newRunID == nil {
		newRunID = NewRunID
	}
	now := params.Deps.Now
	if now == nil {
		now = time.Now
	}
	launcher := params.Deps.Launcher
	if launcher == nil {
		launcher = worker.ExecLauncher{Stdout: os.Stdout, Stderr: os.Stderr}
	}

	runID, err := newRunID()
	if err != nil {
		return Results{}, fmt.Errorf("new run id: %w", err)
	}
	startedAt := now()
	observer.OnRunStart(runID, model.ID, ds.ID)

	questionsFile := resolvePath(params.RepoRoot, ds.QuestionsFile)
	set, err := dataset.Load(questionsFile)
	if err != nil {
		return Results{}, err
	}
	if ds.Filter != "" {
		set = set.FilterByDataset(ds.Filter)
	}

	ratio := params.SampleRatio
	if ratio == 0 {
		ratio = cfg.Eval.SampleRatio
	}
	sampleSize, err := dataset.SampleSize(set.Len(), ratio)
	if err != nil {
		return Results{}, err
	}

	workerCount := params.Workers
	if workerCount == 0 {
		workerCount = cfg.Eval.Workers
	}
	if workerCount < 1 || workerCount > len(cfg.Eval.Devices) {
		return Results{}, fmt.Errorf("%d workers for %d devices", workerCount, len(cfg.Eval.Devices))
	}
	devices := cfg.Eval.Devices[:workerCount]
	ranges, err := dataset.Partition(sampleSize, workerCount)
	if err != nil {
		return Results{}, err
	}

	outputDir := params.OutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	paths, err := NewOutputPaths(resolvePath(params.RepoRoot, outputDir), ds.ID, model.ID)
	if err != nil {
		return Results{}, err
	}
	if err := os.MkdirAll(paths.Dir(), 0o755); err != nil {
		return Results{}, fmt.Errorf("create output directory: %w", err)
	}

	workers, err := worker.Plan(model, worker.Params{
		QuestionsFile: questionsFile,
		ImageDir:      resolvePath(params.RepoRoot, ds.ImageDir),
		Stem:          paths.Stem(),
		SampleRatio:   ratio,
		RepoRoot:      params.RepoRoot,
		Offline:       cfg.Eval.Offline,
	}, devices, ranges)
	if err != nil {
		return Results{}, err
	}

	specs := make([]worker.Spec, 0, len(workers))
	outcomes := make([]WorkerOutcome, 0, len(workers))
	for _, w := range workers {
		specs = append(specs, w.Spec)
		outcomes = append(outcomes, WorkerOutcome{
			Tag:         w.Spec.Tag,
			Device:      w.Spec.Device,
			Range:       w.Spec.Range,
			AnswersPath: paths.WorkerAnswersPath(w.Spec.Tag),
			SummaryPath: paths.WorkerSummaryPath(w.Spec.Tag),
		})
	}
	observer.OnSplit(set.Len(), sampleSize, specs)

	if err := worker.Dispatch(ctx, launcher, workers, observerAdapter{observer}); err != nil {
		return Results{}, err
	}

	results := Results{
		RunID:          runID,
		Model:          model.ID,
		Dataset:        ds.ID,
		StartedAt:      startedAt,
		TotalQuestions: set.Len(),
		SampleSize:     sampleSize,
		Workers:        outcomes,
		AnswersPath:    paths.AnswersPath(),
		SummaryPath:    paths.SummaryPath(),
	}

	merged, err := mergeOutputs(runID, model.ID, ds.ID, paths, outcomes)
	if err != nil {
		return Results{}, err
	}
	results.Merged = merged
	observer.OnMerge(merged)

	if !cfg.Eval.KeepIntermediate {
		intermediates := make([]string, 0, 2*len(outcomes))
		for _, outcome := range outcomes {
			intermediates = append(intermediates, outcome.AnswersPath, outcome.SummaryPath)
		}
		results.Removed = merge.Cleanup(intermediates, diag)
		observer.OnCleanup(results.Removed)
	}

	results.FinishedAt = now()
	observer.OnRunEnd(results)
	return results, nil
}

// mergeOutputs joins the per-worker answers and summaries into the final
// run outputs.
func mergeOutputs(runID, modelID, datasetID string, paths OutputPaths, outcomes []WorkerOutcome) (merge.Merged, error) {
	parts := make([]string, 0, len(outcomes))
	workerResults := make([]merge.WorkerResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		parts = append(parts, outcome.AnswersPath)
		result, err := merge.LoadWorkerSummary(outcome.SummaryPath, outcome.Tag)
		if err != nil {
			return merge.Merged{}, err
		}
		workerResults = append(workerResults, result)
	}
	if err := merge.ConcatJSONL(parts, paths.AnswersPath()); err != nil {
		return merge.Merged{}, err
	}
	merged := merge.Reduce(workerResults)
	merged.RunID = runID
	merged.Model = modelID
	merged.Dataset = datasetID
	if err := merge.WriteMerged(paths.SummaryPath(), merged); err != nil {
		return merge.Merged{}, err
	}
	return merged, nil
}

// observerAdapter forwards worker events to the run observer.
type observerAdapter struct {
	observer RunObserver
}

func (a observerAdapter) OnWorkerEvent(event worker.Event) {
	a.observer.OnWorkerEvent(event)
}

func resolvePath(baseDir, path string) string {
	if path == "" || baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
