package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"medeval/internal/worker"
)

// OutputPaths describes filesystem locations for run outputs. All worker
// and merged files for a run share one stem under the dataset directory.
type OutputPaths struct {
	Root    string
	Dataset string
	Model   string
}

// NewOutputPaths validates and constructs output path metadata.
func NewOutputPaths(root, dataset, model string) (OutputPaths, error) {
	if strings.TrimSpace(root) == "" {
		return OutputPaths{}, fmt.Errorf("output root is empty")
	}
	if strings.TrimSpace(dataset) == "" {
		return OutputPaths{}, fmt.Errorf("dataset is empty")
	}
	if strings.TrimSpace(model) == "" {
		return OutputPaths{}, fmt.Errorf("model is empty")
	}
	return OutputPaths{Root: root, Dataset: dataset, Model: model}, nil
}

// Dir returns the directory holding this run's outputs.
func (o OutputPaths) Dir() string {
	return filepath.Join(o.Root, o.Dataset)
}

// Stem returns the shared filename stem for all of the run's outputs.
func (o OutputPaths) Stem() string {
	return filepath.Join(o.Dir(), o.Model+"_"+o.Dataset)
}

// AnswersPath returns the merged JSONL answers path.
func (o OutputPaths) AnswersPath() string {
	return worker.MergedAnswersPath(o.Stem())
}

// SummaryPath returns the merged evaluation summary path.
func (o OutputPaths) SummaryPath() string {
	return worker.MergedSummaryPath(o.Stem())
}

// WorkerAnswersPath returns the intermediate JSONL path for one worker.
func (o OutputPaths) WorkerAnswersPath(tag string) string {
	return worker.AnswersPath(o.Stem(), tag)
}

// WorkerSummaryPath returns the intermediate summary path for one worker.
func (o OutputPaths) WorkerSummaryPath(tag string) string {
	return worker.SummaryPath(o.Stem(), tag)
}
