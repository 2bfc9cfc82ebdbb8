package live

import (
	"medeval/internal/merge"
	"medeval/internal/runner"
	"medeval/internal/worker"
)

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventSplit delivers the sampled size and worker plan.
	EventSplit
	// EventWorker delivers a worker status update.
	EventWorker
	// EventMerge delivers the merged summary.
	EventMerge
	// EventCleanup reports removed intermediate files.
	EventCleanup
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind           EventKind
	RunID          string
	Model          string
	Dataset        string
	TotalQuestions int
	SampleSize     int
	Specs          []worker.Spec
	Worker         worker.Event
	Merged         merge.Merged
	Removed        []string
	Results        runner.Results
}
