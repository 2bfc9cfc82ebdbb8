package runner

import (
	"medeval/internal/merge"
	"medeval/internal/worker"
)

// RunObserver receives run lifecycle events for UI or logging.
type RunObserver interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID, model, dataset string)
	// OnSplit reports the sampled size and planned workers.
	OnSplit(totalQuestions, sampleSize int, workers []worker.Spec)
	// OnWorkerEvent delivers a worker status update.
	OnWorkerEvent(event worker.Event)
	// OnMerge reports the merged summary after a successful join.
	OnMerge(merged merge.Merged)
	// OnCleanup reports intermediate files removed after the merge.
	OnCleanup(removed []string)
	// OnRunEnd signals run completion.
	OnRunEnd(results Results)
}

// nopObserver is used when the caller supplies no observer.
type nopObserver struct{}

func (nopObserver) OnRunStart(string, string, string)         {}
func (nopObserver) OnSplit(int, int, []worker.Spec)           {}
func (nopObserver) OnWorkerEvent(worker.Event)                {}
func (nopObserver) OnMerge(merge.Merged)                      {}
func (nopObserver) OnCleanup([]string)                        {}
func (nopObserver) OnRunEnd(Results)                          {}
