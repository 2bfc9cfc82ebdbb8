package worker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// EventType identifies a worker lifecycle update.
type EventType string

const (
	// EventLaunched marks a worker process started.
	EventLaunched EventType = "launched"
	// EventFinished marks a worker process exited cleanly.
	EventFinished EventType = "finished"
	// EventFailed marks a worker process exiting non-zero.
	EventFailed EventType = "failed"
)

// Event carries one worker status update for observers.
type Event struct {
	Type     EventType
	Spec     Spec
	ExitCode int
	Elapsed  time.Duration
	Err      error
}

// Observer receives worker lifecycle events.
type Observer interface {
	OnWorkerEvent(event Event)
}

// dispatchResult is the join-side record for one worker.
type dispatchResult struct {
	index   int
	err     error
	elapsed time.Duration
}

// Dispatch launches every worker concurrently and blocks until all of
// them have exited (the run's single fan-out/fan-in point). Workers own
// disjoint index ranges and output files, so they share no state. If any
// worker exits non-zero, Dispatch returns an error naming each failed
// worker; the caller must not merge partial results.
func Dispatch(ctx context.Context, launcher Launcher, workers []Worker, observer Observer) error {
	results := make(chan dispatchResult, len(workers))
	for _, w := range workers {
		w := w
		emit(observer, Event{Type: EventLaunched, Spec: w.Spec})
		go func() {
			started := time.Now()
			err := launcher.Launch(ctx, w.Command)
			results <- dispatchResult{index: w.Spec.Index, err: err, elapsed: time.Since(started)}
		}()
	}

	errs := make([]error, len(workers))
	for range workers {
		result := <-results
		spec := workers[result.index].Spec
		if result.err != nil {
			errs[result.index] = fmt.Errorf("worker %s (device %s) failed: %w", spec.Tag, spec.Device, result.err)
			emit(observer, Event{
				Type:     EventFailed,
				Spec:     spec,
				ExitCode: exitCode(result.err),
				Elapsed:  result.elapsed,
				Err:      result.err,
			})
			continue
		}
		emit(observer, Event{Type: EventFinished, Spec: spec, Elapsed: result.elapsed})
	}
	return errors.Join(errs...)
}

func emit(observer Observer, event Event) {
	if observer != nil {
		observer.OnWorkerEvent(event)
	}
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
