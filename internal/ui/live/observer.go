package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"medeval/internal/merge"
	"medeval/internal/runner"
	"medeval/internal/worker"
)

// Controller runs the live UI and implements runner.RunObserver.
type Controller struct {
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(runID, model, dataset string) {
	c.send(Event{Kind: EventRunStart, RunID: runID, Model: model, Dataset: dataset})
}

// OnSplit forwards the worker plan to the UI.
func (c *Controller) OnSplit(totalQuestions, sampleSize int, specs []worker.Spec) {
	c.send(Event{Kind: EventSplit, TotalQuestions: totalQuestions, SampleSize: sampleSize, Specs: specs})
}

// OnWorkerEvent forwards worker status updates to the UI.
func (c *Controller) OnWorkerEvent(event worker.Event) {
	c.send(Event{Kind: EventWorker, Worker: event})
}

// OnMerge forwards the merged summary to the UI.
func (c *Controller) OnMerge(merged merge.Merged) {
	c.send(Event{Kind: EventMerge, Merged: merged})
}

// OnCleanup forwards cleanup results to the UI.
func (c *Controller) OnCleanup(removed []string) {
	c.send(Event{Kind: EventCleanup, Removed: removed})
}

// OnRunEnd forwards run completion to the UI and closes it.
func (c *Controller) OnRunEnd(results runner.Results) {
	c.send(Event{Kind: EventRunEnd, Results: results})
	c.Close()
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
